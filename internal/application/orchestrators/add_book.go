package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"librarydesk/internal/domain/audit"
	"librarydesk/internal/domain/book"
)

// BookStoreForAdmin defines the store interface for inventory changes.
type BookStoreForAdmin interface {
	Create(ctx context.Context, value book.Book) (book.Book, error)
	AdjustAvailable(ctx context.Context, id int64, delta int) (book.Book, error)
}

// AddBookInput carries input for the add-book orchestrator.
type AddBookInput struct {
	Actor  string // admin username
	Title  string
	Author string
	Notes  string
	Count  int // initial available copies; negative clamps to 0
}

// AddBookDeps holds dependencies for AddBook.
type AddBookDeps struct {
	BookStore  BookStoreForAdmin
	AuditStore AuditStoreForResolve
	Now        func() time.Time
}

// ExecuteAddBook adds a title to the inventory.
// PRE: Actor is an admin, Title and Author are non-empty
// POST: Book persisted with available = max(Count, 0)
func ExecuteAddBook(ctx context.Context, input AddBookInput, deps AddBookDeps) (book.Book, error) {
	count := input.Count
	if count < 0 {
		count = 0
	}

	b := book.Book{
		Title:     strings.TrimSpace(input.Title),
		Author:    strings.TrimSpace(input.Author),
		Notes:     input.Notes,
		Available: count,
	}
	if err := b.Validate(); err != nil {
		return book.Book{}, err
	}

	created, err := deps.BookStore.Create(ctx, b)
	if err != nil {
		return book.Book{}, err
	}

	appendAudit(ctx, deps.AuditStore, audit.Entry{
		ID:        uuid.NewString(),
		Actor:     input.Actor,
		Action:    audit.ActionAddBook,
		Subject:   fmt.Sprintf("book:%d", created.ID),
		Detail:    fmt.Sprintf("%q by %s, %d copies", created.Title, created.Author, created.Available),
		CreatedAt: deps.Now(),
	})

	slog.Info("inventory_event", "event", "book_added", "book_id", created.ID, "title", created.Title, "available", created.Available, "actor", input.Actor)
	return created, nil
}

// appendAudit appends to the audit log, logging instead of failing the
// already-applied inventory change.
func appendAudit(ctx context.Context, store AuditStoreForResolve, entry audit.Entry) {
	if store == nil {
		return
	}
	if err := store.Append(ctx, entry); err != nil {
		slog.Warn("audit_event", "event", "append_failed", "action", entry.Action, "subject", entry.Subject, "error", err)
	}
}
