package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"librarydesk/internal/domain/audit"
)

// CirculationForRemove defines the transactional interface for deleting books.
type CirculationForRemove interface {
	DeleteBook(ctx context.Context, bookID int64) error
}

// RemoveBookInput carries input for the remove-book orchestrator.
type RemoveBookInput struct {
	Actor  string // admin username
	BookID int64
}

// RemoveBookDeps holds dependencies for RemoveBook.
type RemoveBookDeps struct {
	Circulation CirculationForRemove
	AuditStore  AuditStoreForResolve
	Now         func() time.Time
}

// ExecuteRemoveBook deletes a book from the inventory. Removing a book that
// is not there succeeds; removing one with copies still out fails.
// PRE: Actor is an admin, BookID > 0
// POST: Book is absent from the inventory, history preserved
func ExecuteRemoveBook(ctx context.Context, input RemoveBookInput, deps RemoveBookDeps) error {
	if err := deps.Circulation.DeleteBook(ctx, input.BookID); err != nil {
		slog.Info("inventory_event", "event", "remove_failed", "book_id", input.BookID, "actor", input.Actor, "reason", err.Error())
		return err
	}

	appendAudit(ctx, deps.AuditStore, audit.Entry{
		ID:        uuid.NewString(),
		Actor:     input.Actor,
		Action:    audit.ActionRemoveBook,
		Subject:   fmt.Sprintf("book:%d", input.BookID),
		CreatedAt: deps.Now(),
	})

	slog.Info("inventory_event", "event", "book_removed", "book_id", input.BookID, "actor", input.Actor)
	return nil
}
