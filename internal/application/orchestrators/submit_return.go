package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"librarydesk/internal/domain/issue"
	"librarydesk/internal/domain/request"
)

// IssueStoreForSubmit defines the store interface for finding the open issue.
type IssueStoreForSubmit interface {
	FindOpen(ctx context.Context, username string, bookID int64) (issue.Issue, error)
}

// SubmitReturnInput carries input for the return-request orchestrator.
type SubmitReturnInput struct {
	Username string
	BookID   int64
}

// SubmitReturnDeps holds dependencies for SubmitReturn.
type SubmitReturnDeps struct {
	IssueStore   IssueStoreForSubmit
	RequestStore RequestStoreForSubmit
	Now          func() time.Time
}

// ExecuteSubmitReturn queues a return request for admin review.
// The user must currently hold the book. The book itself may already be
// gone from the inventory; returns are keyed off the issue ledger.
// PRE: Username identifies a logged-in student, BookID > 0
// POST: A pending return request exists, or an error explains why not
// INVARIANT: At most one pending return request per (user, book)
func ExecuteSubmitReturn(ctx context.Context, input SubmitReturnInput, deps SubmitReturnDeps) (request.Request, error) {
	open, err := deps.IssueStore.FindOpen(ctx, input.Username, input.BookID)
	if errors.Is(err, sql.ErrNoRows) {
		return request.Request{}, issue.ErrNoOpenIssue
	}
	if err != nil {
		return request.Request{}, err
	}

	dup, err := deps.RequestStore.HasPending(ctx, input.Username, input.BookID, request.TypeReturn)
	if err != nil {
		return request.Request{}, err
	}
	if dup {
		return request.Request{}, request.ErrDuplicateRequest
	}

	req := request.Request{
		Type:        request.TypeReturn,
		Username:    input.Username,
		BookID:      input.BookID,
		Title:       open.Title,
		RequestedAt: deps.Now(),
		Status:      request.StatusPending,
	}
	if err := req.Validate(); err != nil {
		return request.Request{}, err
	}

	created, err := deps.RequestStore.Create(ctx, req)
	if err != nil {
		return request.Request{}, err
	}

	slog.Info("request_event", "event", "return_requested", "username", input.Username, "book_id", input.BookID, "request_id", created.ID)
	return created, nil
}
