package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"librarydesk/internal/domain/book"
	"librarydesk/internal/domain/request"
)

// BookStoreForSubmit defines the store interface needed to look up the book.
type BookStoreForSubmit interface {
	GetByID(ctx context.Context, id int64) (book.Book, error)
}

// RequestStoreForSubmit defines the store interface for queueing requests.
type RequestStoreForSubmit interface {
	Create(ctx context.Context, value request.Request) (request.Request, error)
	HasPending(ctx context.Context, username string, bookID int64, requestType string) (bool, error)
}

// SubmitBorrowInput carries input for the borrow-request orchestrator.
type SubmitBorrowInput struct {
	Username string
	BookID   int64
}

// SubmitBorrowDeps holds dependencies for SubmitBorrow.
type SubmitBorrowDeps struct {
	BookStore    BookStoreForSubmit
	RequestStore RequestStoreForSubmit
	Now          func() time.Time
}

// ExecuteSubmitBorrow queues a borrow request for admin review.
// The availability check here is advisory; the binding check happens again
// at approval time.
// PRE: Username identifies a logged-in student, BookID > 0
// POST: A pending borrow request exists, or an error explains why not
// INVARIANT: At most one pending borrow request per (user, book)
func ExecuteSubmitBorrow(ctx context.Context, input SubmitBorrowInput, deps SubmitBorrowDeps) (request.Request, error) {
	b, err := deps.BookStore.GetByID(ctx, input.BookID)
	if err != nil {
		return request.Request{}, err
	}
	if !b.HasCopies() {
		return request.Request{}, book.ErrNoCopiesAvailable
	}

	dup, err := deps.RequestStore.HasPending(ctx, input.Username, input.BookID, request.TypeBorrow)
	if err != nil {
		return request.Request{}, err
	}
	if dup {
		return request.Request{}, request.ErrDuplicateRequest
	}

	req := request.Request{
		Type:        request.TypeBorrow,
		Username:    input.Username,
		BookID:      b.ID,
		Title:       b.Title,
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

	slog.Info("request_event", "event", "borrow_requested", "username", input.Username, "book_id", b.ID, "request_id", created.ID)
	return created, nil
}
