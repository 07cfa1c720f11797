package request

import (
	"context"

	domain "librarydesk/internal/domain/request"
)

// Store persists Request state. Status transitions (approve/reject) happen
// only inside circulation transactions; Create appends pending requests.
type Store interface {
	Create(ctx context.Context, value domain.Request) (domain.Request, error)
	GetByID(ctx context.Context, id int64) (domain.Request, error)
	ListPending(ctx context.Context) ([]domain.Request, error)
	ListPendingByUsername(ctx context.Context, username string) ([]domain.Request, error)
	HasPending(ctx context.Context, username string, bookID int64, requestType string) (bool, error)
}
