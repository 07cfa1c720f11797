package book

import (
	"context"

	domain "librarydesk/internal/domain/book"
)

// Store persists Book state. Availability changes tied to approvals happen
// in the circulation store; AdjustAvailable exists for manual stock
// corrections only.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Book, error)
	List(ctx context.Context) ([]domain.Book, error)
	Create(ctx context.Context, value domain.Book) (domain.Book, error)
	AdjustAvailable(ctx context.Context, id int64, delta int) (domain.Book, error)
}
