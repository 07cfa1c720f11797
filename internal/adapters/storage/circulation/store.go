package circulation

import (
	"context"

	"librarydesk/internal/domain/request"
)

// Store performs the multi-table circulation transitions. Each method runs
// as a single database transaction so the inventory, the issue ledger and
// the request queue move together or not at all.
type Store interface {
	Approve(ctx context.Context, requestID int64, today string) (request.Request, error)
	Reject(ctx context.Context, requestID int64) (request.Request, error)
	DeleteBook(ctx context.Context, bookID int64) error
}
