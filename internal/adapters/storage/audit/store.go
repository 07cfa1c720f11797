package audit

import (
	"context"

	domain "librarydesk/internal/domain/audit"
)

// Store persists the append-only audit log.
type Store interface {
	Append(ctx context.Context, entry domain.Entry) error
	ListRecent(ctx context.Context, limit int) ([]domain.Entry, error)
}
