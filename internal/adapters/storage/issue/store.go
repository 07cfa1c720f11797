package issue

import (
	"context"

	domain "librarydesk/internal/domain/issue"
)

// Store reads Issue state. Issues are created and closed only inside
// circulation transactions; this interface is the read side of the ledger.
type Store interface {
	FindOpen(ctx context.Context, username string, bookID int64) (domain.Issue, error)
	ListOpenByUsername(ctx context.Context, username string) ([]domain.Issue, error)
	ListAll(ctx context.Context) ([]domain.Issue, error)
	HasOpenForBook(ctx context.Context, bookID int64) (bool, error)
}
