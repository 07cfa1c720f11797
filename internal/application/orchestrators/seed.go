package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"librarydesk/internal/domain/account"
	"librarydesk/internal/domain/book"
)

// AccountStoreForSeed defines the store interface needed by seeding.
type AccountStoreForSeed interface {
	Create(ctx context.Context, value account.Account) (account.Account, error)
	Count(ctx context.Context) (int, error)
}

// BookStoreForSeed defines the store interface needed by seeding.
type BookStoreForSeed interface {
	Create(ctx context.Context, value book.Book) (book.Book, error)
	List(ctx context.Context) ([]book.Book, error)
}

// SeedLibraryInput carries the starter credentials.
type SeedLibraryInput struct {
	AdminPassword   string
	StudentPassword string
}

// SeedLibraryDeps holds dependencies for SeedLibrary.
type SeedLibraryDeps struct {
	AccountStore AccountStoreForSeed
	BookStore    BookStoreForSeed
	Now          func() time.Time
}

// starterBooks is the catalogue a fresh install ships with.
var starterBooks = []book.Book{
	{Title: "Clean Code", Author: "Robert C. Martin", Available: 3},
	{Title: "Atomic Habits", Author: "James Clear", Available: 2},
	{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", Available: 1},
}

// ExecuteSeedLibrary populates an empty database with starter accounts and
// books. A database with any existing account is left alone.
// PRE: Passwords meet the account policy
// POST: admin + student1 accounts and the starter catalogue exist, or no-op
func ExecuteSeedLibrary(ctx context.Context, input SeedLibraryInput, deps SeedLibraryDeps) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("seed_event", "event", "skipped", "reason", "accounts_exist", "count", count)
		return nil
	}

	now := deps.Now()
	seeds := []struct {
		username string
		password string
		role     string
	}{
		{"admin", input.AdminPassword, account.RoleAdmin},
		{"student1", input.StudentPassword, account.RoleStudent},
	}
	for _, s := range seeds {
		acct := account.Account{Username: s.username, Role: s.role, CreatedAt: now}
		if err := acct.SetPassword(s.password); err != nil {
			return err
		}
		if _, err := deps.AccountStore.Create(ctx, acct); err != nil {
			return err
		}
	}

	existing, err := deps.BookStore.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for _, b := range starterBooks {
			if _, err := deps.BookStore.Create(ctx, b); err != nil {
				return err
			}
		}
	}

	slog.Info("seed_event", "event", "seeded", "accounts", len(seeds), "books", len(starterBooks))
	return nil
}
