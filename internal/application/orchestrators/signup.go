package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"librarydesk/internal/domain/account"
)

// AccountStoreForSignup defines the store interface needed by Signup.
type AccountStoreForSignup interface {
	Create(ctx context.Context, value account.Account) (account.Account, error)
}

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	Username string
	Password string
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	AccountStore AccountStoreForSignup
	Now          func() time.Time
}

// ExecuteSignup registers a new student account. Admin accounts are only
// created by seeding; there is no self-service path to the admin role.
// PRE: Username is non-empty, Password meets policy
// POST: Student account persisted, or ErrUsernameTaken on collision
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (account.Account, error) {
	acct := account.Account{
		Username:  strings.TrimSpace(input.Username),
		Role:      account.RoleStudent,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}

	created, err := deps.AccountStore.Create(ctx, acct)
	if err != nil {
		return account.Account{}, err
	}

	slog.Info("auth_event", "event", "signup", "username", created.Username, "account_id", created.ID)
	return created, nil
}
