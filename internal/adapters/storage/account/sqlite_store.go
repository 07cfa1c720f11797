package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"librarydesk/internal/adapters/storage"
	domain "librarydesk/internal/domain/account"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id > 0
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, role, created_at FROM account WHERE id = ?", id)

	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// GetByUsername retrieves an Account by username.
// PRE: username is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, role, created_at FROM account WHERE username = ?", username)

	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// Create inserts a new Account and returns it with the store-assigned ID.
// PRE: entity has been validated and carries a password hash
// POST: Entity is persisted with id = max(existing ids)+1
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Account) (domain.Account, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO account (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)",
		entity.Username,
		entity.PasswordHash,
		entity.Role,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.Account{}, domain.ErrUsernameTaken
		}
		return domain.Account{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Account{}, err
	}
	entity.ID = id
	return entity, nil
}

// Count returns the number of accounts.
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

// scanAccount maps one account row into the domain struct.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdStr string
	if err := scan(&entity.ID, &entity.Username, &entity.PasswordHash, &entity.Role, &createdStr); err != nil {
		return domain.Account{}, err
	}
	created, err := storage.ParseStoredTime(createdStr)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	entity.CreatedAt = created
	return entity, nil
}
