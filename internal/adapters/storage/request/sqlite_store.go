package request

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"librarydesk/internal/adapters/storage"
	domain "librarydesk/internal/domain/request"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new RequestStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a new Request and returns it with the store-assigned ID.
// PRE: entity has been validated and is pending
// POST: Entity is persisted with id = max(existing ids)+1
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Request) (domain.Request, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO request (type, username, book_id, title, requested_at, status) VALUES (?, ?, ?, ?, ?, ?)",
		entity.Type,
		entity.Username,
		entity.BookID,
		entity.Title,
		entity.RequestedAt.Format(time.RFC3339Nano),
		entity.Status,
	)
	if err != nil {
		return domain.Request{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Request{}, err
	}
	entity.ID = id
	return entity, nil
}

// GetByID retrieves a Request by its ID.
// PRE: id > 0
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Request, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, type, username, book_id, title, requested_at, status FROM request WHERE id = ?", id)

	entity, err := ScanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Request{}, fmt.Errorf("request not found: %w", err)
	}
	return entity, err
}

// ListPending retrieves all pending requests in submission order.
// POST: Returns pending requests ordered by id ascending
func (s *SQLiteStore) ListPending(ctx context.Context) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, username, book_id, title, requested_at, status FROM request WHERE status = ? ORDER BY id",
		domain.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListPendingByUsername retrieves a user's pending requests in submission order.
// PRE: username is non-empty
// POST: Returns the user's pending requests ordered by id ascending
func (s *SQLiteStore) ListPendingByUsername(ctx context.Context, username string) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, username, book_id, title, requested_at, status FROM request WHERE status = ? AND username = ? ORDER BY id",
		domain.StatusPending, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// HasPending reports whether a pending request of the given type exists
// for the (username, bookID) pair.
// PRE: username is non-empty, bookID > 0, requestType is valid
// POST: Returns true if a matching pending request exists
func (s *SQLiteStore) HasPending(ctx context.Context, username string, bookID int64, requestType string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM request WHERE username = ? AND book_id = ? AND type = ? AND status = ?)",
		username, bookID, requestType, domain.StatusPending).
		Scan(&exists)
	return exists, err
}

// ScanRequest maps one request row into the domain struct. Shared with the
// circulation store, which reads request rows inside its transactions.
func ScanRequest(scan func(dest ...any) error) (domain.Request, error) {
	var entity domain.Request
	var requestedStr string
	if err := scan(&entity.ID, &entity.Type, &entity.Username, &entity.BookID, &entity.Title, &requestedStr, &entity.Status); err != nil {
		return domain.Request{}, err
	}
	requested, err := storage.ParseStoredTime(requestedStr)
	if err != nil {
		return domain.Request{}, fmt.Errorf("failed to parse requested_at: %w", err)
	}
	entity.RequestedAt = requested
	return entity, nil
}

func collectRequests(rows *sql.Rows) ([]domain.Request, error) {
	var results []domain.Request
	for rows.Next() {
		entity, err := ScanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
