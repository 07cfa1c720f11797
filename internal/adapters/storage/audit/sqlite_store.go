package audit

import (
	"context"
	"fmt"
	"time"

	"librarydesk/internal/adapters/storage"
	domain "librarydesk/internal/domain/audit"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AuditStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append persists one audit entry.
// PRE: entry has been validated (non-empty ID, actor, action, timestamp)
// POST: Entry is stored; entries are never updated or deleted
func (s *SQLiteStore) Append(ctx context.Context, entry domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_log (id, actor, action, subject, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID, entry.Actor, entry.Action, entry.Subject, entry.Detail,
		entry.CreatedAt.Format(time.RFC3339Nano))
	return err
}

// ListRecent retrieves the most recent entries, newest first.
// PRE: limit > 0
// POST: Returns up to limit entries ordered by created_at descending
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, actor, action, subject, detail, created_at FROM audit_log ORDER BY created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

func scanEntry(scan func(dest ...any) error) (domain.Entry, error) {
	var entry domain.Entry
	var createdStr string
	if err := scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Subject, &entry.Detail, &createdStr); err != nil {
		return domain.Entry{}, err
	}
	created, err := storage.ParseStoredTime(createdStr)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	entry.CreatedAt = created
	return entry, nil
}
