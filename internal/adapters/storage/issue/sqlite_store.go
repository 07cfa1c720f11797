package issue

import (
	"context"
	"database/sql"
	"fmt"

	"librarydesk/internal/adapters/storage"
	domain "librarydesk/internal/domain/issue"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new IssueStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// FindOpen retrieves the open issue for a (username, bookID) pair.
// At most one open issue exists per pair.
// PRE: username is non-empty, bookID > 0
// POST: Returns the open issue or an error if none exists
func (s *SQLiteStore) FindOpen(ctx context.Context, username string, bookID int64) (domain.Issue, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, book_id, title, issue_date, return_date FROM issue WHERE username = ? AND book_id = ? AND return_date IS NULL",
		username, bookID)

	entity, err := scanIssue(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Issue{}, fmt.Errorf("open issue not found: %w", err)
	}
	return entity, err
}

// ListOpenByUsername retrieves all open issues for a user, ordered by ID.
// PRE: username is non-empty
// POST: Returns the user's open issues
func (s *SQLiteStore) ListOpenByUsername(ctx context.Context, username string) ([]domain.Issue, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, book_id, title, issue_date, return_date FROM issue WHERE username = ? AND return_date IS NULL ORDER BY id",
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIssues(rows)
}

// ListAll retrieves the full ledger (open and closed), ordered by ID.
// POST: Returns every issue record
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Issue, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, book_id, title, issue_date, return_date FROM issue ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIssues(rows)
}

// HasOpenForBook reports whether any user currently holds the book.
// PRE: bookID > 0
// POST: Returns true if an open issue references the book
func (s *SQLiteStore) HasOpenForBook(ctx context.Context, bookID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM issue WHERE book_id = ? AND return_date IS NULL)", bookID).
		Scan(&exists)
	return exists, err
}

// scanIssue maps one issue row into the domain struct.
func scanIssue(scan func(dest ...any) error) (domain.Issue, error) {
	var entity domain.Issue
	var returnDate sql.NullString
	if err := scan(&entity.ID, &entity.Username, &entity.BookID, &entity.Title, &entity.IssueDate, &returnDate); err != nil {
		return domain.Issue{}, err
	}
	if returnDate.Valid {
		entity.ReturnDate = returnDate.String
	}
	return entity, nil
}

func collectIssues(rows *sql.Rows) ([]domain.Issue, error) {
	var results []domain.Issue
	for rows.Next() {
		entity, err := scanIssue(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
