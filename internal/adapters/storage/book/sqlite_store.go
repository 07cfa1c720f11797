package book

import (
	"context"
	"database/sql"
	"fmt"

	"librarydesk/internal/adapters/storage"
	domain "librarydesk/internal/domain/book"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new BookStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Book by its ID.
// PRE: id > 0
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, author, notes, available FROM book WHERE id = ?", id)

	var entity domain.Book
	err := row.Scan(&entity.ID, &entity.Title, &entity.Author, &entity.Notes, &entity.Available)
	if err == sql.ErrNoRows {
		return domain.Book{}, fmt.Errorf("book not found: %w", err)
	}
	return entity, err
}

// List retrieves all books ordered by ID.
// POST: Returns every book in the inventory
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, author, notes, available FROM book ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Book
	for rows.Next() {
		var entity domain.Book
		if err := rows.Scan(&entity.ID, &entity.Title, &entity.Author, &entity.Notes, &entity.Available); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Create inserts a new Book and returns it with the store-assigned ID.
// PRE: entity has been validated
// POST: Entity is persisted with id = max(existing ids)+1
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Book) (domain.Book, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO book (title, author, notes, available) VALUES (?, ?, ?, ?)",
		entity.Title, entity.Author, entity.Notes, entity.Available)
	if err != nil {
		return domain.Book{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Book{}, err
	}
	entity.ID = id
	return entity, nil
}

// AdjustAvailable changes the available count by delta inside one transaction.
// PRE: id > 0
// POST: available is adjusted, or the book is unchanged on error
// INVARIANT: available never goes negative
func (s *SQLiteStore) AdjustAvailable(ctx context.Context, id int64, delta int) (domain.Book, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Book{}, err
	}
	defer tx.Rollback()

	var entity domain.Book
	err = tx.QueryRowContext(ctx,
		"SELECT id, title, author, notes, available FROM book WHERE id = ?", id).
		Scan(&entity.ID, &entity.Title, &entity.Author, &entity.Notes, &entity.Available)
	if err == sql.ErrNoRows {
		return domain.Book{}, fmt.Errorf("book not found: %w", err)
	}
	if err != nil {
		return domain.Book{}, err
	}

	if entity.Available+delta < 0 {
		return domain.Book{}, domain.ErrNegativeAvailable
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE book SET available = available + ? WHERE id = ?", delta, id); err != nil {
		return domain.Book{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Book{}, err
	}
	entity.Available += delta
	return entity, nil
}
