package circulation

import (
	"context"
	"database/sql"
	"fmt"

	"librarydesk/internal/adapters/storage"
	requeststore "librarydesk/internal/adapters/storage/request"
	"librarydesk/internal/domain/book"
	"librarydesk/internal/domain/issue"
	"librarydesk/internal/domain/request"
)

// SQLiteStore implements Store using SQLite transactions.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new circulation Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Approve resolves a pending request, applying its full effect in one
// transaction. For a borrow: decrement the book's available count and open
// an issue. For a return: close the open issue and increment the count.
// Any failed precondition rolls back everything and the request stays
// pending.
// PRE: requestID > 0, today is a YYYY-MM-DD date
// POST: Request is approved with all side effects applied, or nothing changed
// INVARIANT: available never goes below zero
func (s *SQLiteStore) Approve(ctx context.Context, requestID int64, today string) (request.Request, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return request.Request{}, err
	}
	defer tx.Rollback()

	req, err := lockRequest(ctx, tx, requestID)
	if err != nil {
		return request.Request{}, err
	}

	switch req.Type {
	case request.TypeBorrow:
		if err := applyBorrow(ctx, tx, &req, today); err != nil {
			return request.Request{}, err
		}
	case request.TypeReturn:
		if err := applyReturn(ctx, tx, &req, today); err != nil {
			return request.Request{}, err
		}
	default:
		return request.Request{}, request.ErrInvalidType
	}

	if err := setStatus(ctx, tx, req.ID, request.StatusApproved); err != nil {
		return request.Request{}, err
	}
	if err := tx.Commit(); err != nil {
		return request.Request{}, err
	}
	req.Status = request.StatusApproved
	return req, nil
}

// Reject resolves a pending request without touching inventory or ledger.
// PRE: requestID > 0
// POST: Request status is rejected, or nothing changed on error
func (s *SQLiteStore) Reject(ctx context.Context, requestID int64) (request.Request, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return request.Request{}, err
	}
	defer tx.Rollback()

	req, err := lockRequest(ctx, tx, requestID)
	if err != nil {
		return request.Request{}, err
	}
	if err := setStatus(ctx, tx, req.ID, request.StatusRejected); err != nil {
		return request.Request{}, err
	}
	if err := tx.Commit(); err != nil {
		return request.Request{}, err
	}
	req.Status = request.StatusRejected
	return req, nil
}

// DeleteBook removes a book from the inventory unless copies are still out.
// Deleting a book that does not exist succeeds; the end state is the same.
// Closed issue history and resolved requests keep their snapshots.
// PRE: bookID > 0
// POST: Book row is gone, or unchanged if it has open issues
func (s *SQLiteStore) DeleteBook(ctx context.Context, bookID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var open bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM issue WHERE book_id = ? AND return_date IS NULL)", bookID).
		Scan(&open)
	if err != nil {
		return err
	}
	if open {
		return book.ErrHasOpenIssues
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM book WHERE id = ?", bookID); err != nil {
		return err
	}
	return tx.Commit()
}

// lockRequest reads the request row inside the transaction and verifies it
// is still pending.
func lockRequest(ctx context.Context, tx *sql.Tx, requestID int64) (request.Request, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT id, type, username, book_id, title, requested_at, status FROM request WHERE id = ?",
		requestID)
	req, err := requeststore.ScanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return request.Request{}, fmt.Errorf("request not found: %w", err)
	}
	if err != nil {
		return request.Request{}, err
	}
	if !req.IsPending() {
		return request.Request{}, request.ErrNotPending
	}
	return req, nil
}

// applyBorrow re-validates availability at approval time and applies the
// borrow effect. A missing book counts as zero copies.
func applyBorrow(ctx context.Context, tx *sql.Tx, req *request.Request, today string) error {
	var available int
	err := tx.QueryRowContext(ctx,
		"SELECT available FROM book WHERE id = ?", req.BookID).Scan(&available)
	if err == sql.ErrNoRows || (err == nil && available <= 0) {
		return book.ErrNoCopiesAvailable
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE book SET available = available - 1 WHERE id = ?", req.BookID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO issue (username, book_id, title, issue_date, return_date) VALUES (?, ?, ?, ?, NULL)",
		req.Username, req.BookID, req.Title, today)
	return err
}

// applyReturn closes the open issue and puts the copy back on the shelf.
// Submission verified an open issue existed, so finding none here means the
// ledger was corrupted after the request was queued.
// The book row may have been deleted while the copy was out; the count
// update is then a no-op and the return still succeeds.
func applyReturn(ctx context.Context, tx *sql.Tx, req *request.Request, today string) error {
	var issueID int64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM issue WHERE username = ? AND book_id = ? AND return_date IS NULL",
		req.Username, req.BookID).Scan(&issueID)
	if err == sql.ErrNoRows {
		return issue.ErrLedgerInconsistent
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE issue SET return_date = ? WHERE id = ?", today, issueID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE book SET available = available + 1 WHERE id = ?", req.BookID)
	return err
}

// setStatus moves a pending request to its terminal status.
func setStatus(ctx context.Context, tx *sql.Tx, requestID int64, status string) error {
	result, err := tx.ExecContext(ctx,
		"UPDATE request SET status = ? WHERE id = ? AND status = ?",
		status, requestID, request.StatusPending)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return request.ErrNotPending
	}
	return nil
}
