package issue

import (
	"errors"
)

// Domain errors
var (
	ErrNoOpenIssue        = errors.New("no open issue for this book")
	ErrLedgerInconsistent = errors.New("issue ledger is inconsistent")
	ErrEmptyUsername      = errors.New("issue must be associated with a user")
	ErrMissingBook        = errors.New("issue must reference a book")
	ErrMissingIssueDate   = errors.New("issue date must be set")
)

// Issue records a copy of a book being out with a user. ReturnDate is empty
// while the issue is open; closing an issue sets it.
// Dates are stored as YYYY-MM-DD strings.
type Issue struct {
	ID         int64
	Username   string
	BookID     int64
	Title      string // snapshot of the book title at issue time
	IssueDate  string
	ReturnDate string // empty while the book is out
}

// Validate checks if the Issue has valid data.
// PRE: Issue struct is populated
// POST: Returns nil if valid, error otherwise
func (i *Issue) Validate() error {
	if i.Username == "" {
		return ErrEmptyUsername
	}
	if i.BookID <= 0 {
		return ErrMissingBook
	}
	if i.IssueDate == "" {
		return ErrMissingIssueDate
	}
	if i.ReturnDate != "" && i.ReturnDate < i.IssueDate {
		return errors.New("return date cannot be before issue date")
	}
	return nil
}

// IsOpen returns true while the book is still out with the user.
// INVARIANT: Issue fields are not mutated
func (i *Issue) IsOpen() bool {
	return i.ReturnDate == ""
}
