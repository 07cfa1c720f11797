package book

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength  = 200
	MaxAuthorLength = 120
	MaxNotesLength  = 4000
)

// Domain errors
var (
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrEmptyAuthor       = errors.New("author cannot be empty")
	ErrNegativeAvailable = errors.New("available copies cannot be negative")
	ErrNoCopiesAvailable = errors.New("no copies available")
	ErrHasOpenIssues     = errors.New("book has open issues")
)

// Book holds state for a title in the inventory. Available is the count of
// copies on the shelf; it is mutated only through circulation transactions.
type Book struct {
	ID        int64
	Title     string
	Author    string
	Notes     string // optional markdown shown on the catalogue
	Available int
}

// Validate checks if the Book has valid data.
// PRE: Book struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: Available >= 0
func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyTitle
	}
	if len(b.Title) > MaxTitleLength {
		return errors.New("title cannot exceed 200 characters")
	}
	if strings.TrimSpace(b.Author) == "" {
		return ErrEmptyAuthor
	}
	if len(b.Author) > MaxAuthorLength {
		return errors.New("author cannot exceed 120 characters")
	}
	if len(b.Notes) > MaxNotesLength {
		return errors.New("notes cannot exceed 4000 characters")
	}
	if b.Available < 0 {
		return ErrNegativeAvailable
	}
	return nil
}

// HasCopies returns true if at least one copy is on the shelf.
// INVARIANT: Book fields are not mutated
func (b *Book) HasCopies() bool {
	return b.Available > 0
}
