package request

import (
	"errors"
	"time"
)

// Request types
const (
	TypeBorrow = "borrow"
	TypeReturn = "return"
)

// Request statuses. A request transitions pending -> approved or
// pending -> rejected exactly once and is immutable thereafter.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidTypes contains all valid request types.
var ValidTypes = []string{TypeBorrow, TypeReturn}

// ValidStatuses contains all valid request statuses.
var ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// Domain errors
var (
	ErrInvalidType      = errors.New("request type must be one of: borrow, return")
	ErrInvalidStatus    = errors.New("request status must be one of: pending, approved, rejected")
	ErrEmptyUsername    = errors.New("request must be associated with a user")
	ErrMissingBook      = errors.New("request must reference a book")
	ErrDuplicateRequest = errors.New("a pending request of this type already exists for this book")
	ErrNotPending       = errors.New("request is not pending")
)

// Request is a student's borrow or return request awaiting an admin decision.
type Request struct {
	ID          int64
	Type        string
	Username    string
	BookID      int64
	Title       string // snapshot of the book title at submission
	RequestedAt time.Time
	Status      string
}

// Validate checks if the Request has valid data.
// PRE: Request struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Request) Validate() error {
	if !contains(ValidTypes, r.Type) {
		return ErrInvalidType
	}
	if !contains(ValidStatuses, r.Status) {
		return ErrInvalidStatus
	}
	if r.Username == "" {
		return ErrEmptyUsername
	}
	if r.BookID <= 0 {
		return ErrMissingBook
	}
	return nil
}

// IsPending returns true while the request awaits a decision.
// INVARIANT: Request fields are not mutated
func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
