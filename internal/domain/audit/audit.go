package audit

import (
	"errors"
	"time"
)

// Actions recorded in the audit log.
const (
	ActionApproveRequest = "approve_request"
	ActionRejectRequest  = "reject_request"
	ActionAddBook        = "add_book"
	ActionRemoveBook     = "remove_book"
	ActionAdjustStock    = "adjust_stock"
)

// Entry is one append-only record of an administrative action.
type Entry struct {
	ID        string // UUID
	Actor     string // username of the admin
	Action    string
	Subject   string // e.g. "request:7" or "book:3"
	Detail    string
	CreatedAt time.Time
}

// Validate checks if the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.ID == "" {
		return errors.New("audit entry must have an ID")
	}
	if e.Actor == "" {
		return errors.New("audit entry must name an actor")
	}
	if e.Action == "" {
		return errors.New("audit entry must name an action")
	}
	if e.CreatedAt.IsZero() {
		return errors.New("audit entry must be timestamped")
	}
	return nil
}
