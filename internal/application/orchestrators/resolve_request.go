package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"librarydesk/internal/domain/audit"
	"librarydesk/internal/domain/request"
)

// CirculationForResolve defines the transactional store interface needed
// to resolve requests.
type CirculationForResolve interface {
	Approve(ctx context.Context, requestID int64, today string) (request.Request, error)
	Reject(ctx context.Context, requestID int64) (request.Request, error)
}

// AuditStoreForResolve defines the audit interface for recording decisions.
type AuditStoreForResolve interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// ResolveRequestInput carries input for the approve/reject orchestrators.
type ResolveRequestInput struct {
	RequestID int64
	Actor     string // admin username
}

// ResolveRequestDeps holds dependencies for ApproveRequest and RejectRequest.
type ResolveRequestDeps struct {
	Circulation CirculationForResolve
	AuditStore  AuditStoreForResolve
	Now         func() time.Time
}

// ExecuteApproveRequest applies a pending request's full effect atomically.
// PRE: Actor is an admin, RequestID > 0
// POST: Request approved with inventory and ledger updated, or nothing changed
func ExecuteApproveRequest(ctx context.Context, input ResolveRequestInput, deps ResolveRequestDeps) (request.Request, error) {
	now := deps.Now()
	today := now.UTC().Format("2006-01-02")

	req, err := deps.Circulation.Approve(ctx, input.RequestID, today)
	if err != nil {
		slog.Info("request_event", "event", "approve_failed", "request_id", input.RequestID, "actor", input.Actor, "reason", err.Error())
		return request.Request{}, err
	}

	recordDecision(ctx, deps, audit.Entry{
		ID:        uuid.NewString(),
		Actor:     input.Actor,
		Action:    audit.ActionApproveRequest,
		Subject:   fmt.Sprintf("request:%d", req.ID),
		Detail:    fmt.Sprintf("%s %q for %s", req.Type, req.Title, req.Username),
		CreatedAt: now,
	})

	slog.Info("request_event", "event", "request_approved", "request_id", req.ID, "type", req.Type, "username", req.Username, "actor", input.Actor)
	return req, nil
}

// ExecuteRejectRequest declines a pending request without side effects.
// PRE: Actor is an admin, RequestID > 0
// POST: Request rejected; inventory and ledger untouched
func ExecuteRejectRequest(ctx context.Context, input ResolveRequestInput, deps ResolveRequestDeps) (request.Request, error) {
	req, err := deps.Circulation.Reject(ctx, input.RequestID)
	if err != nil {
		slog.Info("request_event", "event", "reject_failed", "request_id", input.RequestID, "actor", input.Actor, "reason", err.Error())
		return request.Request{}, err
	}

	recordDecision(ctx, deps, audit.Entry{
		ID:        uuid.NewString(),
		Actor:     input.Actor,
		Action:    audit.ActionRejectRequest,
		Subject:   fmt.Sprintf("request:%d", req.ID),
		Detail:    fmt.Sprintf("%s %q for %s", req.Type, req.Title, req.Username),
		CreatedAt: deps.Now(),
	})

	slog.Info("request_event", "event", "request_rejected", "request_id", req.ID, "type", req.Type, "username", req.Username, "actor", input.Actor)
	return req, nil
}

// recordDecision appends to the audit log. The decision itself has already
// committed, so a failed audit write is logged rather than surfaced.
func recordDecision(ctx context.Context, deps ResolveRequestDeps, entry audit.Entry) {
	if deps.AuditStore == nil {
		return
	}
	if err := deps.AuditStore.Append(ctx, entry); err != nil {
		slog.Warn("audit_event", "event", "append_failed", "action", entry.Action, "subject", entry.Subject, "error", err)
	}
}
