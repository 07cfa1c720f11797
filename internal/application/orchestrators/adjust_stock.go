package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"librarydesk/internal/domain/audit"
	"librarydesk/internal/domain/book"
)

// AdjustStockInput carries input for the stock-adjust orchestrator.
type AdjustStockInput struct {
	Actor  string // admin username
	BookID int64
	Delta  int // copies added (positive) or withdrawn (negative)
}

// AdjustStockDeps holds dependencies for AdjustStock.
type AdjustStockDeps struct {
	BookStore  BookStoreForAdmin
	AuditStore AuditStoreForResolve
	Now        func() time.Time
}

// ExecuteAdjustStock changes a book's shelf count by a delta.
// PRE: Actor is an admin, BookID > 0, Delta != 0
// POST: available adjusted, or unchanged if the result would be negative
// INVARIANT: available never goes below zero
func ExecuteAdjustStock(ctx context.Context, input AdjustStockInput, deps AdjustStockDeps) (book.Book, error) {
	if input.Delta == 0 {
		return book.Book{}, fmt.Errorf("stock delta must be non-zero")
	}

	adjusted, err := deps.BookStore.AdjustAvailable(ctx, input.BookID, input.Delta)
	if err != nil {
		slog.Info("inventory_event", "event", "adjust_failed", "book_id", input.BookID, "delta", input.Delta, "actor", input.Actor, "reason", err.Error())
		return book.Book{}, err
	}

	appendAudit(ctx, deps.AuditStore, audit.Entry{
		ID:        uuid.NewString(),
		Actor:     input.Actor,
		Action:    audit.ActionAdjustStock,
		Subject:   fmt.Sprintf("book:%d", input.BookID),
		Detail:    fmt.Sprintf("delta %+d, now %d", input.Delta, adjusted.Available),
		CreatedAt: deps.Now(),
	})

	slog.Info("inventory_event", "event", "stock_adjusted", "book_id", input.BookID, "delta", input.Delta, "available", adjusted.Available, "actor", input.Actor)
	return adjusted, nil
}
