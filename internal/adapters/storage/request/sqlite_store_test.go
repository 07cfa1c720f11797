package request

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"librarydesk/internal/adapters/storage"
	domain "librarydesk/internal/domain/request"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return NewSQLiteStore(db)
}

func pendingBorrow(username string, bookID int64) domain.Request {
	return domain.Request{
		Type:        domain.TypeBorrow,
		Username:    username,
		BookID:      bookID,
		Title:       "Clean Code",
		RequestedAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		Status:      domain.StatusPending,
	}
}

func TestCreateAndGetByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, pendingBorrow("student1", 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("id = %d, want 1", created.ID)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Type != domain.TypeBorrow || got.Status != domain.StatusPending || got.Title != "Clean Code" {
		t.Errorf("got %+v", got)
	}
	if !got.RequestedAt.Equal(created.RequestedAt) {
		t.Errorf("requested_at = %v, want %v", got.RequestedAt, created.RequestedAt)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByID(context.Background(), 5)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want wrapped sql.ErrNoRows", err)
	}
}

func TestListPending_SubmissionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Create(ctx, pendingBorrow("student2", 2))
	store.Create(ctx, pendingBorrow("student1", 1))
	resolved := pendingBorrow("student1", 3)
	resolved.Status = domain.StatusApproved
	store.Create(ctx, resolved)

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 || pending[0].Username != "student2" || pending[1].Username != "student1" {
		t.Errorf("pending = %+v", pending)
	}

	mine, err := store.ListPendingByUsername(ctx, "student1")
	if err != nil {
		t.Fatalf("ListPendingByUsername failed: %v", err)
	}
	if len(mine) != 1 || mine[0].BookID != 1 {
		t.Errorf("mine = %+v", mine)
	}
}

func TestHasPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Create(ctx, pendingBorrow("student1", 1))

	has, err := store.HasPending(ctx, "student1", 1, domain.TypeBorrow)
	if err != nil || !has {
		t.Fatalf("HasPending = %v, %v; want true, nil", has, err)
	}

	// Same pair but a different type does not count as a duplicate
	has, err = store.HasPending(ctx, "student1", 1, domain.TypeReturn)
	if err != nil || has {
		t.Fatalf("HasPending = %v, %v; want false, nil", has, err)
	}

	has, err = store.HasPending(ctx, "student2", 1, domain.TypeBorrow)
	if err != nil || has {
		t.Fatalf("HasPending = %v, %v; want false, nil", has, err)
	}
}
