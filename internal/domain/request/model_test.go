package request_test

import (
	"testing"
	"time"

	"librarydesk/internal/domain/request"
)

// TestRequest_Validate tests validation of Request.
func TestRequest_Validate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		request request.Request
		wantErr bool
	}{
		{
			name:    "valid pending borrow",
			request: request.Request{ID: 1, Type: request.TypeBorrow, Username: "student1", BookID: 1, Title: "Clean Code", RequestedAt: now, Status: request.StatusPending},
			wantErr: false,
		},
		{
			name:    "valid approved return",
			request: request.Request{ID: 2, Type: request.TypeReturn, Username: "student1", BookID: 1, RequestedAt: now, Status: request.StatusApproved},
			wantErr: false,
		},
		{
			name:    "invalid type",
			request: request.Request{ID: 3, Type: "renew", Username: "student1", BookID: 1, Status: request.StatusPending},
			wantErr: true,
		},
		{
			name:    "invalid status",
			request: request.Request{ID: 4, Type: request.TypeBorrow, Username: "student1", BookID: 1, Status: "cancelled"},
			wantErr: true,
		},
		{
			name:    "missing username",
			request: request.Request{ID: 5, Type: request.TypeBorrow, BookID: 1, Status: request.StatusPending},
			wantErr: true,
		},
		{
			name:    "missing book",
			request: request.Request{ID: 6, Type: request.TypeBorrow, Username: "student1", Status: request.StatusPending},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestRequest_IsPending tests the pending predicate across statuses.
func TestRequest_IsPending(t *testing.T) {
	r := request.Request{Type: request.TypeBorrow, Username: "u", BookID: 1, Status: request.StatusPending}
	if !r.IsPending() {
		t.Error("IsPending() = false for pending request")
	}
	r.Status = request.StatusApproved
	if r.IsPending() {
		t.Error("IsPending() = true for approved request")
	}
	r.Status = request.StatusRejected
	if r.IsPending() {
		t.Error("IsPending() = true for rejected request")
	}
}
