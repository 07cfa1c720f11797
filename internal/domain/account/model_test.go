package account_test

import (
	"strings"
	"testing"

	"librarydesk/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr bool
	}{
		{
			name:    "valid admin",
			account: account.Account{ID: 1, Username: "admin", Role: account.RoleAdmin},
			wantErr: false,
		},
		{
			name:    "valid student",
			account: account.Account{ID: 2, Username: "student1", Role: account.RoleStudent},
			wantErr: false,
		},
		{
			name:    "empty username",
			account: account.Account{ID: 3, Username: "   ", Role: account.RoleStudent},
			wantErr: true,
		},
		{
			name:    "username too long",
			account: account.Account{ID: 4, Username: strings.Repeat("x", 65), Role: account.RoleStudent},
			wantErr: true,
		},
		{
			name:    "invalid role",
			account: account.Account{ID: 5, Username: "bob", Role: "librarian"},
			wantErr: true,
		},
		{
			name:    "empty role",
			account: account.Account{ID: 6, Username: "bob"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_SetPassword_And_CheckPassword tests the bcrypt round trip.
func TestAccount_SetPassword_And_CheckPassword(t *testing.T) {
	a := account.Account{Username: "student1", Role: account.RoleStudent}

	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("SetPassword() unexpected error: %v", err)
	}
	if a.PasswordHash == "" {
		t.Fatal("PasswordHash not set")
	}
	if a.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}

	if err := a.CheckPassword("correct horse battery"); err != nil {
		t.Errorf("CheckPassword() with correct password: %v", err)
	}
	if err := a.CheckPassword("wrong password"); err != account.ErrWrongPassword {
		t.Errorf("CheckPassword() with wrong password = %v, want ErrWrongPassword", err)
	}
}

// TestAccount_SetPassword_Rejections tests password policy enforcement.
func TestAccount_SetPassword_Rejections(t *testing.T) {
	a := account.Account{Username: "bob", Role: account.RoleStudent}

	if err := a.SetPassword(""); err != account.ErrEmptyPassword {
		t.Errorf("empty password = %v, want ErrEmptyPassword", err)
	}
	if err := a.SetPassword("short"); err != account.ErrPasswordTooShort {
		t.Errorf("short password = %v, want ErrPasswordTooShort", err)
	}
}

// TestAccount_CheckPassword_NoHash verifies accounts without a hash never authenticate.
func TestAccount_CheckPassword_NoHash(t *testing.T) {
	a := account.Account{Username: "ghost", Role: account.RoleStudent}
	if err := a.CheckPassword("anything"); err != account.ErrWrongPassword {
		t.Errorf("CheckPassword() without hash = %v, want ErrWrongPassword", err)
	}
}

// TestAccount_RolePredicates tests IsAdmin and IsStudent.
func TestAccount_RolePredicates(t *testing.T) {
	admin := account.Account{Role: account.RoleAdmin}
	student := account.Account{Role: account.RoleStudent}

	if !admin.IsAdmin() || admin.IsStudent() {
		t.Error("admin role predicates wrong")
	}
	if !student.IsStudent() || student.IsAdmin() {
		t.Error("student role predicates wrong")
	}
}
