package orchestrators

import (
	"context"
	"errors"
	"testing"

	"librarydesk/internal/domain/account"
	"librarydesk/internal/domain/book"
)

// mockAccountStore implements the account store interfaces for testing.
type mockAccountStore struct {
	accounts map[string]account.Account
	nextID   int64
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account), nextID: 1}
}

func (m *mockAccountStore) GetByUsername(_ context.Context, username string) (account.Account, error) {
	a, ok := m.accounts[username]
	if !ok {
		return account.Account{}, errors.New("account not found")
	}
	return a, nil
}

func (m *mockAccountStore) Create(_ context.Context, a account.Account) (account.Account, error) {
	if _, exists := m.accounts[a.Username]; exists {
		return account.Account{}, account.ErrUsernameTaken
	}
	a.ID = m.nextID
	m.nextID++
	m.accounts[a.Username] = a
	return a, nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// mockSeedBookStore implements BookStoreForSeed for testing.
type mockSeedBookStore struct {
	books  []book.Book
	nextID int64
}

func (m *mockSeedBookStore) Create(_ context.Context, b book.Book) (book.Book, error) {
	m.nextID++
	b.ID = m.nextID
	m.books = append(m.books, b)
	return b, nil
}

func (m *mockSeedBookStore) List(_ context.Context) ([]book.Book, error) {
	return m.books, nil
}

func TestExecuteSignup(t *testing.T) {
	store := newMockAccountStore()

	acct, err := ExecuteSignup(context.Background(), SignupInput{
		Username: "  newstudent  ",
		Password: "longenough",
	}, SignupDeps{AccountStore: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acct.Username != "newstudent" {
		t.Errorf("username = %q, want trimmed newstudent", acct.Username)
	}
	if acct.Role != account.RoleStudent {
		t.Errorf("role = %q, want student", acct.Role)
	}
	if acct.PasswordHash == "" || acct.PasswordHash == "longenough" {
		t.Error("password must be stored hashed")
	}
}

func TestExecuteSignup_ShortPassword(t *testing.T) {
	store := newMockAccountStore()

	_, err := ExecuteSignup(context.Background(), SignupInput{
		Username: "newstudent",
		Password: "short",
	}, SignupDeps{AccountStore: store, Now: fixedNow})
	if !errors.Is(err, account.ErrPasswordTooShort) {
		t.Fatalf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestExecuteSignup_UsernameTaken(t *testing.T) {
	store := newMockAccountStore()
	deps := SignupDeps{AccountStore: store, Now: fixedNow}
	input := SignupInput{Username: "dup", Password: "longenough"}

	if _, err := ExecuteSignup(context.Background(), input, deps); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	_, err := ExecuteSignup(context.Background(), input, deps)
	if !errors.Is(err, account.ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestExecuteLogin(t *testing.T) {
	store := newMockAccountStore()
	acct := account.Account{Username: "student1", Role: account.RoleStudent, CreatedAt: fixedTime}
	if err := acct.SetPassword("stud1234"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	store.accounts["student1"] = acct

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Username: "student1",
		Password: "stud1234",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Username != "student1" || result.Role != account.RoleStudent {
		t.Errorf("result = %+v", result)
	}
}

func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore()
	acct := account.Account{Username: "student1", Role: account.RoleStudent}
	acct.SetPassword("stud1234")
	store.accounts["student1"] = acct

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Username: "student1",
		Password: "wrongpass",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestExecuteLogin_UnknownUser(t *testing.T) {
	store := newMockAccountStore()

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Username: "ghost",
		Password: "whatever1",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestExecuteSeedLibrary(t *testing.T) {
	accounts := newMockAccountStore()
	books := &mockSeedBookStore{}

	err := ExecuteSeedLibrary(context.Background(), SeedLibraryInput{
		AdminPassword:   "admin12345",
		StudentPassword: "stud12345",
	}, SeedLibraryDeps{AccountStore: accounts, BookStore: books, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts.accounts) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(accounts.accounts))
	}
	if accounts.accounts["admin"].Role != account.RoleAdmin {
		t.Errorf("admin role = %q", accounts.accounts["admin"].Role)
	}
	if len(books.books) != 3 {
		t.Errorf("expected 3 starter books, got %d", len(books.books))
	}
}

func TestExecuteSeedLibrary_SkipsNonEmpty(t *testing.T) {
	accounts := newMockAccountStore()
	accounts.accounts["existing"] = account.Account{Username: "existing", Role: account.RoleStudent}
	books := &mockSeedBookStore{}

	err := ExecuteSeedLibrary(context.Background(), SeedLibraryInput{
		AdminPassword:   "admin12345",
		StudentPassword: "stud12345",
	}, SeedLibraryDeps{AccountStore: accounts, BookStore: books, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts.accounts) != 1 {
		t.Errorf("seed should be a no-op, got %d accounts", len(accounts.accounts))
	}
	if len(books.books) != 0 {
		t.Errorf("seed should be a no-op, got %d books", len(books.books))
	}
}
