package storage

import (
	"database/sql"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var expectedTables = []string{
	"account",
	"audit_log",
	"book",
	"issue",
	"request",
}

func TestInitDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed on fresh db: %v", err)
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Fatalf("got %d tables, want %d\ngot:  %v\nwant: %v", len(tables), len(expectedTables), tables, expectedTables)
	}
	for i, want := range expectedTables {
		if tables[i] != want {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], want)
		}
	}
}

func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("first InitDB failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO book (title, author, available) VALUES ('Clean Code', 'Robert C. Martin', 3)`); err != nil {
		t.Fatalf("failed to insert book: %v", err)
	}

	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}

	var title string
	if err := db.QueryRow("SELECT title FROM book WHERE id = 1").Scan(&title); err != nil {
		t.Fatalf("data lost after second InitDB: %v", err)
	}
	if title != "Clean Code" {
		t.Errorf("title = %q, want %q", title, "Clean Code")
	}
}

// TestInitDB_IDsAreMaxPlusOne verifies the rowid assignment rule the request
// queue depends on: new ids are max(existing ids)+1, and deleting the
// highest row lets its id be reused.
func TestInitDB_IDsAreMaxPlusOne(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	res, err := db.Exec(`INSERT INTO book (title, author, available) VALUES ('A', 'X', 1)`)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	id1, _ := res.LastInsertId()
	if id1 != 1 {
		t.Errorf("first id = %d, want 1", id1)
	}

	res, _ = db.Exec(`INSERT INTO book (title, author, available) VALUES ('B', 'Y', 1)`)
	id2, _ := res.LastInsertId()
	if id2 != 2 {
		t.Errorf("second id = %d, want 2", id2)
	}

	if _, err := db.Exec(`DELETE FROM book WHERE id = 2`); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	res, _ = db.Exec(`INSERT INTO book (title, author, available) VALUES ('C', 'Z', 1)`)
	id3, _ := res.LastInsertId()
	if id3 != 2 {
		t.Errorf("id after deleting the max = %d, want 2", id3)
	}
}

// TestInitDB_AvailableCheck verifies the database-level guard on negative
// availability.
func TestInitDB_AvailableCheck(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO book (title, author, available) VALUES ('A', 'X', -1)`); err == nil {
		t.Error("expected CHECK violation inserting negative available, got nil")
	}

	if _, err := db.Exec(`INSERT INTO book (title, author, available) VALUES ('A', 'X', 0)`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := db.Exec(`UPDATE book SET available = available - 1 WHERE id = 1`); err == nil {
		t.Error("expected CHECK violation decrementing below zero, got nil")
	}
}
