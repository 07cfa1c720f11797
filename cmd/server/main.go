package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	web "librarydesk/internal/adapters/http"
	"librarydesk/internal/adapters/http/perf"
	"librarydesk/internal/adapters/storage"
	accountStore "librarydesk/internal/adapters/storage/account"
	auditStore "librarydesk/internal/adapters/storage/audit"
	bookStore "librarydesk/internal/adapters/storage/book"
	circulationStore "librarydesk/internal/adapters/storage/circulation"
	issueStore "librarydesk/internal/adapters/storage/issue"
	requestStore "librarydesk/internal/adapters/storage/request"
	"librarydesk/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// WAL mode, busy timeout and FK enforcement set via DSN pragmas
	dbPath := envOrDefault("LIBRARY_DB", "library.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	bkStore := bookStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore: acctStore,
		BookStore:    bkStore,
		IssueStore:   issueStore.NewSQLiteStore(timedDB),
		RequestStore: requestStore.NewSQLiteStore(timedDB),
		AuditStore:   auditStore.NewSQLiteStore(timedDB),
		Circulation:  circulationStore.NewSQLiteStore(timedDB),
	}

	// Seed starter accounts and catalogue on an empty database
	seedInput := orchestrators.SeedLibraryInput{
		AdminPassword:   envOrDefault("LIBRARY_ADMIN_PASSWORD", "admin123!"),
		StudentPassword: envOrDefault("LIBRARY_STUDENT_PASSWORD", "stud123!"),
	}
	seedDeps := orchestrators.SeedLibraryDeps{
		AccountStore: acctStore,
		BookStore:    bkStore,
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedLibrary(context.Background(), seedInput, seedDeps); err != nil {
		log.Fatalf("failed to seed library: %v", err)
	}

	mux := web.NewMux("static", stores, collector)

	addr := envOrDefault("LIBRARY_ADDR", ":5000")
	log.Printf("librarydesk %s starting on %s (env=%s)", version, addr, envOrDefault("LIBRARY_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
