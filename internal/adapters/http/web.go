package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"librarydesk/internal/adapters/http/middleware"
	"librarydesk/internal/adapters/http/perf"
	accountStore "librarydesk/internal/adapters/storage/account"
	auditStore "librarydesk/internal/adapters/storage/audit"
	bookStore "librarydesk/internal/adapters/storage/book"
	circulationStore "librarydesk/internal/adapters/storage/circulation"
	issueStore "librarydesk/internal/adapters/storage/issue"
	requestStore "librarydesk/internal/adapters/storage/request"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	BookStore    bookStore.Store
	IssueStore   issueStore.Store
	RequestStore requestStore.Store
	AuditStore   auditStore.Store
	Circulation  circulationStore.Store
}

// loadCSRFKey reads the CSRF secret from LIBRARY_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("LIBRARY_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("LIBRARY_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("LIBRARY_ENV") == "production" {
		log.Fatal("LIBRARY_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (form sessions won't survive restart). Set LIBRARY_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("LIBRARY_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, []string{"localhost:5000", "127.0.0.1:5000"}),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
