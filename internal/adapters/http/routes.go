package web

import (
	"context"
	"net/http"

	"librarydesk/internal/adapters/http/middleware"
	accountDomain "librarydesk/internal/domain/account"
)

// registerRoutes attaches every API endpoint to the mux. Per-route
// authorization is layered here; handlers assume it already happened except
// where a single path serves mixed audiences (see handleBooks).
func registerRoutes(mux *http.ServeMux) {
	requireAuth := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}
	requireStudent := middleware.RequireRole(accountDomain.RoleStudent)
	adminOnly := middleware.RequireRole(accountDomain.RoleAdmin)

	// Public
	mux.HandleFunc("/api/signup", handleSignup)
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/whoami", handleWhoami)

	// Any authenticated user
	mux.Handle("/api/books", requireAuth(handleBooks))
	mux.Handle("/api/books/", requireAuth(handleBookByID))
	mux.Handle("/api/mybooks", requireAuth(handleMyBooks))
	mux.Handle("/api/myrequests", requireAuth(handleMyRequests))

	// Students
	mux.Handle("/api/request-borrow", requireStudent(http.HandlerFunc(handleRequestBorrow)))
	mux.Handle("/api/request-return", requireStudent(http.HandlerFunc(handleRequestReturn)))

	// Admins
	mux.Handle("/api/issued", adminOnly(http.HandlerFunc(handleIssued)))
	mux.Handle("/api/requests", adminOnly(http.HandlerFunc(handleRequests)))
	mux.Handle("/api/requests/approve", adminOnly(http.HandlerFunc(handleApproveRequest)))
	mux.Handle("/api/requests/reject", adminOnly(http.HandlerFunc(handleRejectRequest)))
	mux.Handle("/api/audit", adminOnly(http.HandlerFunc(handleAudit)))
	mux.Handle("/api/stats", adminOnly(http.HandlerFunc(handleStats)))
}

// sessionFromContext is shorthand used throughout the handlers.
func sessionFromContext(ctx context.Context) (middleware.Session, bool) {
	return middleware.GetSessionFromContext(ctx)
}

func sessionToken(r *http.Request) string {
	return middleware.SessionToken(r)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	middleware.SetSessionCookie(w, token)
}

func clearSessionCookie(w http.ResponseWriter) {
	middleware.ClearSessionCookie(w)
}

// requireAdmin enforces the admin role inside handlers that serve mixed
// audiences on a single path.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not logged in")
		return middleware.Session{}, false
	}
	if sess.Role != accountDomain.RoleAdmin {
		writeError(w, http.StatusForbidden, "Forbidden")
		return middleware.Session{}, false
	}
	return sess, true
}
