package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"librarydesk/internal/application/orchestrators"
	accountDomain "librarydesk/internal/domain/account"
	bookDomain "librarydesk/internal/domain/book"
	issueDomain "librarydesk/internal/domain/issue"
	requestDomain "librarydesk/internal/domain/request"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts book notes to sanitized HTML for the catalogue.
func renderMarkdown(md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTMLEscapeString(md)
	}
	return buf.String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_error", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps domain errors onto HTTP statuses. Unknown errors are
// treated as internal.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, accountDomain.ErrUsernameTaken),
		errors.Is(err, requestDomain.ErrDuplicateRequest),
		errors.Is(err, requestDomain.ErrNotPending),
		errors.Is(err, bookDomain.ErrNoCopiesAvailable),
		errors.Is(err, bookDomain.ErrHasOpenIssues),
		errors.Is(err, bookDomain.ErrNegativeAvailable),
		errors.Is(err, issueDomain.ErrNoOpenIssue):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, issueDomain.ErrLedgerInconsistent):
		internalError(w, err)
	case errors.Is(err, accountDomain.ErrEmptyUsername),
		errors.Is(err, accountDomain.ErrEmptyPassword),
		errors.Is(err, accountDomain.ErrPasswordTooShort),
		errors.Is(err, bookDomain.ErrEmptyTitle),
		errors.Is(err, bookDomain.ErrEmptyAuthor),
		errors.Is(err, requestDomain.ErrInvalidType),
		errors.Is(err, requestDomain.ErrMissingBook):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, err)
	}
}

// bookResponse is the JSON shape of a catalogue entry.
type bookResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Notes     string `json:"notes,omitempty"`
	NotesHTML string `json:"notes_html,omitempty"`
	Available int    `json:"available"`
}

func toBookResponse(b bookDomain.Book) bookResponse {
	return bookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Notes:     b.Notes,
		NotesHTML: renderMarkdown(b.Notes),
		Available: b.Available,
	}
}

// issueResponse is the JSON shape of a ledger record.
type issueResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	BookID     int64  `json:"book_id"`
	Title      string `json:"title"`
	IssueDate  string `json:"issue_date"`
	ReturnDate string `json:"return_date,omitempty"`
}

func toIssueResponse(i issueDomain.Issue) issueResponse {
	return issueResponse{
		ID:         i.ID,
		Username:   i.Username,
		BookID:     i.BookID,
		Title:      i.Title,
		IssueDate:  i.IssueDate,
		ReturnDate: i.ReturnDate,
	}
}

// requestResponse is the JSON shape of a queue entry.
type requestResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Username    string    `json:"username"`
	BookID      int64     `json:"book_id"`
	Title       string    `json:"title"`
	RequestedAt time.Time `json:"requested_at"`
	Status      string    `json:"status"`
}

func toRequestResponse(r requestDomain.Request) requestResponse {
	return requestResponse{
		ID:          r.ID,
		Type:        r.Type,
		Username:    r.Username,
		BookID:      r.BookID,
		Title:       r.Title,
		RequestedAt: r.RequestedAt,
		Status:      r.Status,
	}
}

// --- auth handlers ---

func handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	acct, err := orchestrators.ExecuteSignup(r.Context(), orchestrators.SignupInput{
		Username: body.Username,
		Password: body.Password,
	}, orchestrators.SignupDeps{AccountStore: stores.AccountStore, Now: timeNow})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       acct.ID,
		"username": acct.Username,
		"role":     acct.Role,
	})
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Username: body.Username,
		Password: body.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Username, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	setSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]string{
		"username": result.Username,
		"role":     result.Role,
	})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if token := sessionToken(r); token != "" {
		sessions.Delete(token)
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func handleWhoami(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"username": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username": sess.Username,
		"role":     sess.Role,
	})
}

// --- catalogue handlers ---

// handleBooks handles GET (catalogue list) and POST (admin add) for /api/books.
func handleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		books, err := stores.BookStore.List(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		out := make([]bookResponse, 0, len(books))
		for _, b := range books {
			out = append(out, toBookResponse(b))
		}
		writeJSON(w, http.StatusOK, out)

	case "POST":
		sess, ok := requireAdmin(w, r)
		if !ok {
			return
		}
		var body struct {
			Title  string `json:"title"`
			Author string `json:"author"`
			Notes  string `json:"notes"`
			Count  *int   `json:"count"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		count := 1
		if body.Count != nil {
			count = *body.Count
		}
		b, err := orchestrators.ExecuteAddBook(r.Context(), orchestrators.AddBookInput{
			Actor:  sess.Username,
			Title:  body.Title,
			Author: body.Author,
			Notes:  body.Notes,
			Count:  count,
		}, orchestrators.AddBookDeps{BookStore: stores.BookStore, AuditStore: stores.AuditStore, Now: timeNow})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toBookResponse(b))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleBookByID handles DELETE /api/books/{id} and POST /api/books/{id}/stock.
func handleBookByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/books/")
	idPart, tail, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	switch {
	case r.Method == "DELETE" && tail == "":
		err := orchestrators.ExecuteRemoveBook(r.Context(), orchestrators.RemoveBookInput{
			Actor:  sess.Username,
			BookID: id,
		}, orchestrators.RemoveBookDeps{Circulation: stores.Circulation, AuditStore: stores.AuditStore, Now: timeNow})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})

	case r.Method == "POST" && tail == "stock":
		var body struct {
			Delta int `json:"delta"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		b, err := orchestrators.ExecuteAdjustStock(r.Context(), orchestrators.AdjustStockInput{
			Actor:  sess.Username,
			BookID: id,
			Delta:  body.Delta,
		}, orchestrators.AdjustStockDeps{BookStore: stores.BookStore, AuditStore: stores.AuditStore, Now: timeNow})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookResponse(b))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- student handlers ---

func handleMyBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, _ := sessionFromContext(r.Context())
	open, err := stores.IssueStore.ListOpenByUsername(r.Context(), sess.Username)
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]issueResponse, 0, len(open))
	for _, i := range open {
		out = append(out, toIssueResponse(i))
	}
	writeJSON(w, http.StatusOK, out)
}

func handleMyRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, _ := sessionFromContext(r.Context())
	pending, err := stores.RequestStore.ListPendingByUsername(r.Context(), sess.Username)
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]requestResponse, 0, len(pending))
	for _, p := range pending {
		out = append(out, toRequestResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func handleRequestBorrow(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, _ := sessionFromContext(r.Context())
	bookID, ok := decodeBookID(w, r)
	if !ok {
		return
	}
	req, err := orchestrators.ExecuteSubmitBorrow(r.Context(), orchestrators.SubmitBorrowInput{
		Username: sess.Username,
		BookID:   bookID,
	}, orchestrators.SubmitBorrowDeps{
		BookStore:    stores.BookStore,
		RequestStore: stores.RequestStore,
		Now:          timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestResponse(req))
}

func handleRequestReturn(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, _ := sessionFromContext(r.Context())
	bookID, ok := decodeBookID(w, r)
	if !ok {
		return
	}
	req, err := orchestrators.ExecuteSubmitReturn(r.Context(), orchestrators.SubmitReturnInput{
		Username: sess.Username,
		BookID:   bookID,
	}, orchestrators.SubmitReturnDeps{
		IssueStore:   stores.IssueStore,
		RequestStore: stores.RequestStore,
		Now:          timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestResponse(req))
}

// decodeBookID reads {"book_id": N} from the body.
func decodeBookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var body struct {
		BookID int64 `json:"book_id"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return 0, false
	}
	if body.BookID <= 0 {
		writeError(w, http.StatusBadRequest, "book_id is required")
		return 0, false
	}
	return body.BookID, true
}

// --- admin handlers ---

func handleIssued(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ledger, err := stores.IssueStore.ListAll(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]issueResponse, 0, len(ledger))
	for _, i := range ledger {
		out = append(out, toIssueResponse(i))
	}
	writeJSON(w, http.StatusOK, out)
}

func handleRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	pending, err := stores.RequestStore.ListPending(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]requestResponse, 0, len(pending))
	for _, p := range pending {
		out = append(out, toRequestResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	resolveRequest(w, r, true)
}

func handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	resolveRequest(w, r, false)
}

func resolveRequest(w http.ResponseWriter, r *http.Request, approve bool) {
	if r.Method != "POST" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, _ := sessionFromContext(r.Context())
	var body struct {
		RequestID int64 `json:"request_id"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.RequestID <= 0 {
		writeError(w, http.StatusBadRequest, "request_id is required")
		return
	}

	input := orchestrators.ResolveRequestInput{RequestID: body.RequestID, Actor: sess.Username}
	deps := orchestrators.ResolveRequestDeps{
		Circulation: stores.Circulation,
		AuditStore:  stores.AuditStore,
		Now:         timeNow,
	}

	var req requestDomain.Request
	var err error
	if approve {
		req, err = orchestrators.ExecuteApproveRequest(r.Context(), input, deps)
	} else {
		req, err = orchestrators.ExecuteRejectRequest(r.Context(), input, deps)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponse(req))
}

func handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	entries, err := stores.AuditStore.ListRecent(r.Context(), limit)
	if err != nil {
		internalError(w, err)
		return
	}
	type auditResponse struct {
		ID        string    `json:"id"`
		Actor     string    `json:"actor"`
		Action    string    `json:"action"`
		Subject   string    `json:"subject,omitempty"`
		Detail    string    `json:"detail,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}
	out := make([]auditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditResponse{
			ID: e.ID, Actor: e.Actor, Action: e.Action,
			Subject: e.Subject, Detail: e.Detail, CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if perfCollector == nil {
		writeError(w, http.StatusNotFound, "stats collection disabled")
		return
	}
	snap := perfCollector.Snapshot(timeNow().Add(-15*time.Minute), 10)
	writeJSON(w, http.StatusOK, snap)
}
