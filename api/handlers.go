/*
handlers.go - HTTP API handlers for the commission engine

PURPOSE:
  Exposes the commission ledger via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Entries:
    POST   /api/users/{id}/entries                 Record a commission
    POST   /api/users/{id}/entries/confirm         Commit a pending entry
    POST   /api/users/{id}/entries/cancel          Drop a pending entry
    GET    /api/users/{id}/entries                 List entries for a period
    POST   /api/users/{id}/undo                    Undo the last entry

  Settlement:
    POST   /api/users/{id}/payouts                 Record a partner payout
    GET    /api/users/{id}/payouts                 List payouts for a period
    POST   /api/users/{id}/periods/{period}/close  Close a period
    GET    /api/users/{id}/statements              List statements for a year
    GET    /api/users/{id}/statements/{period}     Get one statement
    GET    /api/users/{id}/stats/monthly           Monthly settlement report
    GET    /api/users/{id}/stats/yearly            Yearly settlement report
    GET    /api/users/{id}/audit                   Audit trail

  Authorization:
    POST   /api/users/{id}/request-access          Queue an access request
    GET    /api/admin/auth/pending                 List queued requests
    GET    /api/admin/auth/users                   List authorized users
    POST   /api/admin/auth/{id}/approve            Approve a request
    POST   /api/admin/auth/{id}/reject             Reject a request
    POST   /api/admin/auth/{id}/revoke             Revoke authorization

  Admin:
    POST   /api/admin/reset                        Wipe the database

PENDING ENTRIES:
  A flagged submission (suspected duplicate, or near the period
  boundary) is parked in memory instead of recorded. The caller either
  confirms it - with the period frozen at submission time - or cancels
  it. One pending slot per user; a new submission overwrites it.

CALLER IDENTITY:
  User-scoped routes act as the user in the path. Admin routes read the
  acting user from the X-Actor-ID header. There is no authentication
  here; the engine expects a trusted front (bot, gateway) to have
  established identity already.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 403: Unauthorized caller
  - 404: Resource not found, nothing to undo
  - 409: Conflict (expired undo, unclosed period)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Background period-close jobs
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/commission-engine/auth"
	"github.com/warp/commission-engine/config"
	"github.com/warp/commission-engine/ledger"
	"github.com/warp/commission-engine/settlement"
)

// resetConfirmToken must be sent verbatim to the reset endpoint.
const resetConfirmToken = "DELETE ALL DATA"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// pendingEntry is a submission held for caller confirmation. The period
// is frozen at submission time so a confirm that arrives after midnight
// still lands in the period the operator saw.
type pendingEntry struct {
	Amount       string
	Note         string
	Solo         bool
	Period       ledger.Period
	Flags        ledger.AnomalyFlags
	NearBoundary bool
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger *ledger.Service
	Store  ledger.Store
	Auth   *auth.Service
	Cfg    *config.Config

	mu      sync.Mutex
	pending map[ledger.UserID]pendingEntry
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(svc *ledger.Service, store ledger.Store, authz *auth.Service, cfg *config.Config) *Handler {
	return &Handler{
		Ledger:  svc,
		Store:   store,
		Auth:    authz,
		Cfg:     cfg,
		pending: make(map[ledger.UserID]pendingEntry),
	}
}

// =============================================================================
// ENTRY ENDPOINTS
// =============================================================================

// RecordEntry records a commission, or parks it pending confirmation.
// POST /api/users/{id}/entries
func (h *Handler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	var req RecordEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount == "" {
		writeError(w, http.StatusBadRequest, "Amount is required", nil)
		return
	}

	flags, err := h.Ledger.PreviewFlags(ctx, userID, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	resolver := h.Ledger.Resolver()
	now := time.Now()
	nearBoundary := resolver.IsNearBoundary(now)
	current := resolver.Current(now)

	if !req.Confirm && (flags.Duplicate || nearBoundary) {
		h.mu.Lock()
		h.pending[userID] = pendingEntry{
			Amount:       req.Amount,
			Note:         req.Note,
			Solo:         req.Solo,
			Period:       current,
			Flags:        flags,
			NearBoundary: nearBoundary,
		}
		h.mu.Unlock()

		resp := RecordEntryResponse{
			Pending:      true,
			Duplicate:    flags.Duplicate,
			Extreme:      flags.Extreme,
			NearBoundary: nearBoundary,
		}
		if flags.Extreme {
			resp.ExtremeRatio = flags.ExtremeRatio.String()
		}
		if nearBoundary {
			resp.PeriodOptions = []string{current.Key(), current.Previous().Key()}
		}
		writeJSON(w, http.StatusAccepted, resp)
		return
	}

	res, err := h.Ledger.RecordEntryInPeriod(ctx, userID, req.Amount, req.Note, req.Solo, current)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.dropPending(userID)
	writeJSON(w, http.StatusCreated, recordResponse(res))
}

// ConfirmEntry commits the caller's pending entry.
// POST /api/users/{id}/entries/confirm
func (h *Handler) ConfirmEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	var req ConfirmEntryRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	h.mu.Lock()
	pending, exists := h.pending[userID]
	h.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "No entry pending confirmation", nil)
		return
	}

	period := pending.Period
	if req.Period != "" {
		p, err := ledger.ParsePeriodKey(req.Period)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
			return
		}
		period = p
	}

	res, err := h.Ledger.RecordEntryInPeriod(ctx, userID, pending.Amount, pending.Note, pending.Solo, period)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.dropPending(userID)
	writeJSON(w, http.StatusCreated, recordResponse(res))
}

// CancelEntry drops the caller's pending entry.
// POST /api/users/{id}/entries/cancel
func (h *Handler) CancelEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	_, exists := h.pending[userID]
	delete(h.pending, userID)
	h.mu.Unlock()

	if !exists {
		writeError(w, http.StatusNotFound, "No entry pending confirmation", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"canceled": true})
}

// ListEntries returns the entries for a period (default: current).
// GET /api/users/{id}/entries?period=YYYY-MM
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	period, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}

	entries, err := h.Store.EntriesForPeriod(ctx, userID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, *toEntryDTO(&entries[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Undo removes the caller's most recent entry if still inside the
// undo window.
// POST /api/users/{id}/undo
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	entry, err := h.Ledger.Undo(ctx, userID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UndoResponse{Entry: *toEntryDTO(entry)})
}

// =============================================================================
// SETTLEMENT ENDPOINTS
// =============================================================================

// RecordPayout records a partner payout against a period.
// POST /api/users/{id}/payouts
func (h *Handler) RecordPayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	var req RecordPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount == "" {
		writeError(w, http.StatusBadRequest, "Amount is required", nil)
		return
	}

	payout, err := h.Ledger.RecordPayout(ctx, userID, req.Amount, req.Period)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayoutDTO(payout))
}

// ListPayouts returns payouts for a period (default: current).
// GET /api/users/{id}/payouts?period=YYYY-MM
func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	period, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}

	payouts, err := h.Store.PayoutsForPeriod(ctx, userID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payouts", err)
		return
	}

	dtos := make([]PayoutDTO, 0, len(payouts))
	for i := range payouts {
		dtos = append(dtos, toPayoutDTO(&payouts[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ClosePeriod locks a period and generates its statement. Idempotent:
// re-closing recomputes totals under the same statement id.
// POST /api/users/{id}/periods/{period}/close
func (h *Handler) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	period, err := ledger.ParsePeriodKey(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	stmtID, err := h.Ledger.ClosePeriod(ctx, userID, period)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClosePeriodResponse{StatementID: stmtID, Period: period.Key()})
}

// GetStatement returns the statement for a closed period.
// GET /api/users/{id}/statements/{period}
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	period, err := ledger.ParsePeriodKey(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	stmt, err := h.Store.Statement(ctx, userID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get statement", err)
		return
	}
	if stmt == nil {
		writeError(w, http.StatusNotFound, "Period has not been closed", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStatementDTO(stmt))
}

// ListStatements returns all statements for a year (default: current).
// GET /api/users/{id}/statements?year=YYYY
func (h *Handler) ListStatements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	year, ok := h.queryYear(w, r)
	if !ok {
		return
	}

	statements, err := h.Store.StatementsForYear(ctx, userID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list statements", err)
		return
	}

	dtos := make([]StatementDTO, 0, len(statements))
	for i := range statements {
		dtos = append(dtos, *toStatementDTO(&statements[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MonthlyStats returns the settlement report for a period.
// GET /api/users/{id}/stats/monthly?period=YYYY-MM
func (h *Handler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	period, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}

	entries, err := h.Store.EntriesForPeriod(ctx, userID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}
	payouts, err := h.Store.PayoutsForPeriod(ctx, userID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payouts", err)
		return
	}

	stats := settlement.Monthly(entries, payouts, h.Cfg.PeriodLengthDays)
	writeJSON(w, http.StatusOK, toMonthlyStatsDTO(period, stats))
}

// YearlyStats returns the settlement report for a year.
// GET /api/users/{id}/stats/yearly?year=YYYY
func (h *Handler) YearlyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	year, ok := h.queryYear(w, r)
	if !ok {
		return
	}

	statements, err := h.Store.StatementsForYear(ctx, userID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load statements", err)
		return
	}
	entries, err := h.Store.EntriesForYear(ctx, userID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}

	stats := settlement.Yearly(statements, entries)
	writeJSON(w, http.StatusOK, toYearlyStatsDTO(year, stats))
}

// AuditTrail returns recent audit records, newest first.
// GET /api/users/{id}/audit?limit=N
func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	records, err := h.Store.AuditTrail(ctx, userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load audit trail", err)
		return
	}

	dtos := make([]AuditRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toAuditDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// AUTHORIZATION ENDPOINTS
// =============================================================================

// RequestAccess queues an authorization request for an unknown caller.
// POST /api/users/{id}/request-access
func (h *Handler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req RequestAccessRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	if err := h.Auth.RequestAccess(ctx, userID, req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to queue access request", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"pending": true})
}

// ListPendingAuth lists queued access requests. Owner only.
// GET /api/admin/auth/pending
func (h *Handler) ListPendingAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	pending, err := h.Auth.Pending(ctx, actor)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]PendingAuthDTO, 0, len(pending))
	for _, p := range pending {
		dtos = append(dtos, toPendingAuthDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListAuthorizedUsers lists the authorization registry. Owner only.
// GET /api/admin/auth/users
func (h *Handler) ListAuthorizedUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	users, err := h.Auth.Authorized(ctx, actor)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]AuthorizedUserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toAuthorizedUserDTO(u))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveAuth approves a queued access request. Owner only.
// POST /api/admin/auth/{id}/approve
func (h *Handler) ApproveAuth(w http.ResponseWriter, r *http.Request) {
	h.authDecision(w, r, h.Auth.Approve)
}

// RejectAuth discards a queued access request. Owner only.
// POST /api/admin/auth/{id}/reject
func (h *Handler) RejectAuth(w http.ResponseWriter, r *http.Request) {
	h.authDecision(w, r, h.Auth.Reject)
}

// RevokeAuth removes a user from the registry. Owner only.
// POST /api/admin/auth/{id}/revoke
func (h *Handler) RevokeAuth(w http.ResponseWriter, r *http.Request) {
	h.authDecision(w, r, h.Auth.Revoke)
}

func (h *Handler) authDecision(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, actor, id ledger.UserID) error) {
	ctx := r.Context()
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	target, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := decide(ctx, actor, target); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": int64(target)})
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// ResetDatabase wipes all data. Owner only, explicit confirm required.
// POST /api/admin/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	if actor != h.Auth.Owner() {
		writeError(w, http.StatusForbidden, "Only the owner can reset the database", nil)
		return
	}

	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Confirm != resetConfirmToken {
		writeError(w, http.StatusBadRequest, "Reset not confirmed", nil)
		return
	}

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.pending = make(map[ledger.UserID]pendingEntry)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

// =============================================================================
// HELPERS
// =============================================================================

func recordResponse(res *ledger.RecordResult) RecordEntryResponse {
	resp := RecordEntryResponse{
		Entry:     toEntryDTO(res.Entry),
		Duplicate: res.Duplicate,
		Extreme:   res.Extreme,
	}
	if res.Extreme {
		resp.ExtremeRatio = res.ExtremeRatio.String()
	}
	return resp
}

func (h *Handler) dropPending(userID ledger.UserID) {
	h.mu.Lock()
	delete(h.pending, userID)
	h.mu.Unlock()
}

// authorizedUser parses {id} and rejects unauthorized callers.
func (h *Handler) authorizedUser(w http.ResponseWriter, r *http.Request) (ledger.UserID, bool) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return 0, false
	}

	allowed, err := h.Auth.IsAuthorized(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check authorization", err)
		return 0, false
	}
	if !allowed {
		writeError(w, http.StatusForbidden, "Not authorized; request access first", nil)
		return 0, false
	}
	return userID, true
}

func parseUserID(w http.ResponseWriter, r *http.Request) (ledger.UserID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return 0, false
	}
	return ledger.UserID(id), true
}

func actorID(w http.ResponseWriter, r *http.Request) (ledger.UserID, bool) {
	raw := r.Header.Get("X-Actor-ID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "Missing or invalid X-Actor-ID header", err)
		return 0, false
	}
	return ledger.UserID(id), true
}

// queryPeriod resolves the ?period= query parameter, defaulting to the
// current period. Malformed input follows the configured parse mode.
func (h *Handler) queryPeriod(w http.ResponseWriter, r *http.Request) (ledger.Period, bool) {
	resolver := h.Ledger.Resolver()
	period, err := resolver.Parse(r.URL.Query().Get("period"), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return ledger.Period{}, false
	}
	return period, true
}

func (h *Handler) queryYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().In(h.Cfg.Timezone).Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 3000 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, false
	}
	return year, true
}

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var invalidAmount *ledger.InvalidAmountError
	switch {
	case errors.As(err, &invalidAmount):
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
	case errors.Is(err, ledger.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, ledger.ErrNoRecentEntry):
		writeError(w, http.StatusNotFound, "Nothing to undo", err)
	case errors.Is(err, ledger.ErrUndoExpired):
		writeError(w, http.StatusConflict, "Undo window expired", err)
	case errors.Is(err, ledger.ErrUndoFailed):
		writeError(w, http.StatusConflict, "Undo failed", err)
	case errors.Is(err, ledger.ErrPeriodNotClosed):
		writeError(w, http.StatusConflict, "Period is not closed", err)
	case errors.Is(err, auth.ErrNotOwner):
		writeError(w, http.StatusForbidden, "Owner only", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
