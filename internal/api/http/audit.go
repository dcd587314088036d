package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/httpx"
)

type AuditHandler struct {
	AuditService *service.AuditService
	Router       *Router
}

type AuditListResponse struct {
	Success bool                `json:"success"`
	Entries []domain.AuditEntry `json:"entries"`
}

type AuditEntryResponse struct {
	Success bool              `json:"success"`
	Entry   domain.AuditEntry `json:"entry"`
}

// HandleList godoc
//
//	@Summary	List audit log entries
//	@Tags		Audit
//	@Produce	json
//	@Param		actor	query		string	false	"Filter by actor user ID"
//	@Param		action	query		string	false	"Filter by action"
//	@Param		ip		query		string	false	"Filter by source IP"
//	@Param		since	query		string	false	"RFC3339 lower bound on entry time"
//	@Param		limit	query		int		false	"Maximum entries (default 100)"
//	@Success	200		{object}	AuditListResponse	"success, entries"
//	@Security	BearerAuth
//	@Router		/v1/audit [get]
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var since time.Time
	if raw := q.Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'since' timestamp; RFC3339 expected.")
			return
		}
		since = parsed
	}

	limit, _ := strconv.Atoi(q.Get("limit"))

	entries, err := h.AuditService.List(r.Context(), store.AuditFilter{
		ActorID:   q.Get("actor"),
		Action:    domain.Action(q.Get("action")),
		IPAddress: q.Get("ip"),
		Since:     since,
		Limit:     limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuditListResponse{Success: true, Entries: entries})
}

// HandleSuspicious godoc
//
//	@Summary		Recent suspicious activity
//	@Description	High and critical risk entries, failed logins, lockouts, and entries
//	@Description	flagged for review within the window.
//	@Tags			Audit
//	@Produce		json
//	@Param			days	query		int	false	"Window in days (default 7)"
//	@Success		200		{object}	AuditListResponse	"success, entries"
//	@Security		BearerAuth
//	@Router			/v1/audit/suspicious [get]
func (h *AuditHandler) HandleSuspicious(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	entries, err := h.AuditService.SuspiciousActivity(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuditListResponse{Success: true, Entries: entries})
}

// HandleUserActivity godoc
//
//	@Summary	Activity trail for one user
//	@Tags		Audit
//	@Produce	json
//	@Param		id		path		string	true	"User ID"
//	@Param		limit	query		int		false	"Maximum entries (default 50)"
//	@Success	200		{object}	AuditListResponse	"success, entries"
//	@Security	BearerAuth
//	@Router		/v1/audit/users/{id} [get]
func (h *AuditHandler) HandleUserActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.AuditService.UserActivity(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuditListResponse{Success: true, Entries: entries})
}

// HandleGet godoc
//
//	@Summary	Get an audit entry
//	@Tags		Audit
//	@Produce	json
//	@Param		id	path		string	true	"Entry ID"
//	@Success	200	{object}	AuditEntryResponse	"success, entry"
//	@Failure	404	{object}	ErrorResponse		"success, message"
//	@Security	BearerAuth
//	@Router		/v1/audit/{id} [get]
func (h *AuditHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.AuditService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuditEntryResponse{Success: true, Entry: entry})
}

type ReviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// HandleReview godoc
//
//	@Summary		Advance an entry's review state
//	@Description	Marks a flagged entry reviewed, escalated, or resolved, stamping the
//	@Description	reviewer and time.
//	@Tags			Audit
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Entry ID"
//	@Param			request	body		ReviewRequest	true	"New review status and optional notes"
//	@Success		200		{object}	AuditEntryResponse	"success, entry"
//	@Failure		400		{object}	ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/v1/audit/{id}/review [post]
func (h *AuditHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.AuditService.AdvanceReview(r.Context(), r.PathValue("id"), actor.ID, req.Status, req.Notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuditEntryResponse{Success: true, Entry: entry})
}
