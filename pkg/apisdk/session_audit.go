package apisdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Audit log access. Requires chapter admin or super admin; review
// transitions are super admin only.

// AuditListOptions filter an audit listing. Zero fields are omitted.
type AuditListOptions struct {
	Actor  string
	Action string
	IP     string
	Since  time.Time
	Limit  int
}

// ListAudit lists audit entries newest first. Chapter admins only see
// entries from their own chapter.
func (s *Session) ListAudit(ctx context.Context, opts AuditListOptions) ([]AuditEntry, error) {
	q := url.Values{}
	if opts.Actor != "" {
		q.Set("actor", opts.Actor)
	}
	if opts.Action != "" {
		q.Set("action", opts.Action)
	}
	if opts.IP != "" {
		q.Set("ip", opts.IP)
	}
	if !opts.Since.IsZero() {
		q.Set("since", opts.Since.Format(time.RFC3339))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, withQuery("/v1/audit", q), nil)
	if err != nil {
		return nil, err
	}

	var out AuditListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Entries, nil
}

// SuspiciousActivity lists entries flagged for review in the last N days.
func (s *Session) SuspiciousActivity(ctx context.Context, days int) ([]AuditEntry, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, withQuery("/v1/audit/suspicious", q), nil)
	if err != nil {
		return nil, err
	}

	var out AuditListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Entries, nil
}

// UserActivity lists one user's recent audit entries.
func (s *Session) UserActivity(ctx context.Context, userID string, limit int) ([]AuditEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, withQuery("/v1/audit/users/"+url.PathEscape(userID), q), nil)
	if err != nil {
		return nil, err
	}

	var out AuditListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Entries, nil
}

// GetAuditEntry fetches a single audit entry.
func (s *Session) GetAuditEntry(ctx context.Context, id string) (*AuditEntry, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/audit/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out AuditEntryResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Entry, nil
}

// ReviewAuditEntry advances a flagged entry's review state to reviewed,
// escalated or resolved.
func (s *Session) ReviewAuditEntry(ctx context.Context, id string, req ReviewRequest) (*AuditEntry, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/audit/"+url.PathEscape(id)+"/review", req)
	if err != nil {
		return nil, err
	}

	var out AuditEntryResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Entry, nil
}
