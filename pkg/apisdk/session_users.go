package apisdk

import (
	"context"
	"net/http"
	"net/url"
)

// User administration. The server enforces role and chapter boundaries;
// these methods surface rejections as *APIError with 403.

// UserListOptions filter a user listing. Zero fields are omitted.
type UserListOptions struct {
	Role       string
	Chapter    string
	Status     string
	University string
	Search     string
}

// ListUsers lists users visible to the session's actor. Chapter-bound
// actors only see their own chapter regardless of the filter.
func (s *Session) ListUsers(ctx context.Context, opts UserListOptions) ([]User, error) {
	q := url.Values{}
	if opts.Role != "" {
		q.Set("role", opts.Role)
	}
	if opts.Chapter != "" {
		q.Set("chapter", opts.Chapter)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.University != "" {
		q.Set("university", opts.University)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, withQuery("/v1/users", q), nil)
	if err != nil {
		return nil, err
	}

	var out UserListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Users, nil
}

// UserStats fetches aggregate membership counts. Super admins may pass a
// chapter ID to scope the counts; chapter admins always get their own chapter.
func (s *Session) UserStats(ctx context.Context, chapterID string) (*UserStats, error) {
	q := url.Values{}
	if chapterID != "" {
		q.Set("chapter", chapterID)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, withQuery("/v1/users/stats", q), nil)
	if err != nil {
		return nil, err
	}

	var out StatsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Stats, nil
}

// GetUser fetches a single user.
func (s *Session) GetUser(ctx context.Context, id string) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.User, nil
}

// CreateUser creates a user directly, bypassing email verification.
// Super admin only.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/users", req)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out.User, nil
}

// UpdateUser patches a user's profile fields.
func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.User, nil
}

// DeleteUser removes a user record.
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// ActivateUser moves a user to active membership.
func (s *Session) ActivateUser(ctx context.Context, id string) (*User, error) {
	return s.userAction(ctx, id, "activate", nil)
}

// SuspendUser suspends a user's membership.
func (s *Session) SuspendUser(ctx context.Context, id string) (*User, error) {
	return s.userAction(ctx, id, "suspend", nil)
}

// PromoteUser promotes a member into an executive seat.
func (s *Session) PromoteUser(ctx context.Context, id string, req PromoteRequest) (*User, error) {
	return s.userAction(ctx, id, "promote", req)
}

// DemoteUser removes a user's executive role, closing the seat.
func (s *Session) DemoteUser(ctx context.Context, id string) (*User, error) {
	return s.userAction(ctx, id, "demote", nil)
}

func (s *Session) userAction(ctx context.Context, id, action string, body any) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/users/"+url.PathEscape(id)+"/"+action, body)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.User, nil
}
