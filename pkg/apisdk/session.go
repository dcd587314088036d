package apisdk

import (
	"context"
	"net/http"
	"time"
)

// Session is an authenticated session carrying a bearer token. Tokens are
// stateless and are not refreshed; an expired token surfaces as a 401.
// Sessions are safe for concurrent use.
type Session struct {
	client *SDKClient
	token  string

	// Populated from the login response; zero for sessions built
	// with NewSessionFromToken.
	user        User
	permissions PermissionFlags
	expiresAt   time.Time
}

// newSession creates an authenticated session from a login response.
func newSession(client *SDKClient, resp *LoginResponse) *Session {
	return &Session{
		client:      client,
		token:       resp.Token,
		user:        resp.User,
		permissions: resp.Permissions,
		expiresAt:   resp.ExpiresAt,
	}
}

// Token returns the session token.
func (s *Session) Token() string {
	return s.token
}

// User returns the user snapshot captured at login. It does not reflect
// later changes; use Me for the current record.
func (s *Session) User() User {
	return s.user
}

// Permissions returns the permission flags captured at login.
func (s *Session) Permissions() PermissionFlags {
	return s.permissions
}

// ExpiresAt returns the token expiry captured at login.
func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

// Me fetches the current user record and derived permissions.
func (s *Session) Me(ctx context.Context) (*LoginResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/me", nil)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// Logout records the logout server-side. The token itself stays valid until
// expiry; callers should discard the session.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/logout", nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// ChangePassword rotates the password after verifying the current one.
func (s *Session) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/change-password", body)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
