package apisdk

import (
	"context"
	"net/http"
)

// AssignRole assigns an administrative role to a user by email. Chapter
// admin assignments require a chapter ID.
func (s *Session) AssignRole(ctx context.Context, req AssignRoleRequest) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/roles/assign", req)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.User, nil
}

// AssignExecutive grants the executive role to a member of the actor's
// chapter. Chapter admin only.
func (s *Session) AssignExecutive(ctx context.Context, email string) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/roles/assign-executive", AssignExecutiveRequest{Email: email})
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.User, nil
}
