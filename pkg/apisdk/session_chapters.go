package apisdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateChapter creates a chapter. Super admin only.
func (s *Session) CreateChapter(ctx context.Context, req ChapterRequest) (*Chapter, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/chapters", req)
	if err != nil {
		return nil, err
	}

	var out ChapterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out.Chapter, nil
}

// UpdateChapter patches a chapter. Executives and chapter admins may edit
// their own chapter's details; status changes need a chapter admin.
func (s *Session) UpdateChapter(ctx context.Context, id string, req ChapterRequest) (*Chapter, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/v1/chapters/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out ChapterResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Chapter, nil
}

// DeleteChapter removes a chapter. Super admin only.
func (s *Session) DeleteChapter(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/chapters/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// ChapterMembers lists a chapter's members.
func (s *Session) ChapterMembers(ctx context.Context, id string) ([]User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/chapters/"+url.PathEscape(id)+"/members", nil)
	if err != nil {
		return nil, err
	}

	var out UserListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Users, nil
}
