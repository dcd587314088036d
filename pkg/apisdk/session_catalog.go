package apisdk

import (
	"context"
	"net/http"
	"net/url"
)

// Catalog writes. Reads are public and live on SDKClient.

// CreateResearch creates a research entry in the actor's chapter, or in the
// named chapter for actors with cross-chapter access.
func (s *Session) CreateResearch(ctx context.Context, req ResearchRequest) (*Research, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/research", req)
	if err != nil {
		return nil, err
	}

	var out ResearchResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out.Research, nil
}

// UpdateResearch patches a research entry.
func (s *Session) UpdateResearch(ctx context.Context, id string, req ResearchRequest) (*Research, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/v1/research/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out ResearchResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Research, nil
}

// DeleteResearch removes a research entry.
func (s *Session) DeleteResearch(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/research/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// CreateEvent creates an event in the actor's chapter.
func (s *Session) CreateEvent(ctx context.Context, req EventRequest) (*Event, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/events", req)
	if err != nil {
		return nil, err
	}

	var out EventResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out.Event, nil
}

// UpdateEvent patches an event.
func (s *Session) UpdateEvent(ctx context.Context, id string, req EventRequest) (*Event, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/v1/events/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out EventResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Event, nil
}

// DeleteEvent removes an event.
func (s *Session) DeleteEvent(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/events/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// CreateCourse creates a course in the global catalog.
func (s *Session) CreateCourse(ctx context.Context, req CourseRequest) (*Course, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/courses", req)
	if err != nil {
		return nil, err
	}

	var out CourseResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out.Course, nil
}

// UpdateCourse patches a course.
func (s *Session) UpdateCourse(ctx context.Context, id string, req CourseRequest) (*Course, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/v1/courses/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out CourseResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Course, nil
}

// DeleteCourse removes a course.
func (s *Session) DeleteCourse(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/courses/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
