package apisdk

import (
	"context"
	"net/http"
	"net/url"
)

// Public catalog reads. Chapters, research, events and courses are readable
// without authentication.

// ChapterListOptions filter a chapter listing. Zero fields are omitted.
type ChapterListOptions struct {
	Status     string
	University string
	Location   string
}

// ListChapters lists chapters, optionally filtered.
func (c *SDKClient) ListChapters(ctx context.Context, opts ChapterListOptions) ([]Chapter, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.University != "" {
		q.Set("university", opts.University)
	}
	if opts.Location != "" {
		q.Set("location", opts.Location)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, withQuery("/v1/chapters", q), nil)
	if err != nil {
		return nil, err
	}

	var out ChapterListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Chapters, nil
}

// GetChapter fetches a single chapter, executive team included.
func (c *SDKClient) GetChapter(ctx context.Context, id string) (*Chapter, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/chapters/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out ChapterResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Chapter, nil
}

// ListResearch lists research entries, optionally restricted to one chapter.
func (c *SDKClient) ListResearch(ctx context.Context, chapterID string) ([]Research, error) {
	q := url.Values{}
	if chapterID != "" {
		q.Set("chapter", chapterID)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, withQuery("/v1/research", q), nil)
	if err != nil {
		return nil, err
	}

	var out ResearchListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Research, nil
}

// GetResearch fetches a single research entry.
func (c *SDKClient) GetResearch(ctx context.Context, id string) (*Research, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/research/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out ResearchResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Research, nil
}

// ListEvents lists events, optionally restricted to one chapter.
func (c *SDKClient) ListEvents(ctx context.Context, chapterID string) ([]Event, error) {
	q := url.Values{}
	if chapterID != "" {
		q.Set("chapter", chapterID)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, withQuery("/v1/events", q), nil)
	if err != nil {
		return nil, err
	}

	var out EventListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Events, nil
}

// GetEvent fetches a single event.
func (c *SDKClient) GetEvent(ctx context.Context, id string) (*Event, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/events/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out EventResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Event, nil
}

// ListCourses lists the global course catalog.
func (c *SDKClient) ListCourses(ctx context.Context) ([]Course, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/courses", nil)
	if err != nil {
		return nil, err
	}

	var out CourseListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Courses, nil
}

// GetCourse fetches a single course.
func (c *SDKClient) GetCourse(ctx context.Context, id string) (*Course, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/courses/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out CourseResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.Course, nil
}

// withQuery appends encoded query parameters to a path when any are set.
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
