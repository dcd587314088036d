package http

import (
	"net/http"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/httpx"
)

type ChaptersHandler struct {
	ChapterService *service.ChapterService
	UserService    *service.UserService
	Router         *Router
}

type ChapterListResponse struct {
	Success  bool             `json:"success"`
	Chapters []domain.Chapter `json:"chapters"`
}

type ChapterResponse struct {
	Success bool           `json:"success"`
	Chapter domain.Chapter `json:"chapter"`
}

// HandleList godoc
//
//	@Summary	List chapters
//	@Tags		Chapters
//	@Produce	json
//	@Param		status		query		string	false	"Filter by lifecycle status"
//	@Param		university	query		string	false	"Filter by university"
//	@Param		location	query		string	false	"Filter by location"
//	@Success	200			{object}	ChapterListResponse	"success, chapters"
//	@Router		/v1/chapters [get]
func (h *ChaptersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	chapters, err := h.ChapterService.List(r.Context(), store.ChapterFilter{
		Status:     domain.ChapterStatus(q.Get("status")),
		University: q.Get("university"),
		Location:   q.Get("location"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ChapterListResponse{Success: true, Chapters: chapters})
}

// HandleGet godoc
//
//	@Summary	Get a chapter with its executive roster
//	@Tags		Chapters
//	@Produce	json
//	@Param		id	path		string	true	"Chapter ID"
//	@Success	200	{object}	ChapterResponse	"success, chapter"
//	@Failure	404	{object}	ErrorResponse	"success, message"
//	@Router		/v1/chapters/{id} [get]
func (h *ChaptersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	chapter, err := h.ChapterService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ChapterResponse{Success: true, Chapter: chapter})
}

type ChapterRequest struct {
	Name       string               `json:"name"`
	University string               `json:"university"`
	Location   string               `json:"location,omitempty"`
	Status     domain.ChapterStatus `json:"status,omitempty"`
}

// HandleCreate godoc
//
//	@Summary		Create a chapter
//	@Description	Explicit provisioning path; registration auto-creates chapters otherwise.
//	@Tags			Chapters
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ChapterRequest	true	"Chapter details"
//	@Success		201		{object}	ChapterResponse	"success, chapter"
//	@Failure		409		{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/chapters [post]
func (h *ChaptersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req ChapterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	chapter, err := h.ChapterService.Create(r.Context(), actor, service.ChapterInput{
		Name:       req.Name,
		University: req.University,
		Location:   req.Location,
		Status:     req.Status,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, ChapterResponse{Success: true, Chapter: chapter})
}

// HandleUpdate godoc
//
//	@Summary		Update a chapter
//	@Description	Executives edit their own chapter's details. Lifecycle status changes are
//	@Description	reserved for super admins.
//	@Tags			Chapters
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Chapter ID"
//	@Param			request	body		ChapterRequest	true	"Fields to change"
//	@Success		200		{object}	ChapterResponse	"success, chapter"
//	@Failure		403		{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/chapters/{id} [patch]
func (h *ChaptersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req ChapterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	chapter, err := h.ChapterService.Update(r.Context(), actor, r.PathValue("id"), service.ChapterInput{
		Name:       req.Name,
		University: req.University,
		Location:   req.Location,
		Status:     req.Status,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ChapterResponse{Success: true, Chapter: chapter})
}

// HandleDelete godoc
//
//	@Summary	Delete a chapter
//	@Tags		Chapters
//	@Produce	json
//	@Param		id	path		string	true	"Chapter ID"
//	@Success	200	{object}	ErrorResponse	"success, message"
//	@Failure	403	{object}	ErrorResponse	"success, message"
//	@Security	BearerAuth
//	@Router		/v1/chapters/{id} [delete]
func (h *ChaptersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	if err := h.ChapterService.Delete(r.Context(), actor, r.PathValue("id"), requestMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "Chapter deleted."})
}

// HandleMembers godoc
//
//	@Summary	List a chapter's members
//	@Tags		Chapters
//	@Produce	json
//	@Param		id	path		string	true	"Chapter ID"
//	@Success	200	{object}	UserListResponse	"success, users"
//	@Failure	403	{object}	ErrorResponse		"success, message"
//	@Security	BearerAuth
//	@Router		/v1/chapters/{id}/members [get]
func (h *ChaptersHandler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	users, err := h.UserService.ChapterMembers(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserListResponse{Success: true, Users: summarize(users)})
}
