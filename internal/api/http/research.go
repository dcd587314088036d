package http

import (
	"net/http"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/pkg/httpx"
)

type ResearchHandler struct {
	CatalogService *service.CatalogService
	Router         *Router
}

type ResearchListResponse struct {
	Success  bool              `json:"success"`
	Research []domain.Research `json:"research"`
}

type ResearchResponse struct {
	Success  bool            `json:"success"`
	Research domain.Research `json:"research"`
}

type ResearchRequest struct {
	Title     string `json:"title"`
	Abstract  string `json:"abstract,omitempty"`
	ChapterID string `json:"chapterId,omitempty"`
	Published bool   `json:"published,omitempty"`
}

// HandleList godoc
//
//	@Summary	List research publications
//	@Tags		Research
//	@Produce	json
//	@Param		chapter	query		string	false	"Filter by chapter ID"
//	@Success	200		{object}	ResearchListResponse	"success, research"
//	@Router		/v1/research [get]
func (h *ResearchHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.CatalogService.ListResearch(r.Context(), r.URL.Query().Get("chapter"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ResearchListResponse{Success: true, Research: entries})
}

// HandleGet godoc
//
//	@Summary	Get a research publication
//	@Tags		Research
//	@Produce	json
//	@Param		id	path		string	true	"Research ID"
//	@Success	200	{object}	ResearchResponse	"success, research"
//	@Failure	404	{object}	ErrorResponse		"success, message"
//	@Router		/v1/research/{id} [get]
func (h *ResearchHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.CatalogService.GetResearch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ResearchResponse{Success: true, Research: entry})
}

// HandleCreate godoc
//
//	@Summary		Create a research publication
//	@Description	Executives publish into their own chapter; industry partners into any.
//	@Tags			Research
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ResearchRequest		true	"Publication details"
//	@Success		201		{object}	ResearchResponse	"success, research"
//	@Failure		403		{object}	ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/v1/research [post]
func (h *ResearchHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req ResearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.CatalogService.CreateResearch(r.Context(), actor, service.ResearchInput{
		Title:     req.Title,
		Abstract:  req.Abstract,
		ChapterID: req.ChapterID,
		Published: req.Published,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, ResearchResponse{Success: true, Research: entry})
}

// HandleUpdate godoc
//
//	@Summary	Update a research publication
//	@Tags		Research
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Research ID"
//	@Param		request	body		ResearchRequest	true	"Fields to change"
//	@Success	200		{object}	ResearchResponse	"success, research"
//	@Failure	403		{object}	ErrorResponse		"success, message"
//	@Security	BearerAuth
//	@Router		/v1/research/{id} [patch]
func (h *ResearchHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req ResearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.CatalogService.UpdateResearch(r.Context(), actor, r.PathValue("id"), service.ResearchInput{
		Title:     req.Title,
		Abstract:  req.Abstract,
		Published: req.Published,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ResearchResponse{Success: true, Research: entry})
}

// HandleDelete godoc
//
//	@Summary	Delete a research publication
//	@Tags		Research
//	@Produce	json
//	@Param		id	path		string	true	"Research ID"
//	@Success	200	{object}	ErrorResponse	"success, message"
//	@Failure	403	{object}	ErrorResponse	"success, message"
//	@Security	BearerAuth
//	@Router		/v1/research/{id} [delete]
func (h *ResearchHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	if err := h.CatalogService.DeleteResearch(r.Context(), actor, r.PathValue("id"), requestMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "Research deleted."})
}
