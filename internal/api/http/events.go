package http

import (
	"net/http"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/pkg/httpx"
)

type EventsHandler struct {
	CatalogService *service.CatalogService
	Router         *Router
}

type EventListResponse struct {
	Success bool           `json:"success"`
	Events  []domain.Event `json:"events"`
}

type EventResponse struct {
	Success bool         `json:"success"`
	Event   domain.Event `json:"event"`
}

type EventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ChapterID   string    `json:"chapterId,omitempty"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// HandleList godoc
//
//	@Summary	List events
//	@Tags		Events
//	@Produce	json
//	@Param		chapter	query		string	false	"Filter by chapter ID"
//	@Success	200		{object}	EventListResponse	"success, events"
//	@Router		/v1/events [get]
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.CatalogService.ListEvents(r.Context(), r.URL.Query().Get("chapter"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, EventListResponse{Success: true, Events: events})
}

// HandleGet godoc
//
//	@Summary	Get an event
//	@Tags		Events
//	@Produce	json
//	@Param		id	path		string	true	"Event ID"
//	@Success	200	{object}	EventResponse	"success, event"
//	@Failure	404	{object}	ErrorResponse	"success, message"
//	@Router		/v1/events/{id} [get]
func (h *EventsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	event, err := h.CatalogService.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, EventResponse{Success: true, Event: event})
}

// HandleCreate godoc
//
//	@Summary		Create an event
//	@Description	Executives schedule events for their own chapter.
//	@Tags			Events
//	@Accept			json
//	@Produce		json
//	@Param			request	body		EventRequest	true	"Event details"
//	@Success		201		{object}	EventResponse	"success, event"
//	@Failure		403		{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/events [post]
func (h *EventsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req EventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.CatalogService.CreateEvent(r.Context(), actor, service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		ChapterID:   req.ChapterID,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, EventResponse{Success: true, Event: event})
}

// HandleUpdate godoc
//
//	@Summary	Update an event
//	@Tags		Events
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Event ID"
//	@Param		request	body		EventRequest	true	"Fields to change"
//	@Success	200		{object}	EventResponse	"success, event"
//	@Failure	403		{object}	ErrorResponse	"success, message"
//	@Security	BearerAuth
//	@Router		/v1/events/{id} [patch]
func (h *EventsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req EventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.CatalogService.UpdateEvent(r.Context(), actor, r.PathValue("id"), service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, EventResponse{Success: true, Event: event})
}

// HandleDelete godoc
//
//	@Summary	Delete an event
//	@Tags		Events
//	@Produce	json
//	@Param		id	path		string	true	"Event ID"
//	@Success	200	{object}	ErrorResponse	"success, message"
//	@Failure	403	{object}	ErrorResponse	"success, message"
//	@Security	BearerAuth
//	@Router		/v1/events/{id} [delete]
func (h *EventsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	if err := h.CatalogService.DeleteEvent(r.Context(), actor, r.PathValue("id"), requestMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "Event deleted."})
}
