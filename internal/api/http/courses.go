package http

import (
	"net/http"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/pkg/httpx"
)

type CoursesHandler struct {
	CatalogService *service.CatalogService
	Router         *Router
}

type CourseListResponse struct {
	Success bool            `json:"success"`
	Courses []domain.Course `json:"courses"`
}

type CourseResponse struct {
	Success bool          `json:"success"`
	Course  domain.Course `json:"course"`
}

type CourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level,omitempty"`
}

// HandleList godoc
//
//	@Summary	List courses
//	@Tags		Courses
//	@Produce	json
//	@Success	200	{object}	CourseListResponse	"success, courses"
//	@Router		/v1/courses [get]
func (h *CoursesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	courses, err := h.CatalogService.ListCourses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, CourseListResponse{Success: true, Courses: courses})
}

// HandleGet godoc
//
//	@Summary	Get a course
//	@Tags		Courses
//	@Produce	json
//	@Param		id	path		string	true	"Course ID"
//	@Success	200	{object}	CourseResponse	"success, course"
//	@Failure	404	{object}	ErrorResponse	"success, message"
//	@Router		/v1/courses/{id} [get]
func (h *CoursesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	course, err := h.CatalogService.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, CourseResponse{Success: true, Course: course})
}

// HandleCreate godoc
//
//	@Summary		Create a course
//	@Description	The course library is global; chapter admins, super admins, and industry
//	@Description	partners may contribute.
//	@Tags			Courses
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CourseRequest	true	"Course details"
//	@Success		201		{object}	CourseResponse	"success, course"
//	@Failure		403		{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/courses [post]
func (h *CoursesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req CourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	course, err := h.CatalogService.CreateCourse(r.Context(), actor, service.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, CourseResponse{Success: true, Course: course})
}

// HandleUpdate godoc
//
//	@Summary	Update a course
//	@Tags		Courses
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Course ID"
//	@Param		request	body		CourseRequest	true	"Fields to change"
//	@Success	200		{object}	CourseResponse	"success, course"
//	@Failure	403		{object}	ErrorResponse	"success, message"
//	@Security	BearerAuth
//	@Router		/v1/courses/{id} [patch]
func (h *CoursesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req CourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	course, err := h.CatalogService.UpdateCourse(r.Context(), actor, r.PathValue("id"), service.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, CourseResponse{Success: true, Course: course})
}

// HandleDelete godoc
//
//	@Summary	Delete a course
//	@Tags		Courses
//	@Produce	json
//	@Param		id	path		string	true	"Course ID"
//	@Success	200	{object}	ErrorResponse	"success, message"
//	@Failure	403	{object}	ErrorResponse	"success, message"
//	@Security	BearerAuth
//	@Router		/v1/courses/{id} [delete]
func (h *CoursesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	if err := h.CatalogService.DeleteCourse(r.Context(), actor, r.PathValue("id"), requestMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "Course deleted."})
}
