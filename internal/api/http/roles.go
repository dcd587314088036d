package http

import (
	"net/http"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/pkg/httpx"
)

type RolesHandler struct {
	AuthzService *service.AuthzService
	Router       *Router
}

type AssignRoleRequest struct {
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	ChapterID string      `json:"chapterId,omitempty"`
}

// HandleAssign godoc
//
//	@Summary		Assign an administrative role
//	@Description	Grants chapter_admin, super_admin, or executive to the account identified
//	@Description	by email. Who may grant what is role-dependent; rejected attempts are
//	@Description	recorded in the audit trail.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AssignRoleRequest	true	"Target email, role, and chapter for chapter-bound grants"
//	@Success		200		{object}	UserResponse		"success, user"
//	@Failure		403		{object}	ErrorResponse		"success, message"
//	@Failure		404		{object}	ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/v1/roles/assign [post]
func (h *RolesHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req AssignRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.AuthzService.AssignAdminRole(r.Context(), actor, req.Email, req.Role, req.ChapterID, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{Success: true, User: user.Summarize()})
}

type AssignExecutiveRequest struct {
	Email string `json:"email"`
}

// HandleAssignExecutive godoc
//
//	@Summary		Grant the executive role within the actor's chapter
//	@Description	Chapter admin shortcut for elevating a member of their own chapter.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AssignExecutiveRequest	true	"Target email"
//	@Success		200		{object}	UserResponse	"success, user"
//	@Failure		403		{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/roles/assign-executive [post]
func (h *RolesHandler) HandleAssignExecutive(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req AssignExecutiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.AuthzService.AssignExecutiveRole(r.Context(), actor, req.Email, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{Success: true, User: user.Summarize()})
}
