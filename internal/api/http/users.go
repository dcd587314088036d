package http

import (
	"net/http"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
	Router      *Router
}

type UserListResponse struct {
	Success bool             `json:"success"`
	Users   []domain.Summary `json:"users"`
}

type UserResponse struct {
	Success bool           `json:"success"`
	User    domain.Summary `json:"user"`
}

func summarize(users []domain.User) []domain.Summary {
	out := make([]domain.Summary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summarize())
	}
	return out
}

// HandleList godoc
//
//	@Summary		List users
//	@Description	Lists users visible to the actor. Chapter-bound actors only see their own
//	@Description	chapter regardless of the filter.
//	@Tags			Users
//	@Produce		json
//	@Param			role		query		string	false	"Filter by role"
//	@Param			chapter		query		string	false	"Filter by chapter ID"
//	@Param			status		query		string	false	"Filter by membership status"
//	@Param			university	query		string	false	"Filter by university"
//	@Param			search		query		string	false	"Substring match on name or email"
//	@Success		200			{object}	UserListResponse	"success, users"
//	@Failure		403			{object}	ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/v1/users [get]
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	users, err := h.UserService.List(r.Context(), actor, store.UserFilter{
		Role:       domain.Role(q.Get("role")),
		ChapterID:  q.Get("chapter"),
		Status:     domain.MembershipStatus(q.Get("status")),
		University: q.Get("university"),
		Search:     q.Get("search"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserListResponse{Success: true, Users: summarize(users)})
}

type StatsResponse struct {
	Success bool            `json:"success"`
	Stats   store.UserStats `json:"stats"`
}

// HandleStats godoc
//
//	@Summary		Membership statistics
//	@Description	Aggregate counts across roles and membership states. Chapter admins get
//	@Description	their own chapter; super admins may pass a chapter filter or none.
//	@Tags			Users
//	@Produce		json
//	@Param			chapter	query		string	false	"Chapter ID (super admin only)"
//	@Success		200		{object}	StatsResponse	"success, stats"
//	@Security		BearerAuth
//	@Router			/v1/users/stats [get]
func (h *UsersHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	stats, err := h.UserService.Stats(r.Context(), actor, r.URL.Query().Get("chapter"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, StatsResponse{Success: true, Stats: stats})
}

// HandleGet godoc
//
//	@Summary	Get a user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	UserResponse	"success, user"
//	@Failure	404	{object}	ErrorResponse	"success, message"
//	@Security	BearerAuth
//	@Router		/v1/users/{id} [get]
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{Success: true, User: user.Summarize()})
}

type CreateUserRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       domain.Role `json:"role"`
	ChapterID  string      `json:"chapterId,omitempty"`
	University string      `json:"university,omitempty"`
	Company    string      `json:"company,omitempty"`
}

// HandleCreate godoc
//
//	@Summary		Create a user
//	@Description	Admin provisioning path. Accounts are active and verified from the start.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUserRequest	true	"New account"
//	@Success		201		{object}	UserResponse		"success, user"
//	@Failure		409		{object}	ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/v1/users [post]
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserService.Create(r.Context(), actor, service.CreateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		ChapterID:  req.ChapterID,
		University: req.University,
		Company:    req.Company,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, UserResponse{Success: true, User: user.Summarize()})
}

type UpdateUserRequest struct {
	Name       *string `json:"name,omitempty"`
	University *string `json:"university,omitempty"`
	Company    *string `json:"company,omitempty"`
}

// HandleUpdate godoc
//
//	@Summary		Update a user's profile
//	@Description	Users edit their own profile; chapter admins edit members of their chapter.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"User ID"
//	@Param			request	body		UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	UserResponse		"success, user"
//	@Failure		403		{object}	ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [patch]
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserService.Update(r.Context(), actor, r.PathValue("id"), service.UpdateUserInput{
		Name:       req.Name,
		University: req.University,
		Company:    req.Company,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{Success: true, User: user.Summarize()})
}

// HandleDelete godoc
//
//	@Summary		Delete a user
//	@Description	Chapter-scoped for chapter admins. Self-deletion is rejected.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	ErrorResponse	"success, message"
//	@Failure		403	{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [delete]
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	if err := h.UserService.Delete(r.Context(), actor, r.PathValue("id"), requestMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "User deleted."})
}

// HandleActivate godoc
//
//	@Summary	Activate a membership
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	UserResponse	"success, user"
//	@Security	BearerAuth
//	@Router		/v1/users/{id}/activate [post]
func (h *UsersHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.Activate(r.Context(), actor, r.PathValue("id"), requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{Success: true, User: user.Summarize()})
}

// HandleSuspend godoc
//
//	@Summary	Suspend a membership
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	UserResponse	"success, user"
//	@Failure	403	{object}	ErrorResponse	"success, message"
//	@Security	BearerAuth
//	@Router		/v1/users/{id}/suspend [post]
func (h *UsersHandler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.Suspend(r.Context(), actor, r.PathValue("id"), requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{Success: true, User: user.Summarize()})
}

type PromoteRequest struct {
	Position string `json:"position"`
	Term     string `json:"term,omitempty"`
}

// HandlePromote godoc
//
//	@Summary		Promote a member to an executive seat
//	@Description	Opens a roster seat for the position. At most one open seat exists per
//	@Description	position per chapter; a member moving positions vacates the old seat.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"User ID"
//	@Param			request	body		PromoteRequest	true	"Position and term"
//	@Success		200		{object}	UserResponse	"success, user"
//	@Failure		409		{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/promote [post]
func (h *UsersHandler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req PromoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserService.PromoteToExecutive(r.Context(), actor, r.PathValue("id"), req.Position, req.Term, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{Success: true, User: user.Summarize()})
}

// HandleDemote godoc
//
//	@Summary		Demote an executive back to member
//	@Description	Closes the open roster seat and stamps the position's end date.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	UserResponse	"success, user"
//	@Failure		403	{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/demote [post]
func (h *UsersHandler) HandleDemote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.DemoteFromExecutive(r.Context(), actor, r.PathValue("id"), requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{Success: true, User: user.Summarize()})
}
