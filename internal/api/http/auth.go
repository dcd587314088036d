package http

import (
	"net/http"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
	Router      *Router
	TokenInBody bool
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	University      string `json:"university,omitempty"`
	Company         string `json:"company,omitempty"`
	IndustryPartner bool   `json:"industryPartner,omitempty"`
}

type RegisterResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    domain.Summary `json:"user"`
}

// HandleRegister godoc
//
//	@Summary		Register a new account
//	@Description	Creates a pending member account attached to the chapter for the given
//	@Description	university, creating the chapter when none exists. Industry partners
//	@Description	register without a chapter. A verification email is sent on success.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest		true	"Registration details"
//	@Success		201		{object}	RegisterResponse	"success, message, user"
//	@Failure		400		{object}	ErrorResponse		"success, message"
//	@Failure		409		{object}	ErrorResponse		"success, message"
//	@Router			/v1/auth/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		University:      req.University,
		Company:         req.Company,
		IndustryPartner: req.IndustryPartner,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Success: true,
		Message: "Registration successful. Please check your email to verify your account.",
		User:    user.Summarize(),
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success     bool                   `json:"success"`
	Token       string                 `json:"token,omitempty"`
	ExpiresAt   time.Time              `json:"expiresAt"`
	User        domain.Summary         `json:"user"`
	Permissions domain.PermissionFlags `json:"permissions"`
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges credentials for a session token. The token is always set as an
//	@Description	HttpOnly cookie; it is additionally returned in the body when the server
//	@Description	is configured for API clients.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse	"success, token, expiresAt, user, permissions"
//	@Failure		401		{object}	ErrorResponse	"success, message"
//	@Failure		429		{object}	ErrorResponse	"success, message"
//	@Router			/v1/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.AuthService.Login(r.Context(), req.Email, req.Password, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	resp := LoginResponse{
		Success:     true,
		ExpiresAt:   result.ExpiresAt,
		User:        result.User,
		Permissions: result.Permissions,
	}
	if h.TokenInBody {
		resp.Token = result.Token
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Clears the session cookie and records the logout. Stateless tokens stay
//	@Description	valid until expiry; clients must discard them.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/auth/logout [post]
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	h.AuthService.Logout(r.Context(), actor, requestMeta(r))

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "Logged out."})
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// HandleVerifyEmail godoc
//
//	@Summary		Verify email address
//	@Description	Consumes a single-use verification token from the registration email.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifyEmailRequest	true	"Verification token"
//	@Success		200		{object}	ErrorResponse		"success, message"
//	@Failure		401		{object}	ErrorResponse		"success, message"
//	@Router			/v1/auth/verify-email [post]
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.AuthService.VerifyEmail(r.Context(), req.Token, requestMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "Email verified. You can now log in."})
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword godoc
//
//	@Summary		Request a password reset
//	@Description	Always responds 200 regardless of whether the email is known, to avoid
//	@Description	account enumeration. Known accounts receive a reset email.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	ErrorResponse			"success, message"
//	@Router			/v1/auth/forgot-password [post]
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.AuthService.RequestPasswordReset(r.Context(), req.Email, requestMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{
		Success: true,
		Message: "If that email is registered, a reset link has been sent.",
	})
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// HandleResetPassword godoc
//
//	@Summary		Complete a password reset
//	@Description	Consumes a single-use reset token and sets the new password.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ResetPasswordRequest	true	"Reset token and new password"
//	@Success		200		{object}	ErrorResponse			"success, message"
//	@Failure		401		{object}	ErrorResponse			"success, message"
//	@Router			/v1/auth/reset-password [post]
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Token, req.NewPassword, requestMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "Password has been reset. You can now log in."})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Rotates the authenticated user's password after verifying the current one.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	ErrorResponse			"success, message"
//	@Failure		401		{object}	ErrorResponse			"success, message"
//	@Security		BearerAuth
//	@Router			/v1/auth/change-password [post]
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), actor, req.CurrentPassword, req.NewPassword, requestMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "Password changed."})
}

// HandleMe godoc
//
//	@Summary		Current user profile
//	@Description	Returns the authenticated user's record and derived permissions.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	LoginResponse	"success, user, permissions"
//	@Failure		401	{object}	ErrorResponse	"success, message"
//	@Security		BearerAuth
//	@Router			/v1/me [get]
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Router.actor(w, r)
	if !ok {
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:     true,
		User:        actor.Summarize(),
		Permissions: actor.Role.Permissions(),
	})
}
