package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/httpx"
	"github.com/threatcombat/threatcombat/pkg/slogx"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, code int, message string) {
	httpx.WriteJSON(w, code, ErrorResponse{Success: false, Message: message})
}

// writeServiceError maps service and store sentinels onto HTTP status codes.
// Unknown errors are logged and surface as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "Invalid request.")
	case errors.Is(err, service.ErrChapterRequired):
		writeError(w, http.StatusBadRequest, "A chapter is required for this role.")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, service.ErrEmailNotVerified):
		writeError(w, http.StatusUnauthorized, "Please verify your email address before logging in.")
	case errors.Is(err, service.ErrMembershipInactive):
		writeError(w, http.StatusUnauthorized, "Your membership is not active. Contact your chapter admin.")
	case errors.Is(err, service.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "Invalid or unknown token.")
	case errors.Is(err, service.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "Token has expired. Please request a new one.")
	case errors.Is(err, service.ErrInsufficientRole):
		writeError(w, http.StatusForbidden, "Access denied. Insufficient privileges.")
	case errors.Is(err, service.ErrCrossChapter):
		writeError(w, http.StatusForbidden, "Access denied. Resource belongs to another chapter.")
	case errors.Is(err, service.ErrSelfModification):
		writeError(w, http.StatusForbidden, "You cannot perform this operation on your own account.")
	case errors.Is(err, service.ErrInvalidTargetRole):
		writeError(w, http.StatusForbidden, "Target account is not eligible for this role.")
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "Resource already exists.")
	case errors.Is(err, service.ErrPositionOccupied):
		writeError(w, http.StatusConflict, "Executive position is already filled.")
	case errors.Is(err, service.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, "Too many failed attempts. Try again later.")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found.")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// decodeJSON parses the request body into v. Returns false after writing a
// 400 when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	return true
}

// requestMeta captures the request facts every audited operation records.
func requestMeta(r *http.Request) service.RequestMeta {
	return service.RequestMeta{
		IP:        httpx.IPKeyExtractor(r),
		UserAgent: r.UserAgent(),
		Method:    r.Method,
		URL:       r.URL.Path,
	}
}
