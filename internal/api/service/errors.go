package service

import "errors"

// Shared service sentinels. Each rejection reason is distinguishable so the
// HTTP layer can map forbidden vs not-found vs bad-request precisely.
var (
	ErrValidation = errors.New("invalid_request")
	ErrConflict   = errors.New("conflict")

	// Login gates. Lookup and verify failures share ErrInvalidCredentials
	// so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailNotVerified   = errors.New("email_not_verified")
	ErrMembershipInactive = errors.New("membership_inactive")
	ErrTooManyAttempts    = errors.New("too_many_attempts")

	// Token lifecycle.
	ErrTokenInvalid = errors.New("token_invalid")
	ErrTokenExpired = errors.New("token_expired")

	// Authorization failures.
	ErrInsufficientRole  = errors.New("insufficient_role")
	ErrCrossChapter      = errors.New("cross_chapter_access")
	ErrSelfModification  = errors.New("self_modification")
	ErrInvalidTargetRole = errors.New("invalid_target_role")
	ErrChapterRequired   = errors.New("chapter_required")
	ErrPositionOccupied  = errors.New("position_occupied")
)
