package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/notify"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/cryptox"
	"github.com/threatcombat/threatcombat/pkg/idx"
	"github.com/threatcombat/threatcombat/pkg/jwtx"
	"github.com/threatcombat/threatcombat/pkg/slogx"
)

const (
	minPasswordLength = 8

	DefaultVerifyTTL = 24 * time.Hour
	DefaultResetTTL  = time.Hour
)

// AuthService orchestrates registration, the login state machine, and the
// token-based email-verification and password-reset flows.
type AuthService struct {
	Store    store.Store
	Audit    *AuditService
	Notifier notify.Notifier
	Signer   jwtx.Signer
	Logger   *slog.Logger

	Issuer    string
	TokenTTL  time.Duration
	VerifyTTL time.Duration
	ResetTTL  time.Duration
}

func (s *AuthService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return jwtx.DefaultSessionTTL
}

func (s *AuthService) verifyTTL() time.Duration {
	if s.VerifyTTL > 0 {
		return s.VerifyTTL
	}
	return DefaultVerifyTTL
}

func (s *AuthService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	University string
	Company    string

	// IndustryPartner registers the account with the global partner role
	// instead of chapter membership.
	IndustryPartner bool
}

// Register creates a pending member account. Member registrations are
// attached to the active chapter matching the normalized university name,
// creating one when none exists.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.University = strings.TrimSpace(in.University)

	if in.Name == "" || in.Email == "" {
		return domain.User{}, ErrValidation
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.User{}, ErrValidation
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, ErrValidation
	}
	if !in.IndustryPartner && in.University == "" {
		return domain.User{}, ErrValidation
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	rawToken, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now()
	verifyExpires := now.Add(s.verifyTTL())

	user := domain.User{
		ID:                     idx.New().String(),
		Name:                   in.Name,
		Email:                  in.Email,
		PasswordHash:           hash,
		Role:                   domain.RoleMember,
		MembershipStatus:       domain.MembershipPending,
		EmailVerificationToken: cryptox.FingerprintToken(rawToken),
		EmailVerifyExpires:     &verifyExpires,
		University:             in.University,
		Company:                in.Company,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if in.IndustryPartner {
		user.Role = domain.RoleIndustryPartner
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if !in.IndustryPartner {
			chapter, err := findOrCreateChapter(ctx, tx.Chapters(), in.University, now)
			if err != nil {
				return err
			}
			user.ChapterID = chapter.ID
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      user.ID,
		ActorRole:    user.Role,
		ActorChapter: user.ChapterID,
		Action:       domain.ActionRegister,
		Resource:     domain.ResourceUser,
		ResourceID:   user.ID,
		Details:      map[string]any{"email": user.Email, "university": user.University},
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusCreated,
		Success:      true,
	})

	if err := s.Notifier.VerificationEmail(ctx, user, rawToken); err != nil {
		s.Logger.Warn("verification email failed", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// findOrCreateChapter locates the active chapter for a university by exact
// normalized-name match, creating one when none exists. The normalized match
// keeps distinct institutions distinct: "MIT" never merges with "MIT Sloan".
func findOrCreateChapter(ctx context.Context, chapters store.Chapters, university string, now time.Time) (domain.Chapter, error) {
	normalized := domain.NormalizeUniversity(university)

	chapter, err := chapters.GetByUniversity(ctx, normalized, domain.ChapterActive)
	if err == nil {
		return chapter, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Chapter{}, err
	}

	chapter = domain.Chapter{
		ID:         idx.New().String(),
		Name:       university + " Chapter",
		University: university,
		Status:     domain.ChapterActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := chapters.Create(ctx, chapter); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// lost a race on the unique name, reuse the winner
			return chapters.GetByName(ctx, chapter.Name)
		}
		return domain.Chapter{}, err
	}
	return chapter, nil
}

// LoginResult is the successful outcome of the login state machine.
type LoginResult struct {
	Token       string
	ExpiresAt   time.Time
	User        domain.Summary
	Permissions domain.PermissionFlags
}

// Login runs the gate sequence: credential lookup, credential verify, email
// verification, membership status, lockout. The first failing gate
// short-circuits, is audited, and determines the caller-visible reason.
// Lookup and verify failures are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string, meta RequestMeta) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrValidation
	}

	// Gate 1: lookup. A store failure is surfaced as-is: "we don't know"
	// must never masquerade as "credentials are wrong".
	user, err := s.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.auditLoginFailure(ctx, domain.User{}, email, meta, "unknown email")
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	// Gate 2: verify. Same caller-visible failure as gate 1.
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		s.auditLoginFailure(ctx, user, email, meta, "password mismatch")
		return LoginResult{}, ErrInvalidCredentials
	}

	// Gates 3 and 4 do not apply to super admins.
	if !user.Role.IsSuperAdmin() {
		if !user.EmailVerified {
			s.auditLoginFailure(ctx, user, email, meta, "email not verified")
			return LoginResult{}, ErrEmailNotVerified
		}
		if !user.IsActive() {
			s.auditLoginFailure(ctx, user, email, meta, "membership not active")
			return LoginResult{}, ErrMembershipInactive
		}
	}

	// Gate 5: lockout by source IP.
	locked, err := s.Audit.IsLockedOut(ctx, meta.IP)
	if err != nil {
		return LoginResult{}, err
	}
	if locked {
		s.Audit.Record(ctx, domain.AuditEntry{
			ActorID:      user.ID,
			ActorRole:    user.Role,
			ActorChapter: user.ChapterID,
			Action:       domain.ActionAccountLockout,
			Resource:     domain.ResourceAuthentication,
			Details:      map[string]any{"email": email},
			IPAddress:    meta.IP,
			UserAgent:    meta.UserAgent,
			Method:       meta.Method,
			URL:          meta.URL,
			StatusCode:   http.StatusTooManyRequests,
			ErrorMessage: ErrTooManyAttempts.Error(),
		})
		return LoginResult{}, ErrTooManyAttempts
	}

	now := time.Now()
	user.LastLogin = &now
	user.LoginCount++
	user.UpdatedAt = now
	if err := s.Store.Users().Update(ctx, user); err != nil {
		slogx.FromContext(ctx).Warn("login bookkeeping failed", "user_id", user.ID, "error", err)
	}

	claims := jwtx.NewSessionClaims(user.ID, string(user.Role), user.ChapterID, user.Email, s.Issuer, s.tokenTTL(), now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return LoginResult{}, err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      user.ID,
		ActorRole:    user.Role,
		ActorChapter: user.ChapterID,
		Action:       domain.ActionLogin,
		Resource:     domain.ResourceAuthentication,
		Details:      map[string]any{"email": email},
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusOK,
		Success:      true,
	})

	return LoginResult{
		Token:       token,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user.Summarize(),
		Permissions: user.Role.Permissions(),
	}, nil
}

func (s *AuthService) auditLoginFailure(ctx context.Context, user domain.User, email string, meta RequestMeta, reason string) {
	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      user.ID,
		ActorRole:    user.Role,
		ActorChapter: user.ChapterID,
		Action:       domain.ActionLoginAttemptFailed,
		Resource:     domain.ResourceAuthentication,
		Details:      map[string]any{"email": email, "reason": reason},
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusUnauthorized,
		ErrorMessage: reason,
	})
}

// Logout records the logout event. Session tokens are stateless, the cookie
// is cleared at the transport layer.
func (s *AuthService) Logout(ctx context.Context, actor domain.User, meta RequestMeta) {
	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ActorChapter: actor.ChapterID,
		Action:       domain.ActionLogout,
		Resource:     domain.ResourceAuthentication,
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusOK,
		Success:      true,
	})
}

// VerifyEmail consumes an email-verification token. Tokens are single-use:
// the stored fingerprint is cleared whether the check succeeds or expires.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string, meta RequestMeta) (domain.User, error) {
	if rawToken == "" {
		return domain.User{}, ErrValidation
	}

	user, err := s.Store.Users().GetByVerificationToken(ctx, cryptox.FingerprintToken(rawToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrTokenInvalid
		}
		return domain.User{}, err
	}

	now := time.Now()
	expired := user.EmailVerifyExpires != nil && user.EmailVerifyExpires.Before(now)

	user.EmailVerificationToken = ""
	user.EmailVerifyExpires = nil
	if !expired {
		user.EmailVerified = true
	}
	user.UpdatedAt = now

	if err := s.Store.Users().Update(ctx, user); err != nil {
		return domain.User{}, err
	}
	if expired {
		return domain.User{}, ErrTokenExpired
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      user.ID,
		ActorRole:    user.Role,
		ActorChapter: user.ChapterID,
		Action:       domain.ActionEmailVerification,
		Resource:     domain.ResourceUser,
		ResourceID:   user.ID,
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusOK,
		Success:      true,
	})

	return user, nil
}

// RequestPasswordReset issues a single-use, time-boxed reset token. The
// response never reveals whether the email exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string, meta RequestMeta) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrValidation
	}

	user, err := s.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil // indistinguishable from success
		}
		return err
	}

	rawToken, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return err
	}

	now := time.Now()
	expires := now.Add(s.resetTTL())
	user.PasswordResetToken = cryptox.FingerprintToken(rawToken)
	user.PasswordResetExpires = &expires
	user.UpdatedAt = now

	if err := s.Store.Users().Update(ctx, user); err != nil {
		return err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      user.ID,
		ActorRole:    user.Role,
		ActorChapter: user.ChapterID,
		Action:       domain.ActionPasswordResetRequest,
		Resource:     domain.ResourceUser,
		ResourceID:   user.ID,
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusOK,
		Success:      true,
	})

	if err := s.Notifier.PasswordResetEmail(ctx, user, rawToken); err != nil {
		s.Logger.Warn("password reset email failed", "user_id", user.ID, "error", err)
	}

	return nil
}

// ResetPassword consumes a reset token and installs the new credential. The
// token fingerprint and its expiry are cleared together, on use and on
// expiry-driven rejection alike.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string, meta RequestMeta) error {
	if rawToken == "" {
		return ErrValidation
	}
	if len(newPassword) < minPasswordLength {
		return ErrValidation
	}

	user, err := s.Store.Users().GetByResetToken(ctx, cryptox.FingerprintToken(rawToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	now := time.Now()
	expired := user.PasswordResetExpires != nil && user.PasswordResetExpires.Before(now)

	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil
	user.UpdatedAt = now

	if expired {
		if err := s.Store.Users().Update(ctx, user); err != nil {
			return err
		}
		return ErrTokenExpired
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.Store.Users().Update(ctx, user); err != nil {
		return err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      user.ID,
		ActorRole:    user.Role,
		ActorChapter: user.ChapterID,
		Action:       domain.ActionPasswordResetComplete,
		Resource:     domain.ResourceUser,
		ResourceID:   user.ID,
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusOK,
		Success:      true,
	})

	return nil
}

// ChangePassword rotates the credential of an authenticated user after
// re-verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor domain.User, current, next string, meta RequestMeta) error {
	if len(next) < minPasswordLength {
		return ErrValidation
	}
	if err := cryptox.VerifyPassword(current, actor.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	actor.PasswordHash = hash
	actor.UpdatedAt = time.Now()
	if err := s.Store.Users().Update(ctx, actor); err != nil {
		return err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ActorChapter: actor.ChapterID,
		Action:       domain.ActionPasswordChange,
		Resource:     domain.ResourceUser,
		ResourceID:   actor.ID,
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusOK,
		Success:      true,
	})

	return nil
}
