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
)

// UserService covers member administration: listing, profile updates,
// lifecycle transitions, and the executive roster round trip. Every method
// takes the acting principal explicitly and enforces chapter scoping.
type UserService struct {
	Store    store.Store
	Audit    *AuditService
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// Get returns a user visible to the actor: themselves, anyone for
// super_admin, or same-chapter members for executives and chapter admins.
func (s *UserService) Get(ctx context.Context, actor domain.User, id string) (domain.User, error) {
	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if actor.ID == user.ID {
		return user, nil
	}
	if !actor.Role.IsExecutiveOrHigher() {
		return domain.User{}, ErrInsufficientRole
	}
	if err := CheckChapterScope(actor, user.ChapterID); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// List returns users matching the filter. Non-super-admin actors are pinned
// to their own chapter regardless of the requested filter.
func (s *UserService) List(ctx context.Context, actor domain.User, f store.UserFilter) ([]domain.User, error) {
	if !actor.Role.IsExecutiveOrHigher() {
		return nil, ErrInsufficientRole
	}
	if !actor.Role.IsSuperAdmin() {
		f.ChapterID = actor.ChapterID
	}
	return s.Store.Users().List(ctx, f)
}

// ChapterMembers lists the members of one chapter, scoped to the actor.
func (s *UserService) ChapterMembers(ctx context.Context, actor domain.User, chapterID string) ([]domain.User, error) {
	if !actor.Role.IsExecutiveOrHigher() {
		return nil, ErrInsufficientRole
	}
	if err := CheckChapterScope(actor, chapterID); err != nil {
		return nil, err
	}
	return s.Store.Users().List(ctx, store.UserFilter{ChapterID: chapterID})
}

// Stats aggregates membership counts. Chapter admins see their own chapter,
// super admins may request any chapter or the global aggregate.
func (s *UserService) Stats(ctx context.Context, actor domain.User, chapterID string) (store.UserStats, error) {
	if !actor.Role.HasAnalyticsAccess() {
		return store.UserStats{}, ErrInsufficientRole
	}
	if !actor.Role.IsSuperAdmin() {
		chapterID = actor.ChapterID
	}
	return s.Store.Users().Stats(ctx, chapterID)
}

type CreateUserInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	ChapterID  string
	University string
	Company    string
}

// Create is the admin path for provisioning accounts directly, including
// industry partners. Accounts created here are active and verified from the
// start: an admin creating the account vouches for it.
func (s *UserService) Create(ctx context.Context, actor domain.User, in CreateUserInput, meta RequestMeta) (domain.User, error) {
	if !actor.Role.IsSuperAdmin() {
		return domain.User{}, ErrInsufficientRole
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return domain.User{}, ErrValidation
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.User{}, ErrValidation
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, ErrValidation
	}
	if !in.Role.Valid() {
		return domain.User{}, ErrValidation
	}
	if !in.Role.Global() && in.ChapterID == "" {
		return domain.User{}, ErrChapterRequired
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now()
	user := domain.User{
		ID:               idx.New().String(),
		Name:             in.Name,
		Email:            in.Email,
		PasswordHash:     hash,
		Role:             in.Role,
		ChapterID:        in.ChapterID,
		MembershipStatus: domain.MembershipActive,
		EmailVerified:    true,
		University:       in.University,
		Company:          in.Company,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}

	s.audit(ctx, actor, domain.ActionUserCreate, user.ID, meta, map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})

	return user, nil
}

type UpdateUserInput struct {
	Name       *string
	University *string
	Company    *string
}

// Update applies profile changes to a user the actor may manage, or to the
// actor's own record.
func (s *UserService) Update(ctx context.Context, actor domain.User, id string, in UpdateUserInput, meta RequestMeta) (domain.User, error) {
	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if actor.ID != user.ID {
		if !actor.Role.IsChapterAdmin() {
			return domain.User{}, ErrInsufficientRole
		}
		if err := CheckChapterScope(actor, user.ChapterID); err != nil {
			return domain.User{}, err
		}
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.User{}, ErrValidation
		}
		user.Name = name
	}
	if in.University != nil {
		user.University = strings.TrimSpace(*in.University)
	}
	if in.Company != nil {
		user.Company = strings.TrimSpace(*in.Company)
	}
	user.UpdatedAt = time.Now()

	if err := s.Store.Users().Update(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.audit(ctx, actor, domain.ActionUserUpdate, user.ID, meta, nil)
	return user, nil
}

// Delete removes a user. Chapter admins may delete within their chapter,
// super admins anywhere. Actors never delete themselves.
func (s *UserService) Delete(ctx context.Context, actor domain.User, id string, meta RequestMeta) error {
	if !actor.Role.IsChapterAdmin() {
		return ErrInsufficientRole
	}
	if actor.ID == id {
		return ErrSelfModification
	}

	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := CheckChapterScope(actor, user.ChapterID); err != nil {
		return err
	}

	if err := s.Store.Users().Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, actor, domain.ActionUserDelete, id, meta, map[string]any{
		"email": user.Email,
	})
	return nil
}

// Activate moves a membership to active.
func (s *UserService) Activate(ctx context.Context, actor domain.User, id string, meta RequestMeta) (domain.User, error) {
	return s.setStatus(ctx, actor, id, domain.MembershipActive, domain.ActionUserActivate, meta)
}

// Suspend moves a membership to suspended. Self-suspension is rejected.
func (s *UserService) Suspend(ctx context.Context, actor domain.User, id string, meta RequestMeta) (domain.User, error) {
	if actor.ID == id {
		return domain.User{}, ErrSelfModification
	}
	return s.setStatus(ctx, actor, id, domain.MembershipSuspended, domain.ActionUserSuspend, meta)
}

func (s *UserService) setStatus(ctx context.Context, actor domain.User, id string, status domain.MembershipStatus, action domain.Action, meta RequestMeta) (domain.User, error) {
	if !actor.Role.IsChapterAdmin() {
		return domain.User{}, ErrInsufficientRole
	}

	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if err := CheckChapterScope(actor, user.ChapterID); err != nil {
		return domain.User{}, err
	}

	user.MembershipStatus = status
	user.UpdatedAt = time.Now()
	if err := s.Store.Users().Update(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.audit(ctx, actor, action, user.ID, meta, map[string]any{
		"membershipStatus": string(status),
	})
	return user, nil
}

// PromoteToExecutive grants the executive role and opens a roster seat.
// A target already holding an open seat has it closed first, so a user
// never holds two open entries. A position with an open seat held by
// someone else is occupied and the promotion is rejected.
func (s *UserService) PromoteToExecutive(ctx context.Context, actor domain.User, targetID, position, term string, meta RequestMeta) (domain.User, error) {
	if !actor.Role.IsChapterAdmin() {
		return domain.User{}, ErrInsufficientRole
	}
	if actor.ID == targetID {
		return domain.User{}, ErrSelfModification
	}
	if !domain.ValidExecutivePosition(position) {
		return domain.User{}, ErrValidation
	}

	var target domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		target, err = tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target.ChapterID == "" {
			return ErrChapterRequired
		}
		if err := CheckChapterScope(actor, target.ChapterID); err != nil {
			return err
		}

		chapter, err := tx.Chapters().GetByID(ctx, target.ChapterID)
		if err != nil {
			return err
		}

		now := time.Now()

		if seat := chapter.OpenSeat(position); seat != nil {
			if seat.UserID != targetID {
				return ErrPositionOccupied
			}
			// already holds this exact seat, nothing to change
			return nil
		}
		if seat := chapter.OpenSeatForUser(targetID); seat != nil {
			if err := tx.Chapters().CloseExecutiveSeat(ctx, seat.ID, now); err != nil {
				return err
			}
		}

		if err := tx.Chapters().AddExecutiveSeat(ctx, target.ChapterID, domain.ExecutiveSeat{
			ID:        idx.New().String(),
			UserID:    targetID,
			Position:  position,
			Term:      term,
			StartDate: now,
		}); err != nil {
			return err
		}

		target.Role = domain.RoleExecutive
		target.MembershipStatus = domain.MembershipActive
		target.EmailVerified = true
		target.ExecutivePosition = &domain.ExecutivePosition{
			Position:  position,
			Term:      term,
			StartDate: now,
		}
		target.UpdatedAt = now
		return tx.Users().Update(ctx, target)
	})
	if err != nil {
		return domain.User{}, err
	}

	s.audit(ctx, actor, domain.ActionUserPromote, target.ID, meta, map[string]any{
		"position": position,
		"term":     term,
	})
	return target, nil
}

// DemoteFromExecutive closes the target's open roster seat and returns them
// to the member role, leaving no open entry behind.
func (s *UserService) DemoteFromExecutive(ctx context.Context, actor domain.User, targetID string, meta RequestMeta) (domain.User, error) {
	if !actor.Role.IsChapterAdmin() {
		return domain.User{}, ErrInsufficientRole
	}
	if actor.ID == targetID {
		return domain.User{}, ErrSelfModification
	}

	var target domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		target, err = tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if err := CheckChapterScope(actor, target.ChapterID); err != nil {
			return err
		}
		if target.Role != domain.RoleExecutive {
			return ErrInvalidTargetRole
		}

		now := time.Now()

		if target.ChapterID != "" {
			chapter, err := tx.Chapters().GetByID(ctx, target.ChapterID)
			if err != nil {
				return err
			}
			if seat := chapter.OpenSeatForUser(targetID); seat != nil {
				if err := tx.Chapters().CloseExecutiveSeat(ctx, seat.ID, now); err != nil {
					return err
				}
			}
		}

		target.Role = domain.RoleMember
		if target.ExecutivePosition != nil && target.ExecutivePosition.EndDate == nil {
			ended := now
			target.ExecutivePosition.EndDate = &ended
		}
		target.UpdatedAt = now
		return tx.Users().Update(ctx, target)
	})
	if err != nil {
		return domain.User{}, err
	}

	s.audit(ctx, actor, domain.ActionUserDemote, target.ID, meta, nil)
	return target, nil
}

func (s *UserService) audit(ctx context.Context, actor domain.User, action domain.Action, resourceID string, meta RequestMeta, details map[string]any) {
	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ActorChapter: actor.ChapterID,
		Action:       action,
		Resource:     domain.ResourceUser,
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusOK,
		Success:      true,
	})
}
