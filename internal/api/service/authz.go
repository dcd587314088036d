package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/notify"
	"github.com/threatcombat/threatcombat/internal/api/store"
)

// RequestMeta carries request attribution into service-level audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
	Method    string
	URL       string
}

// AuthzService decides whether a principal may act on a target and performs
// role assignments. The principal is always an explicit parameter, never
// ambient state.
type AuthzService struct {
	Store    store.Store
	Audit    *AuditService
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// allowedTargetRoles is the promotion surface per acting role.
var allowedTargetRoles = map[domain.Role]map[domain.Role]struct{}{
	domain.RoleSuperAdmin: {
		domain.RoleChapterAdmin: {},
		domain.RoleSuperAdmin:   {},
		domain.RoleExecutive:    {},
	},
	domain.RoleChapterAdmin: {
		domain.RoleExecutive: {},
	},
}

// CheckChapterScope rejects a scoped action on a resource outside the
// actor's own chapter. super_admin bypasses scoping entirely.
func CheckChapterScope(actor domain.User, chapterID string) error {
	if actor.Role.IsSuperAdmin() {
		return nil
	}
	if actor.ChapterID != "" && actor.ChapterID == chapterID {
		return nil
	}
	return ErrCrossChapter
}

// AssignAdminRole promotes a target user, identified by email, into an
// administrative role.
//
// Rules, in evaluation order:
//  1. the actor must be super_admin or chapter_admin
//  2. super_admin may grant {chapter_admin, super_admin, executive};
//     chapter_admin may grant only executive
//  3. the target user must exist
//  4. promotion to super_admin requires the target's current role to be
//     industry_partner
//  5. granting chapter_admin requires an explicit chapter the target
//     already belongs to
//  6. granting executive uses the target's existing chapter; a
//     chapter_admin actor may only promote within their own chapter
//  7. self-modification is always rejected
//
// On success the new role is persisted together with a forced
// membershipStatus=active and emailVerified=true, the change is audited,
// and the target is notified best-effort.
func (s *AuthzService) AssignAdminRole(ctx context.Context, actor domain.User, targetEmail string, newRole domain.Role, chapterID string, meta RequestMeta) (domain.User, error) {
	fail := func(status int, err error) (domain.User, error) {
		s.auditRoleChange(ctx, actor, "", newRole, meta, status, err)
		return domain.User{}, err
	}

	if !actor.Role.IsChapterAdmin() {
		return fail(http.StatusForbidden, ErrInsufficientRole)
	}

	if _, ok := allowedTargetRoles[actor.Role][newRole]; !ok {
		return fail(http.StatusForbidden, ErrInvalidTargetRole)
	}

	target, err := s.Store.Users().GetByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(http.StatusNotFound, err)
		}
		return domain.User{}, err
	}

	if newRole == domain.RoleSuperAdmin && target.Role != domain.RoleIndustryPartner {
		return fail(http.StatusForbidden, ErrInvalidTargetRole)
	}

	switch newRole {
	case domain.RoleChapterAdmin:
		if chapterID == "" {
			return fail(http.StatusBadRequest, ErrChapterRequired)
		}
		if target.ChapterID != chapterID {
			return fail(http.StatusForbidden, ErrCrossChapter)
		}
	case domain.RoleExecutive:
		if !actor.Role.IsSuperAdmin() && target.ChapterID != actor.ChapterID {
			return fail(http.StatusForbidden, ErrCrossChapter)
		}
	}

	if target.ID == actor.ID {
		return fail(http.StatusForbidden, ErrSelfModification)
	}

	previous := target.Role
	target.Role = newRole
	target.MembershipStatus = domain.MembershipActive
	target.EmailVerified = true
	target.UpdatedAt = time.Now()

	if err := s.Store.Users().Update(ctx, target); err != nil {
		return domain.User{}, err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ActorChapter: actor.ChapterID,
		Action:       domain.ActionRoleChange,
		Resource:     domain.ResourceUser,
		ResourceID:   target.ID,
		Details: map[string]any{
			"previousRole": string(previous),
			"newRole":      string(newRole),
			"targetEmail":  target.Email,
		},
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Method:     meta.Method,
		URL:        meta.URL,
		StatusCode: http.StatusOK,
		Success:    true,
	})

	if err := s.Notifier.RoleChanged(ctx, target, previous); err != nil {
		// best-effort, the role change stands
		s.Logger.Warn("role change notification failed",
			"user_id", target.ID,
			"error", err,
		)
	}

	return target, nil
}

// AssignExecutiveRole is the chapter-admin-only promotion path, restricted
// to the actor's own chapter. Unlike AssignAdminRole it rejects targets that
// already hold executive-or-higher privilege.
func (s *AuthzService) AssignExecutiveRole(ctx context.Context, actor domain.User, targetEmail string, meta RequestMeta) (domain.User, error) {
	fail := func(status int, err error) (domain.User, error) {
		s.auditRoleChange(ctx, actor, "", domain.RoleExecutive, meta, status, err)
		return domain.User{}, err
	}

	if actor.Role != domain.RoleChapterAdmin {
		return fail(http.StatusForbidden, ErrInsufficientRole)
	}

	target, err := s.Store.Users().GetByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(http.StatusNotFound, err)
		}
		return domain.User{}, err
	}

	if target.ChapterID != actor.ChapterID {
		return fail(http.StatusForbidden, ErrCrossChapter)
	}
	if target.ID == actor.ID {
		return fail(http.StatusForbidden, ErrSelfModification)
	}
	if target.Role.IsExecutiveOrHigher() {
		return fail(http.StatusConflict, ErrInvalidTargetRole)
	}

	previous := target.Role
	target.Role = domain.RoleExecutive
	target.MembershipStatus = domain.MembershipActive
	target.EmailVerified = true
	target.UpdatedAt = time.Now()

	if err := s.Store.Users().Update(ctx, target); err != nil {
		return domain.User{}, err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ActorChapter: actor.ChapterID,
		Action:       domain.ActionRoleChange,
		Resource:     domain.ResourceUser,
		ResourceID:   target.ID,
		Details: map[string]any{
			"previousRole": string(previous),
			"newRole":      string(domain.RoleExecutive),
			"targetEmail":  target.Email,
		},
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		Method:     meta.Method,
		URL:        meta.URL,
		StatusCode: http.StatusOK,
		Success:    true,
	})

	if err := s.Notifier.RoleChanged(ctx, target, previous); err != nil {
		s.Logger.Warn("role change notification failed",
			"user_id", target.ID,
			"error", err,
		)
	}

	return target, nil
}

// auditRoleChange records a rejected assignment attempt. The failed status
// keeps it out of any successful role-change trail.
func (s *AuthzService) auditRoleChange(ctx context.Context, actor domain.User, targetID string, newRole domain.Role, meta RequestMeta, status int, cause error) {
	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ActorChapter: actor.ChapterID,
		Action:       domain.ActionRoleChange,
		Resource:     domain.ResourceUser,
		ResourceID:   targetID,
		Details: map[string]any{
			"attemptedRole": string(newRole),
		},
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   status,
		Success:      false,
		ErrorMessage: cause.Error(),
	})
}
