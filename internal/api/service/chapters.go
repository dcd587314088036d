package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/idx"
)

// ChapterService manages the organizational units members belong to.
type ChapterService struct {
	Store  store.Store
	Audit  *AuditService
	Logger *slog.Logger
}

func (s *ChapterService) Get(ctx context.Context, id string) (domain.Chapter, error) {
	return s.Store.Chapters().GetByID(ctx, id)
}

func (s *ChapterService) List(ctx context.Context, f store.ChapterFilter) ([]domain.Chapter, error) {
	return s.Store.Chapters().List(ctx, f)
}

type ChapterInput struct {
	Name       string
	University string
	Location   string
	Status     domain.ChapterStatus
}

// Create provisions a chapter explicitly. Only super admins create chapters
// by hand; registration auto-vivifies them.
func (s *ChapterService) Create(ctx context.Context, actor domain.User, in ChapterInput, meta RequestMeta) (domain.Chapter, error) {
	if !actor.Role.IsSuperAdmin() {
		return domain.Chapter{}, ErrInsufficientRole
	}

	in.Name = strings.TrimSpace(in.Name)
	in.University = strings.TrimSpace(in.University)
	if in.Name == "" || in.University == "" {
		return domain.Chapter{}, ErrValidation
	}
	if in.Status == "" {
		in.Status = domain.ChapterPending
	}

	now := time.Now()
	chapter := domain.Chapter{
		ID:         idx.New().String(),
		Name:       in.Name,
		University: in.University,
		Location:   in.Location,
		Status:     in.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Store.Chapters().Create(ctx, chapter); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Chapter{}, ErrConflict
		}
		return domain.Chapter{}, err
	}

	s.audit(ctx, actor, domain.ActionChapterCreate, chapter.ID, meta, map[string]any{
		"name": chapter.Name,
	})
	return chapter, nil
}

// Update edits a chapter's scalar fields. Executives and chapter admins may
// edit their own chapter, super admins any.
func (s *ChapterService) Update(ctx context.Context, actor domain.User, id string, in ChapterInput, meta RequestMeta) (domain.Chapter, error) {
	if !actor.Role.IsExecutiveOrHigher() {
		return domain.Chapter{}, ErrInsufficientRole
	}
	if err := CheckChapterScope(actor, id); err != nil {
		return domain.Chapter{}, err
	}

	chapter, err := s.Store.Chapters().GetByID(ctx, id)
	if err != nil {
		return domain.Chapter{}, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		chapter.Name = name
	}
	if university := strings.TrimSpace(in.University); university != "" {
		chapter.University = university
	}
	if in.Location != "" {
		chapter.Location = in.Location
	}
	if in.Status != "" {
		// only super admins flip lifecycle state
		if !actor.Role.IsSuperAdmin() {
			return domain.Chapter{}, ErrInsufficientRole
		}
		chapter.Status = in.Status
	}
	chapter.UpdatedAt = time.Now()

	if err := s.Store.Chapters().Update(ctx, chapter); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Chapter{}, ErrConflict
		}
		return domain.Chapter{}, err
	}

	s.audit(ctx, actor, domain.ActionChapterUpdate, chapter.ID, meta, nil)
	return chapter, nil
}

// Delete removes a chapter. Super admin only.
func (s *ChapterService) Delete(ctx context.Context, actor domain.User, id string, meta RequestMeta) error {
	if !actor.Role.IsSuperAdmin() {
		return ErrInsufficientRole
	}

	chapter, err := s.Store.Chapters().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Store.Chapters().Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, actor, domain.ActionChapterDelete, id, meta, map[string]any{
		"name": chapter.Name,
	})
	return nil
}

// FindOrCreateByUniversity resolves the active chapter for a university by
// exact normalized match, creating one when absent. Idempotent: at most one
// active chapter exists per normalized university name.
func (s *ChapterService) FindOrCreateByUniversity(ctx context.Context, university string) (domain.Chapter, error) {
	university = strings.TrimSpace(university)
	if university == "" {
		return domain.Chapter{}, ErrValidation
	}

	var chapter domain.Chapter
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		chapter, err = findOrCreateChapter(ctx, tx.Chapters(), university, time.Now())
		return err
	})
	return chapter, err
}

func (s *ChapterService) audit(ctx context.Context, actor domain.User, action domain.Action, resourceID string, meta RequestMeta, details map[string]any) {
	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ActorChapter: actor.ChapterID,
		Action:       action,
		Resource:     domain.ResourceChapter,
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
