package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/idx"
)

// CatalogService covers the content surfaces: chapter research, chapter
// events, and the global course library. Write access follows the capability
// predicates; chapter-bound writers stay inside their own chapter.
type CatalogService struct {
	Store  store.Store
	Audit  *AuditService
	Logger *slog.Logger
}

// catalogScope applies chapter scoping for chapter-bound content. Roles with
// cross-chapter access (super_admin, industry_partner) bypass it.
func catalogScope(actor domain.User, chapterID string) error {
	if actor.Role.HasCrossChapterAccess() {
		return nil
	}
	if actor.ChapterID != "" && actor.ChapterID == chapterID {
		return nil
	}
	return ErrCrossChapter
}

type ResearchInput struct {
	Title     string
	Abstract  string
	ChapterID string
	Published bool
}

func (s *CatalogService) GetResearch(ctx context.Context, id string) (domain.Research, error) {
	return s.Store.Research().GetByID(ctx, id)
}

func (s *CatalogService) ListResearch(ctx context.Context, chapterID string) ([]domain.Research, error) {
	return s.Store.Research().ListByChapter(ctx, chapterID)
}

func (s *CatalogService) CreateResearch(ctx context.Context, actor domain.User, in ResearchInput, meta RequestMeta) (domain.Research, error) {
	if !actor.Role.CanManageResearch() {
		return domain.Research{}, ErrInsufficientRole
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.ChapterID == "" {
		return domain.Research{}, ErrValidation
	}
	if err := catalogScope(actor, in.ChapterID); err != nil {
		return domain.Research{}, err
	}

	now := time.Now()
	entry := domain.Research{
		ID:        idx.New().String(),
		Title:     in.Title,
		Abstract:  in.Abstract,
		AuthorID:  actor.ID,
		ChapterID: in.ChapterID,
		Published: in.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Research().Create(ctx, entry); err != nil {
		return domain.Research{}, err
	}

	s.audit(ctx, actor, domain.ActionResearchCreate, domain.ResourceResearch, entry.ID, meta)
	return entry, nil
}

func (s *CatalogService) UpdateResearch(ctx context.Context, actor domain.User, id string, in ResearchInput, meta RequestMeta) (domain.Research, error) {
	if !actor.Role.CanManageResearch() {
		return domain.Research{}, ErrInsufficientRole
	}

	entry, err := s.Store.Research().GetByID(ctx, id)
	if err != nil {
		return domain.Research{}, err
	}
	if err := catalogScope(actor, entry.ChapterID); err != nil {
		return domain.Research{}, err
	}

	action := domain.ActionResearchUpdate
	if title := strings.TrimSpace(in.Title); title != "" {
		entry.Title = title
	}
	if in.Abstract != "" {
		entry.Abstract = in.Abstract
	}
	if in.Published && !entry.Published {
		action = domain.ActionResearchPublish
	}
	entry.Published = in.Published
	entry.UpdatedAt = time.Now()

	if err := s.Store.Research().Update(ctx, entry); err != nil {
		return domain.Research{}, err
	}

	s.audit(ctx, actor, action, domain.ResourceResearch, entry.ID, meta)
	return entry, nil
}

func (s *CatalogService) DeleteResearch(ctx context.Context, actor domain.User, id string, meta RequestMeta) error {
	if !actor.Role.CanManageResearch() {
		return ErrInsufficientRole
	}

	entry, err := s.Store.Research().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := catalogScope(actor, entry.ChapterID); err != nil {
		return err
	}

	if err := s.Store.Research().Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, actor, domain.ActionResearchDelete, domain.ResourceResearch, id, meta)
	return nil
}

type EventInput struct {
	Title       string
	Description string
	ChapterID   string
	StartsAt    time.Time
	EndsAt      time.Time
	Location    string
}

func (s *CatalogService) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	return s.Store.Events().GetByID(ctx, id)
}

func (s *CatalogService) ListEvents(ctx context.Context, chapterID string) ([]domain.Event, error) {
	return s.Store.Events().ListByChapter(ctx, chapterID)
}

func (s *CatalogService) CreateEvent(ctx context.Context, actor domain.User, in EventInput, meta RequestMeta) (domain.Event, error) {
	if !actor.Role.CanManageEvents() {
		return domain.Event{}, ErrInsufficientRole
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.ChapterID == "" || in.StartsAt.IsZero() {
		return domain.Event{}, ErrValidation
	}
	if !in.EndsAt.IsZero() && in.EndsAt.Before(in.StartsAt) {
		return domain.Event{}, ErrValidation
	}
	if err := CheckChapterScope(actor, in.ChapterID); err != nil {
		return domain.Event{}, err
	}

	now := time.Now()
	event := domain.Event{
		ID:          idx.New().String(),
		Title:       in.Title,
		Description: in.Description,
		ChapterID:   in.ChapterID,
		CreatedBy:   actor.ID,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		Location:    in.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Events().Create(ctx, event); err != nil {
		return domain.Event{}, err
	}

	s.audit(ctx, actor, domain.ActionEventCreate, domain.ResourceEvent, event.ID, meta)
	return event, nil
}

func (s *CatalogService) UpdateEvent(ctx context.Context, actor domain.User, id string, in EventInput, meta RequestMeta) (domain.Event, error) {
	if !actor.Role.CanManageEvents() {
		return domain.Event{}, ErrInsufficientRole
	}

	event, err := s.Store.Events().GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	if err := CheckChapterScope(actor, event.ChapterID); err != nil {
		return domain.Event{}, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		event.Title = title
	}
	if in.Description != "" {
		event.Description = in.Description
	}
	if !in.StartsAt.IsZero() {
		event.StartsAt = in.StartsAt
	}
	if !in.EndsAt.IsZero() {
		event.EndsAt = in.EndsAt
	}
	if in.Location != "" {
		event.Location = in.Location
	}
	event.UpdatedAt = time.Now()

	if err := s.Store.Events().Update(ctx, event); err != nil {
		return domain.Event{}, err
	}

	s.audit(ctx, actor, domain.ActionEventUpdate, domain.ResourceEvent, event.ID, meta)
	return event, nil
}

func (s *CatalogService) DeleteEvent(ctx context.Context, actor domain.User, id string, meta RequestMeta) error {
	if !actor.Role.CanManageEvents() {
		return ErrInsufficientRole
	}

	event, err := s.Store.Events().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := CheckChapterScope(actor, event.ChapterID); err != nil {
		return err
	}

	if err := s.Store.Events().Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, actor, domain.ActionEventDelete, domain.ResourceEvent, id, meta)
	return nil
}

type CourseInput struct {
	Title       string
	Description string
	Level       string
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	return s.Store.Courses().GetByID(ctx, id)
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.Store.Courses().List(ctx)
}

func (s *CatalogService) CreateCourse(ctx context.Context, actor domain.User, in CourseInput, meta RequestMeta) (domain.Course, error) {
	if !actor.Role.CanManageCourses() {
		return domain.Course{}, ErrInsufficientRole
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Course{}, ErrValidation
	}
	if in.Level == "" {
		in.Level = "beginner"
	}

	now := time.Now()
	course := domain.Course{
		ID:          idx.New().String(),
		Title:       in.Title,
		Description: in.Description,
		CreatedBy:   actor.ID,
		Level:       in.Level,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Courses().Create(ctx, course); err != nil {
		return domain.Course{}, err
	}

	s.audit(ctx, actor, domain.ActionCourseCreate, domain.ResourceCourse, course.ID, meta)
	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, actor domain.User, id string, in CourseInput, meta RequestMeta) (domain.Course, error) {
	if !actor.Role.CanManageCourses() {
		return domain.Course{}, ErrInsufficientRole
	}

	course, err := s.Store.Courses().GetByID(ctx, id)
	if err != nil {
		return domain.Course{}, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		course.Title = title
	}
	if in.Description != "" {
		course.Description = in.Description
	}
	if in.Level != "" {
		course.Level = in.Level
	}
	course.UpdatedAt = time.Now()

	if err := s.Store.Courses().Update(ctx, course); err != nil {
		return domain.Course{}, err
	}

	s.audit(ctx, actor, domain.ActionCourseUpdate, domain.ResourceCourse, course.ID, meta)
	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, actor domain.User, id string, meta RequestMeta) error {
	if !actor.Role.CanManageCourses() {
		return ErrInsufficientRole
	}

	if _, err := s.Store.Courses().GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.Store.Courses().Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, actor, domain.ActionCourseDelete, domain.ResourceCourse, id, meta)
	return nil
}

func (s *CatalogService) audit(ctx context.Context, actor domain.User, action domain.Action, resource domain.Resource, resourceID string, meta RequestMeta) {
	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ActorChapter: actor.ChapterID,
		Action:       action,
		Resource:     resource,
		ResourceID:   resourceID,
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		Method:       meta.Method,
		URL:          meta.URL,
		StatusCode:   http.StatusOK,
		Success:      true,
	})
}
