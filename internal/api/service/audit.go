package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/idx"
)

// RedactionMarker replaces sensitive values in audit detail snapshots.
const RedactionMarker = "[REDACTED]"

// redactedFields are matched case-sensitively against detail keys at every
// nesting level.
var redactedFields = map[string]struct{}{
	"password":      {},
	"token":         {},
	"secret":        {},
	"key":           {},
	"authorization": {},
}

const (
	DefaultLockoutThreshold = 5
	DefaultLockoutWindow    = time.Hour

	defaultQueueSize  = 256
	auditWriteTimeout = 5 * time.Second
)

// AuditService classifies and persists security-relevant actions, and feeds
// lockout signals back into the login flow. Writes are queued and flushed by
// a background worker so a slow or failing audit sink never delays or fails
// the request being described.
type AuditService struct {
	Store  store.Store
	Logger *slog.Logger

	LockoutThreshold int
	LockoutWindow    time.Duration

	queue  chan auditItem
	stopCh chan struct{}
	doneCh chan struct{}
}

type auditItem struct {
	entry domain.AuditEntry

	// flush is a drain marker. The worker closes it once every entry queued
	// before it has been written.
	flush chan struct{}
}

func NewAuditService(st store.Store, logger *slog.Logger, threshold int, window time.Duration) *AuditService {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	if window <= 0 {
		window = DefaultLockoutWindow
	}

	return &AuditService{
		Store:            st,
		Logger:           logger,
		LockoutThreshold: threshold,
		LockoutWindow:    window,
		queue:            make(chan auditItem, defaultQueueSize),
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

// Start launches the background writer. Call Stop to drain and shut down.
func (s *AuditService) Start() {
	go s.run()
}

// Stop drains the queue and stops the writer.
func (s *AuditService) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *AuditService) run() {
	defer close(s.doneCh)

	for {
		select {
		case item := <-s.queue:
			s.handle(item)
		case <-s.stopCh:
			// drain whatever is still queued
			for {
				select {
				case item := <-s.queue:
					s.handle(item)
				default:
					return
				}
			}
		}
	}
}

func (s *AuditService) handle(item auditItem) {
	if item.flush != nil {
		close(item.flush)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := s.Store.AuditLogs().Create(ctx, item.entry); err != nil {
		// never propagate: the request this entry describes already finished
		s.Logger.Error("audit write failed",
			"action", item.entry.Action,
			"actor_id", item.entry.ActorID,
			"error", err,
		)
	}
}

// Record classifies, redacts, and queues an audit entry. It never blocks and
// never returns an error: if the queue is full the entry is dropped with a
// local log line.
func (s *AuditService) Record(ctx context.Context, e domain.AuditEntry) {
	e = Finalize(e, time.Now())

	select {
	case s.queue <- auditItem{entry: e}:
	default:
		s.Logger.Warn("audit queue full, entry dropped",
			"action", e.Action,
			"actor_id", e.ActorID,
		)
	}
}

// Flush blocks until every entry queued before the call has been written.
// Used by tests and graceful shutdown.
func (s *AuditService) Flush(ctx context.Context) error {
	marker := make(chan struct{})
	select {
	case s.queue <- auditItem{flush: marker}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-marker:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finalize fills in derived fields: id, timestamps, risk classification,
// review flag, redaction, and the failed-status invariant.
func Finalize(e domain.AuditEntry, now time.Time) domain.AuditEntry {
	if e.ID == "" {
		e.ID = idx.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.StatusCode >= 400 {
		e.Success = false
	}
	if e.RiskLevel == "" {
		e.RiskLevel = ClassifyRisk(e.Action, e.StatusCode)
	}
	e.RequiresReview = RequiresReview(e.Action, e.RiskLevel, e.ActorRole)
	if e.ReviewStatus == "" {
		e.ReviewStatus = domain.ReviewPending
	}
	e.Details = Redact(e.Details)
	return e
}

// ClassifyRisk assigns the coarse severity tag for an audited action.
func ClassifyRisk(action domain.Action, statusCode int) domain.RiskLevel {
	switch action {
	case domain.ActionUserDelete, domain.ActionChapterDelete,
		domain.ActionAccountLockout, domain.ActionSuspiciousActivity:
		return domain.RiskCritical

	case domain.ActionUserSuspend, domain.ActionUserPromote,
		domain.ActionUserDemote, domain.ActionRoleChange,
		domain.ActionPasswordResetComplete:
		return domain.RiskHigh

	case domain.ActionUserCreate, domain.ActionUserUpdate,
		domain.ActionPasswordChange, domain.ActionLoginAttemptFailed:
		return domain.RiskMedium
	}

	// any failed request not otherwise classified
	if statusCode >= 400 {
		return domain.RiskMedium
	}
	return domain.RiskLow
}

// RequiresReview decides whether an entry enters the review queue:
// every CRITICAL entry, HIGH-risk privilege actions performed by a principal
// below chapter_admin, and every failed authentication attempt.
func RequiresReview(action domain.Action, risk domain.RiskLevel, actorRole domain.Role) bool {
	if risk == domain.RiskCritical {
		return true
	}
	if risk == domain.RiskHigh && !actorRole.IsChapterAdmin() {
		return true
	}
	if action == domain.ActionLoginAttemptFailed {
		return true
	}
	return false
}

// Redact replaces sensitive field values in a detail snapshot with the
// redaction marker. Matching is by exact key name and descends into nested
// maps and slices, so request and response payloads are scrubbed wherever
// they sit.
func Redact(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}

	out := make(map[string]any, len(details))
	for k, v := range details {
		if _, sensitive := redactedFields[k]; sensitive {
			out[k] = RedactionMarker
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Redact(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}

// IsLockedOut reports whether an IP address has reached the failed-attempt
// threshold within the lockout window. Pure function of the stored tally:
// repeated checks with the same count return the same verdict.
func (s *AuditService) IsLockedOut(ctx context.Context, ipAddress string) (bool, error) {
	since := time.Now().Add(-s.LockoutWindow)
	count, err := s.Store.AuditLogs().CountFailedAttempts(ctx, ipAddress, since)
	if err != nil {
		return false, err
	}
	return count >= s.LockoutThreshold, nil
}

// UserActivity returns an actor's recent audit entries, most recent first.
func (s *AuditService) UserActivity(ctx context.Context, actorID string, limit int) ([]domain.AuditEntry, error) {
	return s.Store.AuditLogs().UserActivity(ctx, actorID, limit)
}

// SuspiciousActivity returns high-signal entries from the trailing number of
// days: HIGH/CRITICAL risk, failed or locked-out logins, or flagged for
// review.
func (s *AuditService) SuspiciousActivity(ctx context.Context, days int) ([]domain.AuditEntry, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.Store.AuditLogs().Suspicious(ctx, since)
}

// List returns audit entries matching the filter.
func (s *AuditService) List(ctx context.Context, f store.AuditFilter) ([]domain.AuditEntry, error) {
	return s.Store.AuditLogs().List(ctx, f)
}

// Get returns a single audit entry.
func (s *AuditService) Get(ctx context.Context, id string) (domain.AuditEntry, error) {
	return s.Store.AuditLogs().GetByID(ctx, id)
}

// AdvanceReview moves an entry through the review workflow. Only super and
// chapter admins may review; the caller enforces that via the HTTP role gate,
// this method validates the transition target. RESOLVED is terminal.
func (s *AuditService) AdvanceReview(ctx context.Context, id, reviewerID, rawStatus, notes string) (domain.AuditEntry, error) {
	status, ok := domain.ParseReviewStatus(rawStatus)
	if !ok || status == domain.ReviewPending {
		return domain.AuditEntry{}, ErrValidation
	}

	current, err := s.Store.AuditLogs().GetByID(ctx, id)
	if err != nil {
		return domain.AuditEntry{}, err
	}
	if current.ReviewStatus == domain.ReviewResolved {
		return domain.AuditEntry{}, ErrValidation
	}

	if err := s.Store.AuditLogs().UpdateReview(ctx, id, status, reviewerID, notes, time.Now()); err != nil {
		return domain.AuditEntry{}, err
	}
	return s.Store.AuditLogs().GetByID(ctx, id)
}
