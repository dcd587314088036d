package store

import (
	"context"
	"errors"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// UserFilter narrows user listings. Zero-value fields are ignored.
type UserFilter struct {
	Role       domain.Role
	ChapterID  string
	Status     domain.MembershipStatus
	University string
	Search     string // matches name or email, case-insensitive
}

// UserStats is the aggregate used by the admin dashboards.
type UserStats struct {
	TotalUsers       int `json:"totalUsers"`
	ActiveUsers      int `json:"activeUsers"`
	PendingUsers     int `json:"pendingUsers"`
	SuspendedUsers   int `json:"suspendedUsers"`
	Executives       int `json:"executives"`
	ChapterAdmins    int `json:"chapterAdmins"`
	IndustryPartners int `json:"industryPartners"`
}

// ChapterFilter narrows chapter listings.
type ChapterFilter struct {
	Status     domain.ChapterStatus
	University string
	Location   string
}

// AuditFilter narrows audit-log listings.
type AuditFilter struct {
	ActorID   string
	Action    domain.Action
	Resource  domain.Resource
	Since     time.Time
	IPAddress string
	Limit     int
}

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	Chapters() Chapters
	AuditLogs() AuditLogs
	Research() Research
	Events() Events
	Courses() Courses

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Use it for
	// multi-step operations that must be atomic (e.g. role promotion).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Users() Users
	Chapters() Chapters
	AuditLogs() AuditLogs
	Research() Research
	Events() Events
	Courses() Courses
}

type Users interface {
	// GetByID returns a user by id.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByEmail looks up a user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// GetByVerificationToken finds the user holding an email-verification
	// token fingerprint.
	GetByVerificationToken(ctx context.Context, tokenHash string) (domain.User, error)

	// GetByResetToken finds the user holding a password-reset token fingerprint.
	GetByResetToken(ctx context.Context, tokenHash string) (domain.User, error)

	// List returns users matching the filter, newest first.
	List(ctx context.Context, f UserFilter) ([]domain.User, error)

	// Create inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists on a duplicate email.
	Create(ctx context.Context, u domain.User) error

	// Update replaces the mutable fields of a user record and bumps
	// updated_at. The store guarantees document-level atomicity.
	Update(ctx context.Context, u domain.User) error

	// Delete removes a user.
	Delete(ctx context.Context, id string) error

	// Stats aggregates membership counts, optionally scoped to a chapter.
	Stats(ctx context.Context, chapterID string) (UserStats, error)

	// ClearExpiredTokens blanks verification/reset tokens whose expiry has
	// passed. Housekeeping.
	ClearExpiredTokens(ctx context.Context, now time.Time) error
}

type Chapters interface {
	// GetByID returns a chapter with its executive roster.
	GetByID(ctx context.Context, id string) (domain.Chapter, error)

	// GetByName looks up a chapter by its unique name.
	GetByName(ctx context.Context, name string) (domain.Chapter, error)

	// GetByUniversity looks up a chapter by normalized university name and
	// status. The match is exact on the normalized form.
	GetByUniversity(ctx context.Context, normalized string, status domain.ChapterStatus) (domain.Chapter, error)

	// List returns chapters matching the filter, newest first.
	List(ctx context.Context, f ChapterFilter) ([]domain.Chapter, error)

	// Create inserts a new chapter. Returns ErrAlreadyExists on duplicate name.
	Create(ctx context.Context, c domain.Chapter) error

	// Update replaces the chapter's scalar fields (not the roster).
	Update(ctx context.Context, c domain.Chapter) error

	// Delete removes a chapter and its roster rows.
	Delete(ctx context.Context, id string) error

	// AddExecutiveSeat appends a roster entry.
	AddExecutiveSeat(ctx context.Context, chapterID string, seat domain.ExecutiveSeat) error

	// CloseExecutiveSeat stamps end_date on a roster entry.
	CloseExecutiveSeat(ctx context.Context, seatID string, endedAt time.Time) error
}

type AuditLogs interface {
	// Create appends an audit entry. Entries are immutable afterwards
	// except through UpdateReview.
	Create(ctx context.Context, e domain.AuditEntry) error

	// GetByID returns one entry.
	GetByID(ctx context.Context, id string) (domain.AuditEntry, error)

	// CountFailedAttempts counts LOGIN_ATTEMPT_FAILED entries for an IP
	// address since the given time.
	CountFailedAttempts(ctx context.Context, ipAddress string, since time.Time) (int, error)

	// UserActivity returns an actor's entries, most recent first.
	UserActivity(ctx context.Context, actorID string, limit int) ([]domain.AuditEntry, error)

	// Suspicious returns entries since the given time that are HIGH/CRITICAL
	// risk, security-relevant actions, or flagged for review.
	Suspicious(ctx context.Context, since time.Time) ([]domain.AuditEntry, error)

	// List returns entries matching the filter, most recent first.
	List(ctx context.Context, f AuditFilter) ([]domain.AuditEntry, error)

	// UpdateReview advances the review workflow. Only the review fields
	// are touched.
	UpdateReview(ctx context.Context, id string, status domain.ReviewStatus, reviewerID, notes string, at time.Time) error
}

type Research interface {
	GetByID(ctx context.Context, id string) (domain.Research, error)
	ListByChapter(ctx context.Context, chapterID string) ([]domain.Research, error)
	Create(ctx context.Context, r domain.Research) error
	Update(ctx context.Context, r domain.Research) error
	Delete(ctx context.Context, id string) error
}

type Events interface {
	GetByID(ctx context.Context, id string) (domain.Event, error)
	ListByChapter(ctx context.Context, chapterID string) ([]domain.Event, error)
	Create(ctx context.Context, e domain.Event) error
	Update(ctx context.Context, e domain.Event) error
	Delete(ctx context.Context, id string) error
}

type Courses interface {
	GetByID(ctx context.Context, id string) (domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
	Create(ctx context.Context, c domain.Course) error
	Update(ctx context.Context, c domain.Course) error
	Delete(ctx context.Context, id string) error
}
