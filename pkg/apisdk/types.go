package apisdk

import "time"

// ============================================================================
// Vocabulary
// ============================================================================

// Role values as carried on the wire.
const (
	RoleMember          = "member"
	RoleExecutive       = "executive"
	RoleChapterAdmin    = "chapter_admin"
	RoleSuperAdmin      = "super_admin"
	RoleIndustryPartner = "industry_partner"
)

// Membership status values.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Review status values for flagged audit entries.
const (
	ReviewPending   = "PENDING"
	ReviewReviewed  = "REVIEWED"
	ReviewEscalated = "ESCALATED"
	ReviewResolved  = "RESOLVED"
)

// ============================================================================
// Wire Types
// ============================================================================

// ExecutivePosition is an executive seat held by a user.
type ExecutivePosition struct {
	Position  string     `json:"position"`
	Term      string     `json:"term"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// User is the public view of a user record.
type User struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Role              string             `json:"role"`
	Chapter           string             `json:"chapter,omitempty"`
	MembershipStatus  string             `json:"membershipStatus"`
	EmailVerified     bool               `json:"emailVerified"`
	ExecutivePosition *ExecutivePosition `json:"executivePosition,omitempty"`
	University        string             `json:"university,omitempty"`
	Company           string             `json:"company,omitempty"`
	LastLogin         *time.Time         `json:"lastLogin,omitempty"`
	LoginCount        int                `json:"loginCount"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// PermissionFlags are the capabilities derived from a user's role.
type PermissionFlags struct {
	CanManageChapter        bool `json:"canManageChapter"`
	CanManageUsers          bool `json:"canManageUsers"`
	CanManageResearch       bool `json:"canManageResearch"`
	CanManageEvents         bool `json:"canManageEvents"`
	CanAccessGlobalFeatures bool `json:"canAccessGlobalFeatures"`
}

// ExecutiveSeat is a seat on a chapter's executive team.
type ExecutiveSeat struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Position  string     `json:"position"`
	Term      string     `json:"term"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Chapter is a university chapter.
type Chapter struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	University    string          `json:"university"`
	Location      string          `json:"location,omitempty"`
	Status        string          `json:"status"`
	ExecutiveTeam []ExecutiveSeat `json:"executiveTeam,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Research is a chapter research entry.
type Research struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Abstract  string    `json:"abstract,omitempty"`
	AuthorID  string    `json:"authorId"`
	ChapterID string    `json:"chapterId"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Event is a chapter event.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ChapterID   string    `json:"chapterId"`
	CreatedBy   string    `json:"createdBy"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt,omitzero"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Course is a global training course.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	Level       string    `json:"level"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuditEntry is a recorded audit log entry.
type AuditEntry struct {
	ID             string         `json:"id"`
	ActorID        string         `json:"actorId,omitempty"`
	ActorRole      string         `json:"actorRole,omitempty"`
	ActorChapter   string         `json:"actorChapter,omitempty"`
	Action         string         `json:"action"`
	Resource       string         `json:"resource,omitempty"`
	ResourceID     string         `json:"resourceId,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
	IPAddress      string         `json:"ipAddress,omitempty"`
	UserAgent      string         `json:"userAgent,omitempty"`
	Method         string         `json:"method,omitempty"`
	URL            string         `json:"url,omitempty"`
	StatusCode     int            `json:"statusCode"`
	Success        bool           `json:"success"`
	ErrorMessage   string         `json:"errorMessage,omitempty"`
	DurationMS     int64          `json:"durationMs,omitempty"`
	RiskLevel      string         `json:"riskLevel"`
	RequiresReview bool           `json:"requiresReview"`
	ReviewStatus   string         `json:"reviewStatus"`
	ReviewerID     string         `json:"reviewerId,omitempty"`
	ReviewNotes    string         `json:"reviewNotes,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// UserStats are aggregate membership counts.
type UserStats struct {
	TotalUsers       int `json:"totalUsers"`
	ActiveUsers      int `json:"activeUsers"`
	PendingUsers     int `json:"pendingUsers"`
	SuspendedUsers   int `json:"suspendedUsers"`
	Executives       int `json:"executives"`
	ChapterAdmins    int `json:"chapterAdmins"`
	IndustryPartners int `json:"industryPartners"`
}

// ============================================================================
// Requests
// ============================================================================

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	University      string `json:"university,omitempty"`
	Company         string `json:"company,omitempty"`
	IndustryPartner bool   `json:"industryPartner,omitempty"`
}

// CreateUserRequest creates a user directly (super admin only).
type CreateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role,omitempty"`
	ChapterID  string `json:"chapterId,omitempty"`
	University string `json:"university,omitempty"`
	Company    string `json:"company,omitempty"`
}

// UpdateUserRequest patches mutable profile fields. Nil fields are untouched.
type UpdateUserRequest struct {
	Name       *string `json:"name,omitempty"`
	University *string `json:"university,omitempty"`
	Company    *string `json:"company,omitempty"`
}

// PromoteRequest promotes a member into an executive seat.
type PromoteRequest struct {
	Position string `json:"position"`
	Term     string `json:"term"`
}

// AssignRoleRequest assigns an administrative role by email.
type AssignRoleRequest struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	ChapterID string `json:"chapterId,omitempty"`
}

// AssignExecutiveRequest grants the executive role within the actor's chapter.
type AssignExecutiveRequest struct {
	Email string `json:"email"`
}

// ChapterRequest creates or patches a chapter.
type ChapterRequest struct {
	Name       string `json:"name,omitempty"`
	University string `json:"university,omitempty"`
	Location   string `json:"location,omitempty"`
	Status     string `json:"status,omitempty"`
}

// ResearchRequest creates or patches a research entry.
type ResearchRequest struct {
	Title     string `json:"title,omitempty"`
	Abstract  string `json:"abstract,omitempty"`
	ChapterID string `json:"chapterId,omitempty"`
	Published bool   `json:"published,omitempty"`
}

// EventRequest creates or patches an event.
type EventRequest struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	ChapterID   string    `json:"chapterId,omitempty"`
	StartsAt    time.Time `json:"startsAt,omitzero"`
	EndsAt      time.Time `json:"endsAt,omitzero"`
	Location    string    `json:"location,omitempty"`
}

// CourseRequest creates or patches a course.
type CourseRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level,omitempty"`
}

// ReviewRequest advances a flagged audit entry's review state.
type ReviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// ============================================================================
// Responses
// ============================================================================

// MessageResponse is the generic success/message envelope.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    User   `json:"user"`
}

// LoginResponse is returned by login and the current-user endpoint.
type LoginResponse struct {
	Success     bool            `json:"success"`
	Token       string          `json:"token,omitempty"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	User        User            `json:"user"`
	Permissions PermissionFlags `json:"permissions"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// UserListResponse wraps a user listing.
type UserListResponse struct {
	Success bool   `json:"success"`
	Users   []User `json:"users"`
}

// StatsResponse wraps membership statistics.
type StatsResponse struct {
	Success bool      `json:"success"`
	Stats   UserStats `json:"stats"`
}

// ChapterResponse wraps a single chapter.
type ChapterResponse struct {
	Success bool    `json:"success"`
	Chapter Chapter `json:"chapter"`
}

// ChapterListResponse wraps a chapter listing.
type ChapterListResponse struct {
	Success  bool      `json:"success"`
	Chapters []Chapter `json:"chapters"`
}

// ResearchResponse wraps a single research entry.
type ResearchResponse struct {
	Success  bool     `json:"success"`
	Research Research `json:"research"`
}

// ResearchListResponse wraps a research listing.
type ResearchListResponse struct {
	Success  bool       `json:"success"`
	Research []Research `json:"research"`
}

// EventResponse wraps a single event.
type EventResponse struct {
	Success bool  `json:"success"`
	Event   Event `json:"event"`
}

// EventListResponse wraps an event listing.
type EventListResponse struct {
	Success bool    `json:"success"`
	Events  []Event `json:"events"`
}

// CourseResponse wraps a single course.
type CourseResponse struct {
	Success bool   `json:"success"`
	Course  Course `json:"course"`
}

// CourseListResponse wraps a course listing.
type CourseListResponse struct {
	Success bool     `json:"success"`
	Courses []Course `json:"courses"`
}

// AuditEntryResponse wraps a single audit entry.
type AuditEntryResponse struct {
	Success bool       `json:"success"`
	Entry   AuditEntry `json:"entry"`
}

// AuditListResponse wraps an audit listing.
type AuditListResponse struct {
	Success bool         `json:"success"`
	Entries []AuditEntry `json:"entries"`
}

// HealthResponse is returned by the health probes.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
