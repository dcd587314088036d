package domain

import "time"

// Action identifies what an audited event did.
type Action string

const (
	// Authentication actions
	ActionLogin                 Action = "LOGIN"
	ActionLogout                Action = "LOGOUT"
	ActionRegister              Action = "REGISTER"
	ActionPasswordChange        Action = "PASSWORD_CHANGE"
	ActionPasswordResetRequest  Action = "PASSWORD_RESET_REQUEST"
	ActionPasswordResetComplete Action = "PASSWORD_RESET_COMPLETE"
	ActionEmailVerification     Action = "EMAIL_VERIFICATION"

	// User management actions
	ActionUserCreate   Action = "USER_CREATE"
	ActionUserUpdate   Action = "USER_UPDATE"
	ActionUserDelete   Action = "USER_DELETE"
	ActionUserActivate Action = "USER_ACTIVATE"
	ActionUserSuspend  Action = "USER_SUSPEND"
	ActionUserPromote  Action = "USER_PROMOTE"
	ActionUserDemote   Action = "USER_DEMOTE"
	ActionRoleChange   Action = "ROLE_CHANGE"

	// Chapter management actions
	ActionChapterCreate Action = "CHAPTER_CREATE"
	ActionChapterUpdate Action = "CHAPTER_UPDATE"
	ActionChapterDelete Action = "CHAPTER_DELETE"
	ActionChapterJoin   Action = "CHAPTER_JOIN"
	ActionChapterLeave  Action = "CHAPTER_LEAVE"

	// Research actions
	ActionResearchCreate  Action = "RESEARCH_CREATE"
	ActionResearchUpdate  Action = "RESEARCH_UPDATE"
	ActionResearchDelete  Action = "RESEARCH_DELETE"
	ActionResearchPublish Action = "RESEARCH_PUBLISH"

	// Event actions
	ActionEventCreate     Action = "EVENT_CREATE"
	ActionEventUpdate     Action = "EVENT_UPDATE"
	ActionEventDelete     Action = "EVENT_DELETE"
	ActionEventRegister   Action = "EVENT_REGISTER"
	ActionEventUnregister Action = "EVENT_UNREGISTER"

	// Course actions
	ActionCourseCreate   Action = "COURSE_CREATE"
	ActionCourseUpdate   Action = "COURSE_UPDATE"
	ActionCourseDelete   Action = "COURSE_DELETE"
	ActionCourseEnroll   Action = "COURSE_ENROLL"
	ActionCourseUnenroll Action = "COURSE_UNENROLL"

	// Security actions
	ActionLoginAttemptFailed Action = "LOGIN_ATTEMPT_FAILED"
	ActionAccountLockout     Action = "ACCOUNT_LOCKOUT"
	ActionSuspiciousActivity Action = "SUSPICIOUS_ACTIVITY"
	ActionRateLimitExceeded  Action = "RATE_LIMIT_EXCEEDED"

	// System actions
	ActionSystemBackup        Action = "SYSTEM_BACKUP"
	ActionSystemUpdate        Action = "SYSTEM_UPDATE"
	ActionConfigurationChange Action = "CONFIGURATION_CHANGE"
)

// Resource identifies what kind of entity an audited event touched.
type Resource string

const (
	ResourceUser           Resource = "USER"
	ResourceChapter        Resource = "CHAPTER"
	ResourceResearch       Resource = "RESEARCH"
	ResourceEvent          Resource = "EVENT"
	ResourceCourse         Resource = "COURSE"
	ResourceSystem         Resource = "SYSTEM"
	ResourceAuthentication Resource = "AUTHENTICATION"
)

// RiskLevel is the coarse severity tag assigned for triage.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ReviewStatus is the review-workflow state of an audit entry.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "PENDING"
	ReviewReviewed  ReviewStatus = "REVIEWED"
	ReviewEscalated ReviewStatus = "ESCALATED"
	ReviewResolved  ReviewStatus = "RESOLVED"
)

// ParseReviewStatus validates a raw review status string.
func ParseReviewStatus(s string) (ReviewStatus, bool) {
	r := ReviewStatus(s)
	switch r {
	case ReviewPending, ReviewReviewed, ReviewEscalated, ReviewResolved:
		return r, true
	}
	return "", false
}

// AuditEntry is one append-only record of a security-relevant action.
// Immutable once written except for the review-workflow fields.
type AuditEntry struct {
	ID string `json:"id"`

	// Actor snapshot at the time of the action. ActorID is empty for
	// anonymous events such as failed logins.
	ActorID      string `json:"actorId,omitempty"`
	ActorRole    Role   `json:"actorRole,omitempty"`
	ActorChapter string `json:"actorChapter,omitempty"`

	Action     Action   `json:"action"`
	Resource   Resource `json:"resource,omitempty"`
	ResourceID string   `json:"resourceId,omitempty"`

	// Details holds redacted request/response snapshots and free-form
	// context, serialized as JSON at the store boundary.
	Details map[string]any `json:"details,omitempty"`

	IPAddress    string `json:"ipAddress,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
	Method       string `json:"method,omitempty"`
	URL          string `json:"url,omitempty"`
	StatusCode   int    `json:"statusCode"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	DurationMS   int64  `json:"durationMs,omitempty"`

	RiskLevel      RiskLevel `json:"riskLevel"`
	RequiresReview bool      `json:"requiresReview"`

	ReviewStatus ReviewStatus `json:"reviewStatus"`
	ReviewerID   string       `json:"reviewerId,omitempty"`
	ReviewNotes  string       `json:"reviewNotes,omitempty"`
	ReviewedAt   *time.Time   `json:"reviewedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
