package domain

import "time"

// MembershipStatus governs login eligibility and member visibility.
type MembershipStatus string

const (
	MembershipPending   MembershipStatus = "pending"
	MembershipActive    MembershipStatus = "active"
	MembershipInactive  MembershipStatus = "inactive"
	MembershipSuspended MembershipStatus = "suspended"
)

// ParseMembershipStatus validates a raw status string.
func ParseMembershipStatus(s string) (MembershipStatus, bool) {
	m := MembershipStatus(s)
	switch m {
	case MembershipPending, MembershipActive, MembershipInactive, MembershipSuspended:
		return m, true
	}
	return "", false
}

// ExecutivePosition records a user's named seat within their chapter.
// An open-ended position (nil EndDate) is currently active; promotion opens
// one, demotion closes it.
type ExecutivePosition struct {
	Position  string     `json:"position"`
	Term      string     `json:"term"` // e.g. "2024-2025"
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Active reports whether the position entry is still open.
func (p *ExecutivePosition) Active() bool {
	return p != nil && p.EndDate == nil
}

// User is a platform principal.
type User struct {
	ID           string
	Name         string
	Email        string // stored lowercase, unique
	PasswordHash string // argon2id PHC encoded
	Role         Role

	// ChapterID is required for every role except the global ones.
	ChapterID string

	MembershipStatus MembershipStatus

	EmailVerified          bool
	EmailVerificationToken string // fingerprint of the opaque token, cleared on use
	EmailVerifyExpires     *time.Time

	// Password reset is a single-use, time-boxed capability. Both fields are
	// cleared together on use or on expiry-driven rejection.
	PasswordResetToken   string // fingerprint of the opaque token
	PasswordResetExpires *time.Time

	ExecutivePosition *ExecutivePosition

	University string
	Company    string // industry partners only

	LastLogin  *time.Time
	LoginCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the membership allows platform access.
func (u *User) IsActive() bool {
	return u.MembershipStatus == MembershipActive
}

// RequiresChapter reports whether the user's role mandates chapter membership.
func (u *User) RequiresChapter() bool {
	return !u.Role.Global()
}

// Summary is the credential-free projection of a user returned by the API.
type Summary struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Role              Role               `json:"role"`
	Chapter           string             `json:"chapter,omitempty"`
	MembershipStatus  MembershipStatus   `json:"membershipStatus"`
	EmailVerified     bool               `json:"emailVerified"`
	ExecutivePosition *ExecutivePosition `json:"executivePosition,omitempty"`
	University        string             `json:"university,omitempty"`
	Company           string             `json:"company,omitempty"`
	LastLogin         *time.Time         `json:"lastLogin,omitempty"`
	LoginCount        int                `json:"loginCount"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// Summarize strips credential material from a user record.
func (u *User) Summarize() Summary {
	return Summary{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		Chapter:           u.ChapterID,
		MembershipStatus:  u.MembershipStatus,
		EmailVerified:     u.EmailVerified,
		ExecutivePosition: u.ExecutivePosition,
		University:        u.University,
		Company:           u.Company,
		LastLogin:         u.LastLogin,
		LoginCount:        u.LoginCount,
		CreatedAt:         u.CreatedAt,
	}
}
