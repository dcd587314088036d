package domain

import (
	"strings"
	"time"
)

// ChapterStatus is the lifecycle state of a chapter.
type ChapterStatus string

const (
	ChapterPending  ChapterStatus = "pending"
	ChapterActive   ChapterStatus = "active"
	ChapterInactive ChapterStatus = "inactive"
)

// ExecutivePositions are the named seats a chapter roster may carry.
var ExecutivePositions = []string{
	"President",
	"Vice President",
	"Secretary",
	"Treasurer",
	"Public Relations Officer",
	"Technical Lead",
	"Research Coordinator",
}

// ValidExecutivePosition reports whether the position name is known.
func ValidExecutivePosition(position string) bool {
	for _, p := range ExecutivePositions {
		if p == position {
			return true
		}
	}
	return false
}

// ExecutiveSeat is one roster entry. A seat with nil EndDate is open.
// Invariant: at most one open seat per position per chapter.
type ExecutiveSeat struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Position  string     `json:"position"`
	Term      string     `json:"term"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Open reports whether the seat is currently held.
func (s ExecutiveSeat) Open() bool { return s.EndDate == nil }

// Chapter is a university-affiliated organizational unit.
type Chapter struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"` // unique
	University string        `json:"university"`
	Location   string        `json:"location,omitempty"`
	Status     ChapterStatus `json:"status"`

	ExecutiveTeam []ExecutiveSeat `json:"executiveTeam,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OpenSeat returns the open roster entry for a position, or nil.
func (c *Chapter) OpenSeat(position string) *ExecutiveSeat {
	for i := range c.ExecutiveTeam {
		if c.ExecutiveTeam[i].Position == position && c.ExecutiveTeam[i].Open() {
			return &c.ExecutiveTeam[i]
		}
	}
	return nil
}

// OpenSeatForUser returns the open roster entry held by a user, or nil.
func (c *Chapter) OpenSeatForUser(userID string) *ExecutiveSeat {
	for i := range c.ExecutiveTeam {
		if c.ExecutiveTeam[i].UserID == userID && c.ExecutiveTeam[i].Open() {
			return &c.ExecutiveTeam[i]
		}
	}
	return nil
}

// CurrentExecutives returns the open roster entries.
func (c *Chapter) CurrentExecutives() []ExecutiveSeat {
	var open []ExecutiveSeat
	for _, seat := range c.ExecutiveTeam {
		if seat.Open() {
			open = append(open, seat)
		}
	}
	return open
}

// NormalizeUniversity canonicalizes a free-text university name for the
// find-or-create chapter match: lowercase, trimmed, inner whitespace
// collapsed. Matching is exact on the normalized form; substring matching
// would falsely merge distinct institutions.
func NormalizeUniversity(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
