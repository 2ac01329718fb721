package badge

import (
	"time"

	"github.com/google/uuid"
)

type Domain string

const (
	DomainJournal    Domain = "journal"
	DomainCalendar   Domain = "calendar"
	DomainFriends    Domain = "friends"
	DomainChat       Domain = "chat"
	DomainDailyFocus Domain = "daily-focus"
)

// Domains lists every activity domain in the order the orchestrator runs them.
var Domains = []Domain{DomainJournal, DomainCalendar, DomainFriends, DomainChat, DomainDailyFocus}

func ParseDomain(s string) (Domain, bool) {
	for _, d := range Domains {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

type Badge struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Icon        string    `json:"icon_name" db:"icon_name"`
	Requirement string    `json:"requirement" db:"requirement"`
}

type UserBadgeProgress struct {
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	BadgeID   uuid.UUID  `json:"badge_id" db:"badge_id"`
	Progress  int        `json:"progress" db:"progress"`
	Earned    bool       `json:"earned" db:"earned"`
	EarnedAt  *time.Time `json:"earned_at,omitempty" db:"earned_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// ProgressUpdate is the write half of UserBadgeProgress. At is used for
// updated_at, for created_at on insert, and for earned_at when Earned flips.
type ProgressUpdate struct {
	UserID   uuid.UUID
	BadgeID  uuid.UUID
	Progress int
	Earned   bool
	At       time.Time
}

type BadgeWithStatus struct {
	Badge
	Domain    Domain     `json:"domain,omitempty"`
	Threshold int        `json:"threshold"`
	Progress  int        `json:"progress"`
	Earned    bool       `json:"earned"`
	EarnedAt  *time.Time `json:"earned_at,omitempty"`
}
