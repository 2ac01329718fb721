package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeFriendRequest Type = "friend_request"
	TypeFriendAdded   Type = "friend_added"
	TypeJournalEntry  Type = "journal_entry"
	TypeBadgeEarned   Type = "badge_earned"
	TypeCalendarEvent Type = "calendar_event"
)

var Types = []Type{TypeFriendRequest, TypeFriendAdded, TypeJournalEntry, TypeBadgeEarned, TypeCalendarEvent}

func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

type Notification struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Type      Type           `json:"type" db:"type"`
	Title     string         `json:"title" db:"title"`
	Message   string         `json:"message" db:"message"`
	Read      bool           `json:"read" db:"read"`
	Metadata  map[string]any `json:"metadata" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
	TotalCount    int            `json:"total_count"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
}

// Preference is one per-type opt-in row. A type with no row is enabled.
type Preference struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	NotificationType Type      `json:"notification_type" db:"notification_type"`
	Enabled          bool      `json:"enabled" db:"enabled"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
