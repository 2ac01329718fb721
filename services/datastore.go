package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/N1femi/Thriva/internal/badge"
	"github.com/N1femi/Thriva/internal/journal"
	"github.com/N1femi/Thriva/internal/stats"
)

// Source is an activity table the badge engine counts rows in.
type Source string

const (
	SourceJournalEntries  Source = "entries"
	SourceCalendarEvents  Source = "events"
	SourceFriends         Source = "friends"
	SourceChats           Source = "chats"
	SourceChatMessages    Source = "messages"
	SourceFocusSelections Source = "user_daily_focus"
)

// CountFilter narrows a count to one user's rows. From is inclusive and To
// exclusive, both on the source's creation timestamp. Completed only applies
// to SourceFocusSelections.
type CountFilter struct {
	Source    Source
	UserID    uuid.UUID
	From      *time.Time
	To        *time.Time
	Completed *bool
}

// Datastore is everything the badge engine needs from storage.
type Datastore interface {
	// GetUserStats returns nil, nil when the user has no stats row yet.
	GetUserStats(ctx context.Context, userID uuid.UUID) (*stats.UserStats, error)
	// SaveUserStats writes next only if the stored row still carries
	// prevUpdatedAt, or inserts it when prevUpdatedAt is nil and no row
	// exists. It reports whether the write happened.
	SaveUserStats(ctx context.Context, next *stats.UserStats, prevUpdatedAt *time.Time) (bool, error)

	ListBadges(ctx context.Context) ([]badge.Badge, error)
	// GetBadgeProgress returns nil, nil when no row exists.
	GetBadgeProgress(ctx context.Context, userID, badgeID uuid.UUID) (*badge.UserBadgeProgress, error)
	// UpsertBadgeProgress applies u only when it raises the stored progress.
	// earned is never cleared and earned_at is never overwritten. It returns
	// nil, nil when the stored row was left alone.
	UpsertBadgeProgress(ctx context.Context, u badge.ProgressUpdate) (*badge.UserBadgeProgress, error)
	ListBadgeProgress(ctx context.Context, userID uuid.UUID) ([]badge.UserBadgeProgress, error)

	Count(ctx context.Context, f CountFilter) (int, error)
	// DistinctEventDates returns each calendar date in loc on which the user
	// has an event starting.
	DistinctEventDates(ctx context.Context, userID uuid.UUID, loc *time.Location) ([]time.Time, error)
	// LatestJournalEntry returns nil, nil when the user has never written.
	LatestJournalEntry(ctx context.Context, userID uuid.UUID) (*journal.Entry, error)
	ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error)
}
