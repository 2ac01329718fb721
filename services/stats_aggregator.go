package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/N1femi/Thriva/internal/stats"
	"github.com/N1femi/Thriva/utils"
)

const maxStatsAttempts = 5

var ErrStatsContention = errors.New("user stats kept changing underneath the update")

// StatsAggregator folds a newly written journal entry into the user's
// rolling stats row.
type StatsAggregator struct {
	store Datastore
	clock Clock
	loc   *time.Location
}

func NewStatsAggregator(store Datastore, clock Clock, loc *time.Location) *StatsAggregator {
	return &StatsAggregator{store: store, clock: clock, loc: loc}
}

// RecomputeJournalStats applies one entry to the user's stats. entryAt
// defaults to the clock's now. The row is written with a conditional update
// on its previous updated_at; a lost race re-reads and re-applies.
func (a *StatsAggregator) RecomputeJournalStats(ctx context.Context, userID uuid.UUID, entryText string, entryAt *time.Time) (*stats.JournalSnapshot, error) {
	at := a.clock.Now()
	if entryAt != nil {
		at = *entryAt
	}
	at = at.In(a.loc)

	facts := stats.EntryFacts{
		WordCount:      utils.CountWords(entryText),
		WrittenBefore7: at.Hour() < 7,
		WrittenAfter10: at.Hour() >= 22,
	}

	windows, err := a.countWindows(ctx, userID, at)
	if err != nil {
		return nil, err
	}
	facts.EntriesToday = windows.today

	for attempt := 1; attempt <= maxStatsAttempts; attempt++ {
		prev, err := a.store.GetUserStats(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user stats: %w", err)
		}

		next := stats.UserStats{UserID: userID}
		var prevUpdatedAt *time.Time
		if prev != nil {
			next = *prev
			updatedAt := prev.UpdatedAt
			prevUpdatedAt = &updatedAt
		}

		applyJournalEntry(&next, at, facts.WordCount, a.loc)
		next.EntriesThisWeek = windows.week
		next.EntriesThisMonth = windows.month
		next.UpdatedAt = a.clock.Now()

		saved, err := a.store.SaveUserStats(ctx, &next, prevUpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to save user stats: %w", err)
		}
		if saved {
			return &stats.JournalSnapshot{Stats: next, Entry: facts}, nil
		}

		log.Printf("RecomputeJournalStats: concurrent update for user %s, retrying (attempt %d)", userID, attempt)
	}

	return nil, ErrStatsContention
}

type entryWindows struct {
	week  int
	month int
	today int
}

// countWindows counts entries from source rather than incrementing stored
// values. Week and month are anchored on the clock, today on the entry.
func (a *StatsAggregator) countWindows(ctx context.Context, userID uuid.UUID, entryAt time.Time) (entryWindows, error) {
	now := a.clock.Now()
	weekStart := utils.StartOfWeek(now, a.loc)
	monthStart := utils.StartOfMonth(now, a.loc)
	dayStart, dayEnd := utils.DayBounds(entryAt, a.loc)

	var w entryWindows
	var err error

	w.week, err = a.store.Count(ctx, CountFilter{Source: SourceJournalEntries, UserID: userID, From: &weekStart})
	if err != nil {
		return w, fmt.Errorf("failed to count entries this week: %w", err)
	}
	w.month, err = a.store.Count(ctx, CountFilter{Source: SourceJournalEntries, UserID: userID, From: &monthStart})
	if err != nil {
		return w, fmt.Errorf("failed to count entries this month: %w", err)
	}
	w.today, err = a.store.Count(ctx, CountFilter{Source: SourceJournalEntries, UserID: userID, From: &dayStart, To: &dayEnd})
	if err != nil {
		return w, fmt.Errorf("failed to count entries today: %w", err)
	}
	return w, nil
}

// applyJournalEntry mutates s for one entry written at at.
//
// Streak: same date keeps it, the next date extends it, any other gap
// restarts it at 1. An entry dated before last_entry_date leaves the streak
// and last_entry_date alone; the other counters still move.
func applyJournalEntry(s *stats.UserStats, at time.Time, words int, loc *time.Location) {
	s.TotalEntries++
	s.TotalWords += words

	entryDate := utils.DateOnly(at, loc)

	if s.LastEntryDate == nil {
		s.CurrentStreak = 1
		s.LastEntryDate = &entryDate
	} else {
		last := utils.CivilDate(*s.LastEntryDate, loc)
		switch {
		case entryDate.Equal(last):
		case entryDate.Equal(last.AddDate(0, 0, 1)):
			s.CurrentStreak++
			s.LastEntryDate = &entryDate
		case entryDate.Before(last):
		default:
			s.CurrentStreak = 1
			s.LastEntryDate = &entryDate
		}
	}

	// A row with a date but no streak is treated as a fresh start.
	if s.CurrentStreak < 1 {
		s.CurrentStreak = 1
	}
	s.LongestStreak = max(s.LongestStreak, s.CurrentStreak)

	hour := at.In(loc).Hour()
	if hour < 7 {
		s.EntriesBefore7am++
	}
	if hour >= 22 {
		s.EntriesAfter10pm++
	}
	if hour < 6 {
		s.EntriesAfterMidnight++
	}
}
