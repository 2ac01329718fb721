package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N1femi/Thriva/internal/stats"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestApplyJournalEntry_FirstEntry(t *testing.T) {
	s := stats.UserStats{}
	applyJournalEntry(&s, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 10, time.UTC)

	assert.Equal(t, 1, s.TotalEntries)
	assert.Equal(t, 10, s.TotalWords)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
	require.NotNil(t, s.LastEntryDate)
	assert.True(t, s.LastEntryDate.Equal(*day(2025, 3, 10)))
}

func TestApplyJournalEntry_Streak(t *testing.T) {
	tests := []struct {
		name        string
		at          time.Time
		wantStreak  int
		wantLongest int
		wantLast    *time.Time
	}{
		{"next day extends", time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC), 4, 5, day(2025, 3, 11)},
		{"same day keeps", time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), 3, 5, day(2025, 3, 10)},
		{"gap restarts", time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC), 1, 5, day(2025, 3, 13)},
		{"earlier date leaves streak alone", time.Date(2025, 3, 8, 8, 0, 0, 0, time.UTC), 3, 5, day(2025, 3, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stats.UserStats{
				TotalEntries:  12,
				TotalWords:    300,
				CurrentStreak: 3,
				LongestStreak: 5,
				LastEntryDate: day(2025, 3, 10),
			}
			applyJournalEntry(&s, tt.at, 20, time.UTC)

			assert.Equal(t, 13, s.TotalEntries)
			assert.Equal(t, 320, s.TotalWords)
			assert.Equal(t, tt.wantStreak, s.CurrentStreak)
			assert.Equal(t, tt.wantLongest, s.LongestStreak)
			assert.True(t, s.LastEntryDate.Equal(*tt.wantLast), "last entry date = %v", s.LastEntryDate)
		})
	}
}

func TestApplyJournalEntry_LongestFollowsCurrent(t *testing.T) {
	s := stats.UserStats{CurrentStreak: 6, LongestStreak: 6, LastEntryDate: day(2025, 3, 10)}
	applyJournalEntry(&s, time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC), 1, time.UTC)

	assert.Equal(t, 7, s.CurrentStreak)
	assert.Equal(t, 7, s.LongestStreak)
}

func TestApplyJournalEntry_HourBuckets(t *testing.T) {
	tests := []struct {
		hour, minute                 int
		before7, after10, afterMidnt int
	}{
		{0, 15, 1, 0, 1},
		{5, 59, 1, 0, 1},
		{6, 30, 1, 0, 0},
		{7, 0, 0, 0, 0},
		{21, 59, 0, 0, 0},
		{22, 0, 0, 1, 0},
		{23, 45, 0, 1, 0},
	}

	for _, tt := range tests {
		s := stats.UserStats{}
		applyJournalEntry(&s, time.Date(2025, 3, 10, tt.hour, tt.minute, 0, 0, time.UTC), 1, time.UTC)
		assert.Equal(t, tt.before7, s.EntriesBefore7am, "%02d:%02d before 7", tt.hour, tt.minute)
		assert.Equal(t, tt.after10, s.EntriesAfter10pm, "%02d:%02d after 10", tt.hour, tt.minute)
		assert.Equal(t, tt.afterMidnt, s.EntriesAfterMidnight, "%02d:%02d after midnight", tt.hour, tt.minute)
	}
}

func TestApplyJournalEntry_UsesLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	s := stats.UserStats{CurrentStreak: 2, LongestStreak: 2, LastEntryDate: day(2025, 3, 9)}

	// 03:00 UTC on the 11th is 22:00 on the 10th in EST.
	applyJournalEntry(&s, time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC), 1, est)

	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 1, s.EntriesAfter10pm)
	assert.Equal(t, 0, s.EntriesBefore7am)
	assert.Equal(t, 10, s.LastEntryDate.Day())
}

func TestRecomputeJournalStats_NewUser(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 3, 12, 6, 30, 0, 0, time.UTC)
	clock := newFixedClock(now)
	agg := NewStatsAggregator(store, clock, time.UTC)
	userID := uuid.New()

	store.addEntry(userID, "one two three", now)

	snap, err := agg.RecomputeJournalStats(context.Background(), userID, "one two three", &now)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Stats.TotalEntries)
	assert.Equal(t, 3, snap.Stats.TotalWords)
	assert.Equal(t, 1, snap.Stats.CurrentStreak)
	assert.Equal(t, 1, snap.Stats.EntriesThisWeek)
	assert.Equal(t, 1, snap.Stats.EntriesThisMonth)
	assert.Equal(t, 3, snap.Entry.WordCount)
	assert.True(t, snap.Entry.WrittenBefore7)
	assert.False(t, snap.Entry.WrittenAfter10)
	assert.Equal(t, 1, snap.Entry.EntriesToday)

	stored, err := store.GetUserStats(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.TotalEntries)
}

func TestRecomputeJournalStats_DefaultsToNow(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 3, 12, 23, 10, 0, 0, time.UTC)
	agg := NewStatsAggregator(store, newFixedClock(now), time.UTC)

	snap, err := agg.RecomputeJournalStats(context.Background(), uuid.New(), "late", nil)
	require.NoError(t, err)

	assert.True(t, snap.Entry.WrittenAfter10)
	assert.True(t, snap.Stats.LastEntryDate.Equal(*day(2025, 3, 12)))
}

func TestRecomputeJournalStats_Windows(t *testing.T) {
	store := newMemStore()
	// Wednesday
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	agg := NewStatsAggregator(store, newFixedClock(now), time.UTC)
	userID := uuid.New()

	store.addEntry(userID, "feb", time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC))
	store.addEntry(userID, "last saturday", time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC))
	store.addEntry(userID, "sunday", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	store.addEntry(userID, "tuesday", time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC))
	store.addEntry(userID, "today one", time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC))
	store.addEntry(userID, "today two", now)
	store.addEntry(uuid.New(), "someone else", now)

	snap, err := agg.RecomputeJournalStats(context.Background(), userID, "today two", &now)
	require.NoError(t, err)

	assert.Equal(t, 4, snap.Stats.EntriesThisWeek)
	assert.Equal(t, 5, snap.Stats.EntriesThisMonth)
	assert.Equal(t, 2, snap.Entry.EntriesToday)
}

func TestRecomputeJournalStats_RetriesOnConcurrentUpdate(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	agg := NewStatsAggregator(store, newFixedClock(now), time.UTC)
	userID := uuid.New()

	store.stats[userID] = stats.UserStats{
		UserID:        userID,
		TotalEntries:  4,
		CurrentStreak: 1,
		LongestStreak: 1,
		LastEntryDate: day(2025, 3, 11),
		UpdatedAt:     now.Add(-time.Hour),
	}

	// Another writer lands twice between our read and our write.
	bumps := 0
	store.beforeSave = func() {
		if bumps == 2 {
			return
		}
		bumps++
		store.mu.Lock()
		st := store.stats[userID]
		st.TotalEntries++
		st.UpdatedAt = st.UpdatedAt.Add(time.Second)
		store.stats[userID] = st
		store.mu.Unlock()
	}

	snap, err := agg.RecomputeJournalStats(context.Background(), userID, "x", &now)
	require.NoError(t, err)

	assert.Equal(t, 3, store.saves)
	assert.Equal(t, 7, snap.Stats.TotalEntries, "applied on top of both concurrent writes")
	assert.Equal(t, 2, snap.Stats.CurrentStreak)
}

func TestRecomputeJournalStats_ConcurrentFirstWrite(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	agg := NewStatsAggregator(store, newFixedClock(now), time.UTC)
	userID := uuid.New()

	inserted := false
	store.beforeSave = func() {
		if inserted {
			return
		}
		inserted = true
		store.mu.Lock()
		store.stats[userID] = stats.UserStats{
			UserID:        userID,
			TotalEntries:  1,
			CurrentStreak: 1,
			LongestStreak: 1,
			LastEntryDate: day(2025, 3, 12),
			UpdatedAt:     now.Add(-time.Minute),
		}
		store.mu.Unlock()
	}

	snap, err := agg.RecomputeJournalStats(context.Background(), userID, "x", &now)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Stats.TotalEntries)
	assert.Equal(t, 1, snap.Stats.CurrentStreak)
}

func TestRecomputeJournalStats_GivesUpAfterRepeatedContention(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	agg := NewStatsAggregator(store, newFixedClock(now), time.UTC)
	userID := uuid.New()

	store.stats[userID] = stats.UserStats{UserID: userID, UpdatedAt: now.Add(-time.Hour)}
	store.beforeSave = func() {
		store.mu.Lock()
		st := store.stats[userID]
		st.UpdatedAt = st.UpdatedAt.Add(time.Second)
		store.stats[userID] = st
		store.mu.Unlock()
	}

	_, err := agg.RecomputeJournalStats(context.Background(), userID, "x", &now)
	assert.ErrorIs(t, err, ErrStatsContention)
	assert.Equal(t, maxStatsAttempts, store.saves)
}
