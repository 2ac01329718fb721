package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/N1femi/Thriva/internal/badge"
	"github.com/N1femi/Thriva/internal/stats"
	"github.com/N1femi/Thriva/utils"
)

type BadgeService struct {
	store   Datastore
	clock   Clock
	loc     *time.Location
	catalog *BadgeCatalog
	stats   *StatsAggregator
}

func NewBadgeService(store Datastore, clock Clock, loc *time.Location, catalogRefresh time.Duration) *BadgeService {
	return &BadgeService{
		store:   store,
		clock:   clock,
		loc:     loc,
		catalog: NewBadgeCatalog(store, clock, catalogRefresh),
		stats:   NewStatsAggregator(store, clock, loc),
	}
}

// UpdateBadgeProgress merges progress into the user's row for badgeName.
// Unknown badges and values that do not raise stored progress are no-ops.
// earned flips once progress reaches threshold and never flips back.
func (s *BadgeService) UpdateBadgeProgress(ctx context.Context, userID uuid.UUID, badgeName string, progress, threshold int) error {
	b, ok, err := s.catalog.Lookup(ctx, badgeName)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	current, err := s.store.GetBadgeProgress(ctx, userID, b.ID)
	if err != nil {
		return fmt.Errorf("failed to load progress for %q: %w", badgeName, err)
	}

	stored := 0
	wasEarned := false
	if current != nil {
		stored = current.Progress
		wasEarned = current.Earned
	}
	if progress <= stored {
		return nil
	}

	// Postgres keeps microseconds; truncating lets earned_at be compared below.
	now := s.clock.Now().Truncate(time.Microsecond)
	row, err := s.store.UpsertBadgeProgress(ctx, badge.ProgressUpdate{
		UserID:   userID,
		BadgeID:  b.ID,
		Progress: progress,
		Earned:   progress >= threshold,
		At:       now,
	})
	if err != nil {
		return fmt.Errorf("failed to save progress for %q: %w", badgeName, err)
	}

	// row is nil when a concurrent writer already stored an equal or higher value.
	if row != nil && row.Earned && !wasEarned && row.EarnedAt != nil && row.EarnedAt.Equal(now) {
		badgesAwarded.WithLabelValues(badgeName).Inc()
		log.Printf("UpdateBadgeProgress: user %s earned %q", userID, badgeName)
	}
	return nil
}

// recomputeDomain drives the updater once per rule of domain, clamping each
// metric to its rule's threshold.
func (s *BadgeService) recomputeDomain(ctx context.Context, domain badge.Domain, userID uuid.UUID, metrics map[badge.Metric]int) error {
	for _, rule := range badge.RulesFor(domain) {
		value, ok := metrics[rule.Metric]
		if !ok {
			return fmt.Errorf("no %s metric gathered for %q", rule.Metric, rule.Badge)
		}
		if err := s.UpdateBadgeProgress(ctx, userID, rule.Badge, rule.Clamp(value), rule.Threshold); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeJournalBadges folds the entry into the user's stats and updates
// every journal badge. entryAt defaults to now.
func (s *BadgeService) RecomputeJournalBadges(ctx context.Context, userID uuid.UUID, entryText string, entryAt *time.Time) (err error) {
	defer func(start time.Time) { observeRecompute(badge.DomainJournal, start, err) }(time.Now())

	snapshot, err := s.stats.RecomputeJournalStats(ctx, userID, entryText, entryAt)
	if err != nil {
		return err
	}
	return s.recomputeDomain(ctx, badge.DomainJournal, userID, journalMetrics(snapshot))
}

func (s *BadgeService) RecomputeCalendarBadges(ctx context.Context, userID uuid.UUID) (err error) {
	defer func(start time.Time) { observeRecompute(badge.DomainCalendar, start, err) }(time.Now())

	total, err := s.store.Count(ctx, CountFilter{Source: SourceCalendarEvents, UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}
	days, err := s.store.DistinctEventDates(ctx, userID, s.loc)
	if err != nil {
		return fmt.Errorf("failed to load event days: %w", err)
	}

	return s.recomputeDomain(ctx, badge.DomainCalendar, userID, map[badge.Metric]int{
		badge.MetricTotalEvents:       total,
		badge.MetricDistinctEventDays: len(days),
	})
}

func (s *BadgeService) RecomputeFriendsBadges(ctx context.Context, userID uuid.UUID) (err error) {
	defer func(start time.Time) { observeRecompute(badge.DomainFriends, start, err) }(time.Now())

	total, err := s.store.Count(ctx, CountFilter{Source: SourceFriends, UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to count friends: %w", err)
	}

	return s.recomputeDomain(ctx, badge.DomainFriends, userID, map[badge.Metric]int{
		badge.MetricTotalFriends: total,
	})
}

func (s *BadgeService) RecomputeChatBadges(ctx context.Context, userID uuid.UUID) (err error) {
	defer func(start time.Time) { observeRecompute(badge.DomainChat, start, err) }(time.Now())

	chats, err := s.store.Count(ctx, CountFilter{Source: SourceChats, UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to count chats: %w", err)
	}
	messages, err := s.store.Count(ctx, CountFilter{Source: SourceChatMessages, UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to count chat messages: %w", err)
	}

	return s.recomputeDomain(ctx, badge.DomainChat, userID, map[badge.Metric]int{
		badge.MetricTotalChats:    chats,
		badge.MetricTotalMessages: messages,
	})
}

func (s *BadgeService) RecomputeDailyFocusBadges(ctx context.Context, userID uuid.UUID) (err error) {
	defer func(start time.Time) { observeRecompute(badge.DomainDailyFocus, start, err) }(time.Now())

	completed := true
	total, err := s.store.Count(ctx, CountFilter{Source: SourceFocusSelections, UserID: userID, Completed: &completed})
	if err != nil {
		return fmt.Errorf("failed to count completed focus items: %w", err)
	}

	return s.recomputeDomain(ctx, badge.DomainDailyFocus, userID, map[badge.Metric]int{
		badge.MetricCompletedFocus: total,
	})
}

// RecomputeAllBadges re-evaluates every domain for the user. Journal badges
// are rebuilt from the stored stats and the latest entry without applying
// that entry again, so repeated runs leave the counters alone. A failing
// domain is logged and skipped; the joined error lists every failure.
func (s *BadgeService) RecomputeAllBadges(ctx context.Context, userID uuid.UUID) error {
	steps := []struct {
		domain badge.Domain
		run    func(context.Context, uuid.UUID) error
	}{
		{badge.DomainJournal, s.refreshJournalBadges},
		{badge.DomainCalendar, s.RecomputeCalendarBadges},
		{badge.DomainFriends, s.RecomputeFriendsBadges},
		{badge.DomainChat, s.RecomputeChatBadges},
		{badge.DomainDailyFocus, s.RecomputeDailyFocusBadges},
	}

	var errs []error
	for _, step := range steps {
		if err := step.run(ctx, userID); err != nil {
			log.Printf("RecomputeAllBadges: %s badges failed for user %s: %v", step.domain, userID, err)
			errs = append(errs, fmt.Errorf("%s: %w", step.domain, err))
		}
	}
	return errors.Join(errs...)
}

func (s *BadgeService) refreshJournalBadges(ctx context.Context, userID uuid.UUID) (err error) {
	defer func(start time.Time) { observeRecompute(badge.DomainJournal, start, err) }(time.Now())

	entry, err := s.store.LatestJournalEntry(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load latest entry: %w", err)
	}
	if entry == nil {
		return nil
	}

	current, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user stats: %w", err)
	}
	snapshot := stats.JournalSnapshot{Stats: stats.UserStats{UserID: userID}}
	if current != nil {
		snapshot.Stats = *current
	}

	at := entry.CreatedAt.In(s.loc)
	snapshot.Entry = stats.EntryFacts{
		WordCount:      utils.CountWords(entry.Text),
		WrittenBefore7: at.Hour() < 7,
		WrittenAfter10: at.Hour() >= 22,
	}

	windows, err := s.stats.countWindows(ctx, userID, at)
	if err != nil {
		return err
	}
	snapshot.Stats.EntriesThisWeek = windows.week
	snapshot.Stats.EntriesThisMonth = windows.month
	snapshot.Entry.EntriesToday = windows.today

	return s.recomputeDomain(ctx, badge.DomainJournal, userID, journalMetrics(&snapshot))
}

func journalMetrics(snap *stats.JournalSnapshot) map[badge.Metric]int {
	st, e := snap.Stats, snap.Entry
	return map[badge.Metric]int{
		badge.MetricTotalEntries:         st.TotalEntries,
		badge.MetricEntryWords:           e.WordCount,
		badge.MetricTotalWords:           st.TotalWords,
		badge.MetricCurrentStreak:        st.CurrentStreak,
		badge.MetricWrittenBefore7am:     boolMetric(e.WrittenBefore7),
		badge.MetricWrittenAfter10pm:     boolMetric(e.WrittenAfter10),
		badge.MetricEntriesBefore7am:     st.EntriesBefore7am,
		badge.MetricEntriesAfterMidnight: st.EntriesAfterMidnight,
		badge.MetricEntriesThisWeek:      st.EntriesThisWeek,
		badge.MetricEntriesThisMonth:     st.EntriesThisMonth,
		badge.MetricEntriesToday:         e.EntriesToday,
	}
}

func boolMetric(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetBadgesWithStatus lists the catalog merged with the user's progress.
// Earned badges come first, then by threshold and name.
func (s *BadgeService) GetBadgesWithStatus(ctx context.Context, userID uuid.UUID) ([]badge.BadgeWithStatus, error) {
	all, err := s.catalog.All(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ListBadgeProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badge progress: %w", err)
	}
	progress := make(map[uuid.UUID]badge.UserBadgeProgress, len(rows))
	for _, p := range rows {
		progress[p.BadgeID] = p
	}

	out := make([]badge.BadgeWithStatus, 0, len(all))
	for _, b := range all {
		item := badge.BadgeWithStatus{Badge: b}
		if rule, ok := badge.RuleByBadge(b.Name); ok {
			item.Domain = rule.Domain
			item.Threshold = rule.Threshold
		}
		if p, ok := progress[b.ID]; ok {
			item.Progress = p.Progress
			item.Earned = p.Earned
			item.EarnedAt = p.EarnedAt
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Earned != out[j].Earned {
			return out[i].Earned
		}
		if out[i].Threshold != out[j].Threshold {
			return out[i].Threshold < out[j].Threshold
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetUserStats returns the stored stats, or a zero row for a user who has
// not written yet.
func (s *BadgeService) GetUserStats(ctx context.Context, userID uuid.UUID) (*stats.UserStats, error) {
	st, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	if st == nil {
		st = &stats.UserStats{UserID: userID}
	}
	return st, nil
}
