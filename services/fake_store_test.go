package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/N1femi/Thriva/internal/badge"
	"github.com/N1femi/Thriva/internal/journal"
	"github.com/N1femi/Thriva/internal/stats"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// activity is one row of a counted source.
type activity struct {
	source    Source
	userID    uuid.UUID
	otherID   uuid.UUID
	createdAt time.Time
	startTime time.Time
	completed bool
	text      string
}

type progressKey struct {
	user  uuid.UUID
	badge uuid.UUID
}

// memStore is an in-memory Datastore with the same conditional-write rules
// as PgDatastore.
type memStore struct {
	mu       sync.Mutex
	stats    map[uuid.UUID]stats.UserStats
	badges   []badge.Badge
	progress map[progressKey]badge.UserBadgeProgress
	rows     []activity

	countErr   map[Source]error
	beforeSave func()
	saves      int
	upserts    int
}

func newMemStore() *memStore {
	s := &memStore{
		stats:    make(map[uuid.UUID]stats.UserStats),
		progress: make(map[progressKey]badge.UserBadgeProgress),
		countErr: make(map[Source]error),
	}
	for _, r := range badge.Rules {
		s.badges = append(s.badges, badge.Badge{ID: uuid.New(), Name: r.Badge})
	}
	return s
}

func (s *memStore) badgeID(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.badges {
		if b.Name == name {
			return b.ID
		}
	}
	return uuid.Nil
}

func (s *memStore) addBadge(name string) {
	s.mu.Lock()
	s.badges = append(s.badges, badge.Badge{ID: uuid.New(), Name: name})
	s.mu.Unlock()
}

func (s *memStore) add(a activity) {
	s.mu.Lock()
	s.rows = append(s.rows, a)
	s.mu.Unlock()
}

func (s *memStore) addEntry(userID uuid.UUID, text string, at time.Time) {
	s.add(activity{source: SourceJournalEntries, userID: userID, createdAt: at, text: text})
}

func (s *memStore) addFriend(userID, friendID uuid.UUID, at time.Time) {
	s.add(activity{source: SourceFriends, userID: userID, otherID: friendID, createdAt: at})
}

func (s *memStore) progressOf(userID uuid.UUID, name string) (badge.UserBadgeProgress, bool) {
	id := s.badgeID(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[progressKey{userID, id}]
	return p, ok
}

func (s *memStore) GetUserStats(ctx context.Context, userID uuid.UUID) (*stats.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[userID]
	if !ok {
		return nil, nil
	}
	if st.LastEntryDate != nil {
		d := *st.LastEntryDate
		st.LastEntryDate = &d
	}
	return &st, nil
}

func (s *memStore) SaveUserStats(ctx context.Context, next *stats.UserStats, prevUpdatedAt *time.Time) (bool, error) {
	if s.beforeSave != nil {
		s.beforeSave()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++

	current, exists := s.stats[next.UserID]
	switch {
	case prevUpdatedAt == nil && exists:
		return false, nil
	case prevUpdatedAt != nil && (!exists || !current.UpdatedAt.Equal(*prevUpdatedAt)):
		return false, nil
	}

	row := *next
	if row.LastEntryDate != nil {
		// DATE columns come back as UTC midnight.
		y, m, d := row.LastEntryDate.Date()
		utc := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		row.LastEntryDate = &utc
	}
	s.stats[next.UserID] = row
	return true, nil
}

func (s *memStore) ListBadges(ctx context.Context) ([]badge.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]badge.Badge(nil), s.badges...), nil
}

func (s *memStore) GetBadgeProgress(ctx context.Context, userID, badgeID uuid.UUID) (*badge.UserBadgeProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[progressKey{userID, badgeID}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memStore) UpsertBadgeProgress(ctx context.Context, u badge.ProgressUpdate) (*badge.UserBadgeProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{u.UserID, u.BadgeID}
	p, exists := s.progress[key]
	if exists && p.Progress >= u.Progress {
		return nil, nil
	}
	s.upserts++

	if !exists {
		p = badge.UserBadgeProgress{UserID: u.UserID, BadgeID: u.BadgeID, CreatedAt: u.At}
	}
	p.Progress = u.Progress
	if u.Earned && !p.Earned {
		p.Earned = true
		at := u.At
		p.EarnedAt = &at
	}
	p.UpdatedAt = u.At
	s.progress[key] = p

	out := p
	return &out, nil
}

func (s *memStore) ListBadgeProgress(ctx context.Context, userID uuid.UUID) ([]badge.UserBadgeProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []badge.UserBadgeProgress
	for k, p := range s.progress {
		if k.user == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) Count(ctx context.Context, f CountFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.countErr[f.Source]; err != nil {
		return 0, err
	}

	n := 0
	for _, a := range s.rows {
		if a.source != f.Source {
			continue
		}
		if a.userID != f.UserID && !(f.Source == SourceFriends && a.otherID == f.UserID) {
			continue
		}
		if f.From != nil && a.createdAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !a.createdAt.Before(*f.To) {
			continue
		}
		if f.Completed != nil && a.completed != *f.Completed {
			continue
		}
		n++
	}
	return n, nil
}

func (s *memStore) DistinctEventDates(ctx context.Context, userID uuid.UUID, loc *time.Location) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[time.Time]struct{})
	for _, a := range s.rows {
		if a.source == SourceCalendarEvents && a.userID == userID {
			t := a.startTime.In(loc)
			seen[time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)] = struct{}{}
		}
	}
	var days []time.Time
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

func (s *memStore) LatestJournalEntry(ctx context.Context, userID uuid.UUID) (*journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *journal.Entry
	for _, a := range s.rows {
		if a.source != SourceJournalEntries || a.userID != userID {
			continue
		}
		if latest == nil || a.createdAt.After(latest.CreatedAt) {
			latest = &journal.Entry{ID: uuid.New(), UserID: userID, Text: a.text, CreatedAt: a.createdAt}
		}
	}
	return latest, nil
}

func (s *memStore) ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, a := range s.rows {
		for _, id := range []uuid.UUID{a.userID, a.otherID} {
			if id != uuid.Nil && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}
