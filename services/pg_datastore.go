package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/N1femi/Thriva/internal/badge"
	"github.com/N1femi/Thriva/internal/journal"
	"github.com/N1femi/Thriva/internal/stats"
)

// PgDatastore is the Postgres implementation of Datastore.
type PgDatastore struct {
	db *pgxpool.Pool
}

func NewPgDatastore(db *pgxpool.Pool) *PgDatastore {
	return &PgDatastore{db: db}
}

const userStatsColumns = `user_id, total_entries, total_words, current_streak, longest_streak, last_entry_date,
	entries_this_week, entries_this_month, entries_before_7am, entries_after_10pm, entries_after_midnight, updated_at`

func (s *PgDatastore) GetUserStats(ctx context.Context, userID uuid.UUID) (*stats.UserStats, error) {
	query := `SELECT ` + userStatsColumns + ` FROM user_stats WHERE user_id = $1`

	st := &stats.UserStats{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&st.UserID,
		&st.TotalEntries,
		&st.TotalWords,
		&st.CurrentStreak,
		&st.LongestStreak,
		&st.LastEntryDate,
		&st.EntriesThisWeek,
		&st.EntriesThisMonth,
		&st.EntriesBefore7am,
		&st.EntriesAfter10pm,
		&st.EntriesAfterMidnight,
		&st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return st, nil
}

func (s *PgDatastore) SaveUserStats(ctx context.Context, next *stats.UserStats, prevUpdatedAt *time.Time) (bool, error) {
	var lastEntryDate *string
	if next.LastEntryDate != nil {
		d := next.LastEntryDate.Format("2006-01-02")
		lastEntryDate = &d
	}

	args := []any{
		next.UserID,
		next.TotalEntries,
		next.TotalWords,
		next.CurrentStreak,
		next.LongestStreak,
		lastEntryDate,
		next.EntriesThisWeek,
		next.EntriesThisMonth,
		next.EntriesBefore7am,
		next.EntriesAfter10pm,
		next.EntriesAfterMidnight,
		next.UpdatedAt,
	}

	var query string
	if prevUpdatedAt == nil {
		query = `
		INSERT INTO user_stats (` + userStatsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO NOTHING
		`
	} else {
		query = `
		UPDATE user_stats SET
			total_entries = $2,
			total_words = $3,
			current_streak = $4,
			longest_streak = $5,
			last_entry_date = $6::date,
			entries_this_week = $7,
			entries_this_month = $8,
			entries_before_7am = $9,
			entries_after_10pm = $10,
			entries_after_midnight = $11,
			updated_at = $12
		WHERE user_id = $1 AND updated_at = $13
		`
		args = append(args, *prevUpdatedAt)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to save user stats: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PgDatastore) ListBadges(ctx context.Context) ([]badge.Badge, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, description, icon_name, requirement FROM badges ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badges: %w", err)
	}
	defer rows.Close()

	var badges []badge.Badge
	for rows.Next() {
		var b badge.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Requirement); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

const progressColumns = `user_id, badge_id, progress, earned, earned_at, created_at, updated_at`

func scanProgress(row pgx.Row) (*badge.UserBadgeProgress, error) {
	p := &badge.UserBadgeProgress{}
	err := row.Scan(&p.UserID, &p.BadgeID, &p.Progress, &p.Earned, &p.EarnedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *PgDatastore) GetBadgeProgress(ctx context.Context, userID, badgeID uuid.UUID) (*badge.UserBadgeProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_badges WHERE user_id = $1 AND badge_id = $2`

	p, err := scanProgress(s.db.QueryRow(ctx, query, userID, badgeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge progress: %w", err)
	}
	return p, nil
}

// UpsertBadgeProgress keeps the monotonic guard inside the statement so two
// concurrent writers cannot lower progress, clear earned or move earned_at.
func (s *PgDatastore) UpsertBadgeProgress(ctx context.Context, u badge.ProgressUpdate) (*badge.UserBadgeProgress, error) {
	query := `
	INSERT INTO user_badges (user_id, badge_id, progress, earned, earned_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4::boolean, CASE WHEN $4::boolean THEN $5::timestamptz END, $5, $5)
	ON CONFLICT (user_id, badge_id)
	DO UPDATE SET
		progress = EXCLUDED.progress,
		earned = user_badges.earned OR EXCLUDED.earned,
		earned_at = COALESCE(user_badges.earned_at, EXCLUDED.earned_at),
		updated_at = EXCLUDED.updated_at
	WHERE user_badges.progress < EXCLUDED.progress
	RETURNING ` + progressColumns

	p, err := scanProgress(s.db.QueryRow(ctx, query, u.UserID, u.BadgeID, u.Progress, u.Earned, u.At))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to upsert badge progress: %w", err)
	}
	return p, nil
}

func (s *PgDatastore) ListBadgeProgress(ctx context.Context, userID uuid.UUID) ([]badge.UserBadgeProgress, error) {
	rows, err := s.db.Query(ctx, `SELECT `+progressColumns+` FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badge progress: %w", err)
	}
	defer rows.Close()

	var out []badge.UserBadgeProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge progress: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// countSources maps each Source to its base count query (user bound to $1)
// and the timestamp column time windows apply to.
var countSources = map[Source]struct {
	query     string
	timestamp string
}{
	SourceJournalEntries:  {`SELECT COUNT(*) FROM entries WHERE user_id = $1`, "created_at"},
	SourceCalendarEvents:  {`SELECT COUNT(*) FROM events WHERE user_id = $1`, "created_at"},
	SourceFriends:         {`SELECT COUNT(*) FROM "Friends" WHERE (profile_one = $1 OR profile_two = $1)`, "created_at"},
	SourceChats:           {`SELECT COUNT(*) FROM chats WHERE user_id = $1`, "created_at"},
	SourceChatMessages:    {`SELECT COUNT(*) FROM messages m JOIN chats c ON c.id = m.chat_id WHERE c.user_id = $1`, "m.created_at"},
	SourceFocusSelections: {`SELECT COUNT(*) FROM user_daily_focus WHERE user_id = $1`, "created_at"},
}

func (s *PgDatastore) Count(ctx context.Context, f CountFilter) (int, error) {
	src, ok := countSources[f.Source]
	if !ok {
		return 0, fmt.Errorf("unknown count source %q", f.Source)
	}

	var sb strings.Builder
	sb.WriteString(src.query)
	args := []any{f.UserID}

	if f.From != nil {
		args = append(args, *f.From)
		fmt.Fprintf(&sb, " AND %s >= $%d", src.timestamp, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		fmt.Fprintf(&sb, " AND %s < $%d", src.timestamp, len(args))
	}
	if f.Completed != nil {
		if f.Source != SourceFocusSelections {
			return 0, fmt.Errorf("completed filter is not supported for %q", f.Source)
		}
		args = append(args, *f.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}

	var count int
	if err := s.db.QueryRow(ctx, sb.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", f.Source, err)
	}
	return count, nil
}

// DistinctEventDates buckets start times in Go so loc may be any zone,
// including the process local zone that Postgres has no name for.
func (s *PgDatastore) DistinctEventDates(ctx context.Context, userID uuid.UUID, loc *time.Location) ([]time.Time, error) {
	rows, err := s.db.Query(ctx, `SELECT start_time FROM events WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event start times: %w", err)
	}
	defer rows.Close()

	seen := make(map[time.Time]struct{})
	for rows.Next() {
		var start time.Time
		if err := rows.Scan(&start); err != nil {
			return nil, fmt.Errorf("failed to scan event start time: %w", err)
		}
		t := start.In(loc)
		seen[time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

func (s *PgDatastore) LatestJournalEntry(ctx context.Context, userID uuid.UUID) (*journal.Entry, error) {
	query := `
	SELECT id, user_id, title, text, created_at
	FROM entries
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT 1
	`

	e := &journal.Entry{}
	err := s.db.QueryRow(ctx, query, userID).Scan(&e.ID, &e.UserID, &e.Title, &e.Text, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest entry: %w", err)
	}
	return e, nil
}

func (s *PgDatastore) ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `
	SELECT user_id FROM entries
	UNION SELECT user_id FROM events
	UNION SELECT profile_one FROM "Friends"
	UNION SELECT profile_two FROM "Friends"
	UNION SELECT user_id FROM chats
	UNION SELECT user_id FROM user_daily_focus
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
