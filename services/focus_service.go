package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/N1femi/Thriva/internal/apperror"
	"github.com/N1femi/Thriva/internal/focus"
	"github.com/N1femi/Thriva/utils"
)

type FocusService struct {
	db    *pgxpool.Pool
	clock Clock
	loc   *time.Location
}

func NewFocusService(db *pgxpool.Pool, clock Clock, loc *time.Location) *FocusService {
	return &FocusService{db: db, clock: clock, loc: loc}
}

// Today returns the current civil date in the app time zone.
func (s *FocusService) Today() string {
	return utils.DateOnly(s.clock.Now(), s.loc).Format(time.DateOnly)
}

func (s *FocusService) GetDay(ctx context.Context, userID uuid.UUID, date string) (*focus.Day, error) {
	if date == "" {
		date = s.Today()
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("date %q: %w", date, apperror.ErrInvalidInput)
	}

	day := &focus.Day{Options: []focus.Option{}, Selections: []focus.Selection{}}

	rows, err := s.db.Query(ctx, `SELECT id, title, COALESCE(description, '') FROM daily_focus ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch focus options: %w", err)
	}
	for rows.Next() {
		var o focus.Option
		if err := rows.Scan(&o.ID, &o.Title, &o.Description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan focus option: %w", err)
		}
		day.Options = append(day.Options, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read focus options: %w", err)
	}

	selQuery := `
	SELECT id, user_id, focus_id, selected_date::text, completed, created_at
	FROM user_daily_focus
	WHERE user_id = $1 AND selected_date = $2::date
	ORDER BY created_at ASC
	`
	rows, err = s.db.Query(ctx, selQuery, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch focus selections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		day.Selections = append(day.Selections, *sel)
	}
	return day, rows.Err()
}

// Select records the user's pick for a date. Picking the same focus on the
// same date again updates the existing row.
func (s *FocusService) Select(ctx context.Context, userID uuid.UUID, req *focus.SelectRequest) (*focus.Selection, error) {
	focusID, err := uuid.Parse(req.FocusID)
	if err != nil {
		return nil, fmt.Errorf("focus_id: %w", apperror.ErrInvalidInput)
	}
	date := req.SelectedDate
	if date == "" {
		date = s.Today()
	}
	completed := false
	if req.Completed != nil {
		completed = *req.Completed
	}

	query := `
	INSERT INTO user_daily_focus (id, user_id, focus_id, selected_date, completed, created_at)
	VALUES ($1, $2, $3, $4::date, $5, NOW())
	ON CONFLICT (user_id, focus_id, selected_date)
	DO UPDATE SET completed = EXCLUDED.completed
	RETURNING id, user_id, focus_id, selected_date::text, completed, created_at
	`

	sel, err := scanSelection(s.db.QueryRow(ctx, query, uuid.New(), userID, focusID, date, completed))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("focus option %s: %w", focusID, apperror.ErrNotFound)
		}
		log.Printf("Select: Failed to upsert focus selection for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to save focus selection: %w", err)
	}
	return sel, nil
}

func (s *FocusService) SetCompleted(ctx context.Context, userID uuid.UUID, req *focus.CompleteRequest) (*focus.Selection, error) {
	selectionID, err := uuid.Parse(req.SelectionID)
	if err != nil {
		return nil, fmt.Errorf("selection_id: %w", apperror.ErrInvalidInput)
	}

	query := `
	UPDATE user_daily_focus
	SET completed = $3
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, focus_id, selected_date::text, completed, created_at
	`

	sel, err := scanSelection(s.db.QueryRow(ctx, query, selectionID, userID, *req.Completed))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("selection %s: %w", selectionID, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update focus selection: %w", err)
	}
	return sel, nil
}

func scanSelection(row pgx.Row) (*focus.Selection, error) {
	sel := &focus.Selection{}
	if err := row.Scan(&sel.ID, &sel.UserID, &sel.FocusID, &sel.SelectedDate, &sel.Completed, &sel.CreatedAt); err != nil {
		return nil, err
	}
	return sel, nil
}
