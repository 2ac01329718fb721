package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/N1femi/Thriva/internal/apperror"
	"github.com/N1femi/Thriva/internal/calendar"
)

type CalendarService struct {
	db *pgxpool.Pool
}

func NewCalendarService(db *pgxpool.Pool) *CalendarService {
	return &CalendarService{db: db}
}

func (s *CalendarService) GetEvents(ctx context.Context, userID uuid.UUID) ([]calendar.Event, error) {
	query := `
	SELECT id, user_id, title, notes, start_time, end_time, created_at
	FROM events
	WHERE user_id = $1
	ORDER BY start_time ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer rows.Close()

	events := []calendar.Event{}
	for rows.Next() {
		var e calendar.Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Notes, &e.StartTime, &e.EndTime, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *CalendarService) CreateEvent(ctx context.Context, userID uuid.UUID, req *calendar.CreateEventRequest) (*calendar.Event, error) {
	query := `
	INSERT INTO events (id, user_id, title, notes, start_time, end_time, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	RETURNING id, user_id, title, notes, start_time, end_time, created_at
	`

	e := &calendar.Event{}
	err := s.db.QueryRow(ctx, query, uuid.New(), userID, req.Title, req.Notes, req.StartTime.UTC(), req.EndTime.UTC()).
		Scan(&e.ID, &e.UserID, &e.Title, &e.Notes, &e.StartTime, &e.EndTime, &e.CreatedAt)
	if err != nil {
		log.Printf("CreateEvent: Failed to insert event for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return e, nil
}

func (s *CalendarService) DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", eventID, apperror.ErrNotFound)
	}
	return nil
}
