package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/N1femi/Thriva/internal/apperror"
	"github.com/N1femi/Thriva/internal/journal"
)

type JournalService struct {
	db *pgxpool.Pool
}

func NewJournalService(db *pgxpool.Pool) *JournalService {
	return &JournalService{db: db}
}

func (s *JournalService) GetEntries(ctx context.Context, userID uuid.UUID) ([]journal.Entry, error) {
	query := `
	SELECT id, user_id, title, text, created_at
	FROM entries
	WHERE user_id = $1
	ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	defer rows.Close()

	entries := []journal.Entry{}
	for rows.Next() {
		var e journal.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *JournalService) CreateEntry(ctx context.Context, userID uuid.UUID, req *journal.CreateEntryRequest) (*journal.Entry, error) {
	query := `
	INSERT INTO entries (id, user_id, title, text, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	RETURNING id, user_id, title, text, created_at
	`

	e := &journal.Entry{}
	err := s.db.QueryRow(ctx, query, uuid.New(), userID, req.Title, req.Text).
		Scan(&e.ID, &e.UserID, &e.Title, &e.Text, &e.CreatedAt)
	if err != nil {
		log.Printf("CreateEntry: Failed to insert entry for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return e, nil
}

func (s *JournalService) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM entries WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("entry %s: %w", entryID, apperror.ErrNotFound)
	}
	return nil
}
