package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/N1femi/Thriva/internal/apperror"
	"github.com/N1femi/Thriva/internal/friendship"
)

type FriendsService struct {
	db *pgxpool.Pool
}

func NewFriendsService(db *pgxpool.Pool) *FriendsService {
	return &FriendsService{db: db}
}

func (s *FriendsService) GetFriends(ctx context.Context, userID uuid.UUID) ([]friendship.Friend, error) {
	query := `
	SELECT CASE WHEN profile_one = $1 THEN profile_two ELSE profile_one END AS friend_id, created_at
	FROM "Friends"
	WHERE profile_one = $1 OR profile_two = $1
	ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friends: %w", err)
	}
	defer rows.Close()

	friends := []friendship.Friend{}
	for rows.Next() {
		var f friendship.Friend
		if err := rows.Scan(&f.UserID, &f.Since); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// AddFriend stores an undirected friendship. It refuses self-friendship and
// a pair that already exists in either direction.
func (s *FriendsService) AddFriend(ctx context.Context, userID, friendID uuid.UUID) (*friendship.Friendship, error) {
	if userID == friendID {
		return nil, fmt.Errorf("cannot add yourself as a friend: %w", apperror.ErrInvalidInput)
	}

	var exists bool
	checkQuery := `
		SELECT EXISTS(
			SELECT 1 FROM "Friends"
			WHERE (profile_one = $1 AND profile_two = $2)
			   OR (profile_one = $2 AND profile_two = $1)
		)
	`
	if err := s.db.QueryRow(ctx, checkQuery, userID, friendID).Scan(&exists); err != nil {
		log.Printf("AddFriend: Failed to check existing friendship: %v", err)
		return nil, fmt.Errorf("failed to check existing friendship: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("friendship: %w", apperror.ErrConflict)
	}

	insertQuery := `
		INSERT INTO "Friends" (id, profile_one, profile_two, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, profile_one, profile_two, created_at
	`

	f := &friendship.Friendship{}
	err := s.db.QueryRow(ctx, insertQuery, uuid.New(), userID, friendID).
		Scan(&f.ID, &f.ProfileOne, &f.ProfileTwo, &f.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("friendship: %w", apperror.ErrConflict)
		}
		log.Printf("AddFriend: Failed to insert friendship: %v", err)
		return nil, fmt.Errorf("failed to create friendship: %w", err)
	}

	log.Printf("AddFriend: Successfully created friendship between %s and %s", userID, friendID)
	return f, nil
}

func (s *FriendsService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	deleteQuery := `
		DELETE FROM "Friends"
		WHERE (profile_one = $1 AND profile_two = $2)
		   OR (profile_one = $2 AND profile_two = $1)
	`

	result, err := s.db.Exec(ctx, deleteQuery, userID, friendID)
	if err != nil {
		log.Printf("RemoveFriend: Failed to delete friendship: %v", err)
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship: %w", apperror.ErrNotFound)
	}
	return nil
}
