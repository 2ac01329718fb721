package friendship

import (
	"time"

	"github.com/google/uuid"
)

// Friendship rows are undirected: a user may appear as either profile.
type Friendship struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ProfileOne uuid.UUID `json:"profile_one" db:"profile_one"`
	ProfileTwo uuid.UUID `json:"profile_two" db:"profile_two"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type AddFriendRequest struct {
	FriendID string `json:"friend_id" validate:"required,uuid"`
}

type Friend struct {
	UserID uuid.UUID `json:"user_id"`
	Since  time.Time `json:"since"`
}
