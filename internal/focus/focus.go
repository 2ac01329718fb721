package focus

import (
	"time"

	"github.com/google/uuid"
)

// Option is one entry of the shared daily_focus catalog.
type Option struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
}

type Selection struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	FocusID      uuid.UUID `json:"focus_id" db:"focus_id"`
	SelectedDate string    `json:"selected_date" db:"selected_date"`
	Completed    bool      `json:"completed" db:"completed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Day struct {
	Options    []Option    `json:"options"`
	Selections []Selection `json:"selections"`
}

type SelectRequest struct {
	FocusID      string `json:"focus_id" validate:"required,uuid"`
	SelectedDate string `json:"selected_date" validate:"omitempty,datetime=2006-01-02"`
	Completed    *bool  `json:"completed"`
}

type CompleteRequest struct {
	SelectionID string `json:"selection_id" validate:"required,uuid"`
	Completed   *bool  `json:"completed" validate:"required"`
}
