package stats

import (
	"time"

	"github.com/google/uuid"
)

type UserStats struct {
	UserID               uuid.UUID  `json:"user_id" db:"user_id"`
	TotalEntries         int        `json:"total_entries" db:"total_entries"`
	TotalWords           int        `json:"total_words" db:"total_words"`
	CurrentStreak        int        `json:"current_streak" db:"current_streak"`
	LongestStreak        int        `json:"longest_streak" db:"longest_streak"`
	LastEntryDate        *time.Time `json:"last_entry_date" db:"last_entry_date"`
	EntriesThisWeek      int        `json:"entries_this_week" db:"entries_this_week"`
	EntriesThisMonth     int        `json:"entries_this_month" db:"entries_this_month"`
	EntriesBefore7am     int        `json:"entries_before_7am" db:"entries_before_7am"`
	EntriesAfter10pm     int        `json:"entries_after_10pm" db:"entries_after_10pm"`
	EntriesAfterMidnight int        `json:"entries_after_midnight" db:"entries_after_midnight"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// EntryFacts are per-entry values the journal rules need but user_stats does
// not keep.
type EntryFacts struct {
	WordCount      int  `json:"word_count"`
	WrittenBefore7 bool `json:"written_before_7am"`
	WrittenAfter10 bool `json:"written_after_10pm"`
	EntriesToday   int  `json:"entries_today"`
}

type JournalSnapshot struct {
	Stats UserStats  `json:"stats"`
	Entry EntryFacts `json:"entry"`
}
