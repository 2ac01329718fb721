package notification

type CreateNotificationRequest struct {
	Type     string         `json:"type" validate:"required,oneof=friend_request friend_added journal_entry badge_earned calendar_event"`
	Title    string         `json:"title" validate:"required,max=200"`
	Message  string         `json:"message" validate:"required,max=2000"`
	Metadata map[string]any `json:"metadata"`
}

// UpdateNotificationRequest changes read state and/or metadata. Omitted
// fields keep their stored value.
type UpdateNotificationRequest struct {
	ID       string         `json:"id" validate:"required,uuid"`
	Read     *bool          `json:"read"`
	Metadata map[string]any `json:"metadata"`
}

type PreferenceUpdate struct {
	Type    string `json:"type" validate:"required,oneof=friend_request friend_added journal_entry badge_earned calendar_event"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

type UpdatePreferencesRequest struct {
	Preferences []PreferenceUpdate `json:"preferences" validate:"required,min=1,dive"`
}
