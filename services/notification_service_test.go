package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N1femi/Thriva/internal/apperror"
	"github.com/N1femi/Thriva/internal/notification"
)

func setupNotificationService(t *testing.T) *NotificationService {
	t.Helper()
	_, pool := setupPgDatastore(t)
	return NewNotificationService(pool)
}

func boolPtr(b bool) *bool { return &b }

func createTestNotification(t *testing.T, svc *NotificationService, userID uuid.UUID, title string) *notification.Notification {
	t.Helper()
	n, err := svc.CreateNotification(context.Background(), userID, &notification.CreateNotificationRequest{
		Type:     string(notification.TypeJournalEntry),
		Title:    title,
		Message:  "keep it up",
		Metadata: map[string]any{"source": "test"},
	})
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

func TestNotificationService_InboxLifecycle(t *testing.T) {
	svc := setupNotificationService(t)
	ctx := context.Background()
	userID, other := uuid.New(), uuid.New()

	first := createTestNotification(t, svc, userID, "first")
	second := createTestNotification(t, svc, userID, "second")
	createTestNotification(t, svc, other, "someone else")

	assert.False(t, first.Read)
	assert.Equal(t, "test", first.Metadata["source"])

	list, err := svc.GetNotifications(ctx, userID, 1, 10, false)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, second.ID, list.Notifications[0].ID, "newest first")
	assert.Equal(t, 2, list.UnreadCount)
	assert.Equal(t, 2, list.TotalCount)

	page, err := svc.GetNotifications(ctx, userID, 2, 1, false)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, first.ID, page.Notifications[0].ID)

	updated, err := svc.UpdateNotification(ctx, userID, &notification.UpdateNotificationRequest{ID: first.ID.String(), Read: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Read)
	assert.Equal(t, "test", updated.Metadata["source"], "metadata untouched when omitted")

	unread, err := svc.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	onlyUnread, err := svc.GetNotifications(ctx, userID, 1, 10, true)
	require.NoError(t, err)
	require.Len(t, onlyUnread.Notifications, 1)
	assert.Equal(t, second.ID, onlyUnread.Notifications[0].ID)

	n, err := svc.MarkAllAsRead(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	unread, err = svc.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	otherUnread, err := svc.GetUnreadCount(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, otherUnread)

	require.NoError(t, svc.DeleteNotification(ctx, userID, first.ID))
	err = svc.DeleteNotification(ctx, userID, first.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestNotificationService_CannotTouchOthersNotifications(t *testing.T) {
	svc := setupNotificationService(t)
	ctx := context.Background()
	owner, intruder := uuid.New(), uuid.New()

	n := createTestNotification(t, svc, owner, "private")

	_, err := svc.UpdateNotification(ctx, intruder, &notification.UpdateNotificationRequest{ID: n.ID.String(), Read: boolPtr(true)})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = svc.DeleteNotification(ctx, intruder, n.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestNotificationService_Preferences(t *testing.T) {
	svc := setupNotificationService(t)
	ctx := context.Background()
	userID := uuid.New()

	prefs, err := svc.GetPreferences(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, prefs)

	enabled, err := svc.IsTypeEnabled(ctx, userID, notification.TypeBadgeEarned)
	require.NoError(t, err)
	assert.True(t, enabled, "types default to enabled")

	saved, err := svc.UpdatePreferences(ctx, userID, []notification.PreferenceUpdate{
		{Type: string(notification.TypeBadgeEarned), Enabled: boolPtr(false)},
		{Type: string(notification.TypeFriendAdded), Enabled: boolPtr(true)},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	// Upserting the same type again updates the existing row.
	again, err := svc.UpdatePreferences(ctx, userID, []notification.PreferenceUpdate{
		{Type: string(notification.TypeFriendAdded), Enabled: boolPtr(false)},
	})
	require.NoError(t, err)
	assert.Equal(t, saved[1].ID, again[0].ID)
	assert.False(t, again[0].Enabled)

	prefs, err = svc.GetPreferences(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, prefs, 2)

	// A disabled type is skipped silently.
	n, err := svc.CreateNotification(ctx, userID, &notification.CreateNotificationRequest{
		Type:    string(notification.TypeBadgeEarned),
		Title:   "Badge",
		Message: "earned",
	})
	require.NoError(t, err)
	assert.Nil(t, n)

	count, err := svc.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationService_RejectsUnknownType(t *testing.T) {
	svc := setupNotificationService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateNotification(ctx, userID, &notification.CreateNotificationRequest{Type: "promo", Title: "x", Message: "y"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.UpdatePreferences(ctx, userID, []notification.PreferenceUpdate{{Type: "promo", Enabled: boolPtr(true)}})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
