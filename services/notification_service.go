package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/N1femi/Thriva/internal/apperror"
	"github.com/N1femi/Thriva/internal/notification"
)

// NotificationService is the in-app inbox plus per-type preferences. Nothing
// here delivers notifications anywhere; rows are read by the client.
type NotificationService struct {
	db *pgxpool.Pool
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

const notificationColumns = `id, user_id, type, title, message, read, metadata, created_at, updated_at`

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	n := &notification.Notification{}
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.Metadata, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// CreateNotification stores a notification unless the user switched its type
// off, in which case it returns nil without an error.
func (s *NotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	notifType := notification.Type(req.Type)
	if !notifType.Valid() {
		return nil, fmt.Errorf("notification type %q: %w", req.Type, apperror.ErrInvalidInput)
	}

	enabled, err := s.IsTypeEnabled(ctx, userID, notifType)
	if err != nil {
		return nil, err
	}
	if !enabled {
		log.Printf("CreateNotification: type %s disabled for user %s", notifType, userID)
		return nil, nil
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	query := `
	INSERT INTO notifications (id, user_id, type, title, message, read, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, FALSE, $6, NOW(), NOW())
	RETURNING ` + notificationColumns

	n, err := scanNotification(s.db.QueryRow(ctx, query, uuid.New(), userID, notifType, req.Title, req.Message, metadata))
	if err != nil {
		log.Printf("CreateNotification: Failed to insert notification for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// GetNotifications returns one page of the user's inbox, newest first, with
// unread and total counts.
func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("page and page size must be positive: %w", apperror.ErrInvalidInput)
	}
	offset := (page - 1) * pageSize

	whereClause := "WHERE user_id = $1"
	if unreadOnly {
		whereClause += " AND NOT read"
	}

	query := fmt.Sprintf(`
	SELECT %s
	FROM notifications
	%s
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`, notificationColumns, whereClause)

	rows, err := s.db.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	unread, err := s.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		TotalCount:    total,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// UpdateNotification sets read and/or metadata on one of the user's
// notifications and always bumps updated_at.
func (s *NotificationService) UpdateNotification(ctx context.Context, userID uuid.UUID, req *notification.UpdateNotificationRequest) (*notification.Notification, error) {
	notificationID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, fmt.Errorf("notification id: %w", apperror.ErrInvalidInput)
	}

	updates := []string{"updated_at = NOW()"}
	args := []interface{}{notificationID, userID}
	argCount := 3

	if req.Read != nil {
		updates = append(updates, fmt.Sprintf("read = $%d", argCount))
		args = append(args, *req.Read)
		argCount++
	}
	if req.Metadata != nil {
		updates = append(updates, fmt.Sprintf("metadata = $%d", argCount))
		args = append(args, req.Metadata)
	}

	query := fmt.Sprintf(`
	UPDATE notifications
	SET %s
	WHERE id = $1 AND user_id = $2
	RETURNING %s
	`, strings.Join(updates, ", "), notificationColumns)

	n, err := scanNotification(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("notification %s: %w", notificationID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return n, nil
}

// MarkAllAsRead flips every unread notification of the user and reports how
// many changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
	UPDATE notifications
	SET read = TRUE, updated_at = NOW()
	WHERE user_id = $1 AND NOT read
	`

	result, err := s.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return result.RowsAffected(), nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", notificationID, apperror.ErrNotFound)
	}
	return nil
}

const preferenceColumns = `id, user_id, notification_type, enabled, created_at, updated_at`

func scanPreference(row pgx.Row) (*notification.Preference, error) {
	p := &notification.Preference{}
	err := row.Scan(&p.ID, &p.UserID, &p.NotificationType, &p.Enabled, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *NotificationService) GetPreferences(ctx context.Context, userID uuid.UUID) ([]notification.Preference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM notification_preferences WHERE user_id = $1 ORDER BY notification_type`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification preferences: %w", err)
	}
	defer rows.Close()

	prefs := []notification.Preference{}
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification preference: %w", err)
		}
		prefs = append(prefs, *p)
	}
	return prefs, rows.Err()
}

// UpdatePreferences upserts every given type for the user in one transaction.
func (s *NotificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, updates []notification.PreferenceUpdate) ([]notification.Preference, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
	INSERT INTO notification_preferences (id, user_id, notification_type, enabled, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	ON CONFLICT (user_id, notification_type)
	DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW()
	RETURNING ` + preferenceColumns

	prefs := make([]notification.Preference, 0, len(updates))
	for _, u := range updates {
		if !notification.Type(u.Type).Valid() {
			return nil, fmt.Errorf("notification type %q: %w", u.Type, apperror.ErrInvalidInput)
		}
		if u.Enabled == nil {
			return nil, fmt.Errorf("enabled is required for %s: %w", u.Type, apperror.ErrInvalidInput)
		}
		p, err := scanPreference(tx.QueryRow(ctx, query, uuid.New(), userID, u.Type, *u.Enabled))
		if err != nil {
			return nil, fmt.Errorf("failed to save notification preference: %w", err)
		}
		prefs = append(prefs, *p)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit notification preferences: %w", err)
	}
	return prefs, nil
}

// IsTypeEnabled reports the user's setting for notifType, defaulting to
// enabled when no preference row exists.
func (s *NotificationService) IsTypeEnabled(ctx context.Context, userID uuid.UUID, notifType notification.Type) (bool, error) {
	var enabled bool
	err := s.db.QueryRow(ctx,
		`SELECT enabled FROM notification_preferences WHERE user_id = $1 AND notification_type = $2`,
		userID, notifType,
	).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, fmt.Errorf("failed to load notification preference: %w", err)
	}
	return enabled, nil
}
