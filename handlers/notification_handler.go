package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/N1femi/Thriva/internal/notification"
	"github.com/N1femi/Thriva/middleware"
	"github.com/N1femi/Thriva/services"
)

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// pageParams reads ?page= and ?page_size=, defaulting to the first page of
// defaultNotificationPageSize and capping the size.
func pageParams(r *http.Request) (int, int, error) {
	page, pageSize := 1, defaultNotificationPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, errors.New("query parameter 'page' must be a positive integer")
		}
		page = n
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, errors.New("query parameter 'page_size' must be a positive integer")
		}
		pageSize = min(n, maxNotificationPageSize)
	}
	return page, pageSize, nil
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, pageSize, err := pageParams(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	list, err := h.notificationService.GetNotifications(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		respondWithServiceError(w, "GetNotifications", err, "Failed to fetch notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req notification.CreateNotificationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.notificationService.CreateNotification(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, "CreateNotification", err, "Failed to create notification")
		return
	}
	if n == nil {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification type disabled"})
		return
	}

	respondWithJSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) UpdateNotification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req notification.UpdateNotificationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.notificationService.UpdateNotification(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, "UpdateNotification", err, "Failed to update notification")
		return
	}

	respondWithJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "MarkAllAsRead", err, "Failed to mark notifications as read")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	notificationID, err := queryUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.notificationService.DeleteNotification(ctx, userID, notificationID); err != nil {
		respondWithServiceError(w, "DeleteNotification", err, "Failed to delete notification")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}

func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	prefs, err := h.notificationService.GetPreferences(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetPreferences", err, "Failed to fetch notification preferences")
		return
	}

	respondWithJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences takes {"preferences": [{type, enabled}, ...]}.
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req notification.UpdatePreferencesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs, err := h.notificationService.UpdatePreferences(ctx, userID, req.Preferences)
	if err != nil {
		respondWithServiceError(w, "UpdatePreferences", err, "Failed to update notification preferences")
		return
	}

	respondWithJSON(w, http.StatusOK, prefs)
}

// UpdatePreference takes a single {type, enabled}.
func (h *NotificationHandler) UpdatePreference(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req notification.PreferenceUpdate
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs, err := h.notificationService.UpdatePreferences(ctx, userID, []notification.PreferenceUpdate{req})
	if err != nil {
		respondWithServiceError(w, "UpdatePreference", err, "Failed to update notification preference")
		return
	}

	respondWithJSON(w, http.StatusOK, prefs[0])
}
