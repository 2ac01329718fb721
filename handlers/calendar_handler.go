package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/N1femi/Thriva/internal/badge"
	"github.com/N1femi/Thriva/internal/calendar"
	"github.com/N1femi/Thriva/middleware"
	"github.com/N1femi/Thriva/services"
)

type CalendarHandler struct {
	calendarService *services.CalendarService
	badgeService    *services.BadgeService
	runner          *services.BadgeRunner
}

func NewCalendarHandler(calendarService *services.CalendarService, badgeService *services.BadgeService, runner *services.BadgeRunner) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		badgeService:    badgeService,
		runner:          runner,
	}
}

func (h *CalendarHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	events, err := h.calendarService.GetEvents(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetEvents", err, "Failed to fetch events")
		return
	}

	respondWithJSON(w, http.StatusOK, events)
}

func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req calendar.CreateEventRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.calendarService.CreateEvent(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, "CreateEvent", err, "Failed to create event")
		return
	}

	h.runner.Go(badge.DomainCalendar, userID, func(ctx context.Context) error {
		return h.badgeService.RecomputeCalendarBadges(ctx, userID)
	})

	respondWithJSON(w, http.StatusCreated, event)
}

func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	eventID, err := queryUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.calendarService.DeleteEvent(ctx, userID, eventID); err != nil {
		respondWithServiceError(w, "DeleteEvent", err, "Failed to delete event")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}
