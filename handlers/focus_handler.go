package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/N1femi/Thriva/internal/badge"
	"github.com/N1femi/Thriva/internal/focus"
	"github.com/N1femi/Thriva/middleware"
	"github.com/N1femi/Thriva/services"
)

type FocusHandler struct {
	focusService *services.FocusService
	badgeService *services.BadgeService
	runner       *services.BadgeRunner
}

func NewFocusHandler(focusService *services.FocusService, badgeService *services.BadgeService, runner *services.BadgeRunner) *FocusHandler {
	return &FocusHandler{
		focusService: focusService,
		badgeService: badgeService,
		runner:       runner,
	}
}

func (h *FocusHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	day, err := h.focusService.GetDay(ctx, userID, r.URL.Query().Get("date"))
	if err != nil {
		respondWithServiceError(w, "GetDay", err, "Failed to fetch daily focus")
		return
	}

	respondWithJSON(w, http.StatusOK, day)
}

func (h *FocusHandler) Select(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req focus.SelectRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sel, err := h.focusService.Select(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, "Select", err, "Failed to save daily focus")
		return
	}

	h.runner.Go(badge.DomainDailyFocus, userID, func(ctx context.Context) error {
		return h.badgeService.RecomputeDailyFocusBadges(ctx, userID)
	})

	respondWithJSON(w, http.StatusOK, sel)
}

func (h *FocusHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req focus.CompleteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sel, err := h.focusService.SetCompleted(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, "SetCompleted", err, "Failed to update daily focus")
		return
	}

	h.runner.Go(badge.DomainDailyFocus, userID, func(ctx context.Context) error {
		return h.badgeService.RecomputeDailyFocusBadges(ctx, userID)
	})

	respondWithJSON(w, http.StatusOK, sel)
}
