package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/N1femi/Thriva/middleware"
	"github.com/N1femi/Thriva/services"
)

type BadgeHandler struct {
	badgeService *services.BadgeService
}

func NewBadgeHandler(badgeService *services.BadgeService) *BadgeHandler {
	return &BadgeHandler{badgeService: badgeService}
}

func (h *BadgeHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	badges, err := h.badgeService.GetBadgesWithStatus(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetBadges", err, "Failed to fetch badges")
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}

// Recompute runs every domain for the caller before answering. Domain
// failures are logged; the caller still gets the current badge state.
func (h *BadgeHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.badgeService.RecomputeAllBadges(ctx, userID); err != nil {
		log.Printf("Recompute Handler: partial recompute for user %s: %v", userID, err)
	}

	badges, err := h.badgeService.GetBadgesWithStatus(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "Recompute", err, "Failed to fetch badges")
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}

func (h *BadgeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	st, err := h.badgeService.GetUserStats(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetStats", err, "Failed to fetch stats")
		return
	}

	respondWithJSON(w, http.StatusOK, st)
}
