package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/N1femi/Thriva/internal/badge"
	"github.com/N1femi/Thriva/internal/journal"
	"github.com/N1femi/Thriva/middleware"
	"github.com/N1femi/Thriva/services"
)

type JournalHandler struct {
	journalService *services.JournalService
	badgeService   *services.BadgeService
	runner         *services.BadgeRunner
}

func NewJournalHandler(journalService *services.JournalService, badgeService *services.BadgeService, runner *services.BadgeRunner) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		badgeService:   badgeService,
		runner:         runner,
	}
}

func (h *JournalHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entries, err := h.journalService.GetEntries(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetEntries", err, "Failed to fetch journal entries")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req journal.CreateEntryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.journalService.CreateEntry(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, "CreateEntry", err, "Failed to create journal entry")
		return
	}

	text, at := entry.Text, entry.CreatedAt
	h.runner.Go(badge.DomainJournal, userID, func(ctx context.Context) error {
		return h.badgeService.RecomputeJournalBadges(ctx, userID, text, &at)
	})

	respondWithJSON(w, http.StatusCreated, entry)
}

func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entryID, err := queryUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.journalService.DeleteEntry(ctx, userID, entryID); err != nil {
		respondWithServiceError(w, "DeleteEntry", err, "Failed to delete journal entry")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
}
