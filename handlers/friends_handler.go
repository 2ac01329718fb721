package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/N1femi/Thriva/internal/badge"
	"github.com/N1femi/Thriva/internal/friendship"
	"github.com/N1femi/Thriva/middleware"
	"github.com/N1femi/Thriva/services"
)

type FriendsHandler struct {
	friendsService *services.FriendsService
	badgeService   *services.BadgeService
	runner         *services.BadgeRunner
}

func NewFriendsHandler(friendsService *services.FriendsService, badgeService *services.BadgeService, runner *services.BadgeRunner) *FriendsHandler {
	return &FriendsHandler{
		friendsService: friendsService,
		badgeService:   badgeService,
		runner:         runner,
	}
}

func (h *FriendsHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	friends, err := h.friendsService.GetFriends(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetFriends", err, "Failed to fetch friends")
		return
	}

	respondWithJSON(w, http.StatusOK, friends)
}

func (h *FriendsHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req friendship.AddFriendRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	friendID, err := uuid.Parse(req.FriendID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "friend_id must be a valid UUID")
		return
	}

	log.Printf("AddFriend Handler: %s -> %s", userID, friendID)

	f, err := h.friendsService.AddFriend(ctx, userID, friendID)
	if err != nil {
		respondWithServiceError(w, "AddFriend", err, "Failed to add friend")
		return
	}

	// Both sides gain a friend.
	for _, id := range []uuid.UUID{userID, friendID} {
		id := id // per-iteration copy; module targets go 1.21 loop semantics
		h.runner.Go(badge.DomainFriends, id, func(ctx context.Context) error {
			return h.badgeService.RecomputeFriendsBadges(ctx, id)
		})
	}

	respondWithJSON(w, http.StatusCreated, f)
}

func (h *FriendsHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	friendID, err := queryUUID(r, "friend_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.friendsService.RemoveFriend(ctx, userID, friendID); err != nil {
		respondWithServiceError(w, "RemoveFriend", err, "Failed to remove friend")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
}
