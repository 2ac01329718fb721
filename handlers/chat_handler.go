package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/N1femi/Thriva/internal/badge"
	"github.com/N1femi/Thriva/internal/chat"
	"github.com/N1femi/Thriva/middleware"
	"github.com/N1femi/Thriva/services"
)

type ChatHandler struct {
	chatService  *services.ChatService
	badgeService *services.BadgeService
	runner       *services.BadgeRunner
}

func NewChatHandler(chatService *services.ChatService, badgeService *services.BadgeService, runner *services.BadgeRunner) *ChatHandler {
	return &ChatHandler{
		chatService:  chatService,
		badgeService: badgeService,
		runner:       runner,
	}
}

func (h *ChatHandler) recompute(userID uuid.UUID) {
	h.runner.Go(badge.DomainChat, userID, func(ctx context.Context) error {
		return h.badgeService.RecomputeChatBadges(ctx, userID)
	})
}

func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	chats, err := h.chatService.GetChats(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetChats", err, "Failed to fetch chats")
		return
	}

	respondWithJSON(w, http.StatusOK, chats)
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req chat.CreateChatRequest
	if r.ContentLength != 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	c, err := h.chatService.CreateChat(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, "CreateChat", err, "Failed to create chat")
		return
	}

	h.recompute(userID)
	respondWithJSON(w, http.StatusCreated, c)
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	chatID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "chat id must be a valid UUID")
		return
	}

	messages, err := h.chatService.GetMessages(ctx, userID, chatID)
	if err != nil {
		respondWithServiceError(w, "GetMessages", err, "Failed to fetch messages")
		return
	}

	respondWithJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	chatID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "chat id must be a valid UUID")
		return
	}

	var req chat.CreateMessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.chatService.AddMessage(ctx, userID, chatID, &req)
	if err != nil {
		respondWithServiceError(w, "AddMessage", err, "Failed to add message")
		return
	}

	h.recompute(userID)
	respondWithJSON(w, http.StatusCreated, msg)
}
