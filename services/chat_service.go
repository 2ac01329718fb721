package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/N1femi/Thriva/internal/apperror"
	"github.com/N1femi/Thriva/internal/chat"
)

type ChatService struct {
	db *pgxpool.Pool
}

func NewChatService(db *pgxpool.Pool) *ChatService {
	return &ChatService{db: db}
}

func (s *ChatService) GetChats(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	query := `
	SELECT id, user_id, title, created_at, updated_at
	FROM chats
	WHERE user_id = $1
	ORDER BY updated_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chats: %w", err)
	}
	defer rows.Close()

	chats := []chat.Chat{}
	for rows.Next() {
		var c chat.Chat
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *ChatService) CreateChat(ctx context.Context, userID uuid.UUID, req *chat.CreateChatRequest) (*chat.Chat, error) {
	query := `
	INSERT INTO chats (id, user_id, title, created_at, updated_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	RETURNING id, user_id, title, created_at, updated_at
	`

	c := &chat.Chat{}
	err := s.db.QueryRow(ctx, query, uuid.New(), userID, req.Title).
		Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		log.Printf("CreateChat: Failed to insert chat for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return c, nil
}

func (s *ChatService) ownsChat(ctx context.Context, q pgx.Tx, userID, chatID uuid.UUID) error {
	var owner uuid.UUID
	err := q.QueryRow(ctx, `SELECT user_id FROM chats WHERE id = $1`, chatID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && owner != userID) {
		return fmt.Errorf("chat %s: %w", chatID, apperror.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load chat: %w", err)
	}
	return nil
}

func (s *ChatService) GetMessages(ctx context.Context, userID, chatID uuid.UUID) ([]chat.Message, error) {
	query := `
	SELECT m.id, m.chat_id, m.role, m.content, m.created_at
	FROM messages m
	JOIN chats c ON c.id = m.chat_id
	WHERE m.chat_id = $1 AND c.user_id = $2
	ORDER BY m.created_at ASC
	`

	var found bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM chats WHERE id = $1 AND user_id = $2)`, chatID, userID).Scan(&found); err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("chat %s: %w", chatID, apperror.ErrNotFound)
	}

	rows, err := s.db.Query(ctx, query, chatID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// AddMessage appends a message to an owned chat and bumps the chat's
// updated_at in the same transaction.
func (s *ChatService) AddMessage(ctx context.Context, userID, chatID uuid.UUID, req *chat.CreateMessageRequest) (*chat.Message, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.ownsChat(ctx, tx, userID, chatID); err != nil {
		return nil, err
	}

	m := &chat.Message{}
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (id, chat_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, chat_id, role, content, created_at
	`, uuid.New(), chatID, req.Role, req.Content).
		Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		log.Printf("AddMessage: Failed to insert message into chat %s: %v", chatID, err)
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE chats SET updated_at = NOW() WHERE id = $1`, chatID); err != nil {
		return nil, fmt.Errorf("failed to touch chat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}
	return m, nil
}
