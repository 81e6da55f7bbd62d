// Package chatstore persists conversations and their message history.
package chatstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/concierge/concierge/internal/schema"
)

// ErrNotFound is returned when a chat id does not exist.
var ErrNotFound = errors.New("chat not found")

// DefaultHistoryLimit bounds how many messages a turn loads as context.
const DefaultHistoryLimit = 50

// Repository is the storage contract for chats and their messages.
type Repository interface {
	CreateChat(ctx context.Context, chat *schema.Chat) error
	// ListChats returns chats most recently updated first.
	ListChats(ctx context.Context, userID *string) ([]schema.Chat, error)
	// GetChat loads a chat with its messages in chronological order,
	// or (nil, nil) when the id is unknown.
	GetChat(ctx context.Context, id string) (*schema.Chat, error)
	UpdateChatTitle(ctx context.Context, id, title string) error
	// TouchChat bumps the chat's updatedAt timestamp.
	TouchChat(ctx context.Context, id string) error
	DeleteChat(ctx context.Context, id string) error
	AddMessage(ctx context.Context, msg *schema.ChatMessage) error
	// ListMessages returns up to limit messages, newest first.
	ListMessages(ctx context.Context, chatID string, limit int) ([]schema.ChatMessage, error)
}

// Service wraps a Repository with id generation and defaults.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateChat starts a new conversation. An empty title defaults to "New Chat".
func (s *Service) CreateChat(ctx context.Context, title string, userID *string) (*schema.Chat, error) {
	if title == "" {
		title = "New Chat"
	}
	chat := &schema.Chat{
		ID:     uuid.NewString(),
		Title:  title,
		UserID: userID,
	}
	if err := s.repo.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

func (s *Service) Chats(ctx context.Context, userID *string) ([]schema.Chat, error) {
	return s.repo.ListChats(ctx, userID)
}

func (s *Service) Chat(ctx context.Context, id string) (*schema.Chat, error) {
	chat, err := s.repo.GetChat(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return nil, ErrNotFound
	}
	return chat, nil
}

// AddMessage appends a message and bumps the chat's updatedAt.
func (s *Service) AddMessage(ctx context.Context, chatID, role, content string) (*schema.ChatMessage, error) {
	msg := &schema.ChatMessage{
		ID:      uuid.NewString(),
		ChatID:  chatID,
		Role:    role,
		Content: content,
	}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}
	if err := s.repo.TouchChat(ctx, chatID); err != nil {
		return nil, fmt.Errorf("touch chat: %w", err)
	}
	return msg, nil
}

func (s *Service) RenameChat(ctx context.Context, id, title string) error {
	if title == "" {
		return errors.New("title must not be empty")
	}
	return s.repo.UpdateChatTitle(ctx, id, title)
}

func (s *Service) DeleteChat(ctx context.Context, id string) error {
	chat, err := s.repo.GetChat(ctx, id)
	if err != nil {
		return fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return ErrNotFound
	}
	return s.repo.DeleteChat(ctx, id)
}

// History returns the most recent messages of a chat in chronological
// order, ready to seed a completion request. limit <= 0 uses the default.
func (s *Service) History(ctx context.Context, chatID string, limit int) ([]schema.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	msgs, err := s.repo.ListMessages(ctx, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	// Repository hands back newest first; turns want oldest first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
