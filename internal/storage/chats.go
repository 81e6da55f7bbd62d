package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/concierge/concierge/internal/schema"
)

// ChatRepository is the gorm implementation of chatstore.Repository.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) CreateChat(ctx context.Context, chat *schema.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListChats(ctx context.Context, userID *string) ([]schema.Chat, error) {
	q := r.db.WithContext(ctx).Order("updated_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var chats []schema.Chat
	if err := q.Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) GetChat(ctx context.Context, id string) (*schema.Chat, error) {
	var chat schema.Chat
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) UpdateChatTitle(ctx context.Context, id, title string) error {
	err := r.db.WithContext(ctx).
		Model(&schema.Chat{}).
		Where("id = ?", id).
		Update("title", title).Error
	if err != nil {
		return fmt.Errorf("rename chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) TouchChat(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&schema.Chat{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
	if err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) DeleteChat(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&schema.ChatMessage{}, "chat_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete chat messages: %w", err)
		}
		if err := tx.Delete(&schema.Chat{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete chat: %w", err)
		}
		return nil
	})
}

func (r *ChatRepository) AddMessage(ctx context.Context, msg *schema.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, chatID string, limit int) ([]schema.ChatMessage, error) {
	var msgs []schema.ChatMessage
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return msgs, nil
}
