package schema

import "time"

// Chat is a persisted conversation. It is created on the first user
// interaction, touched on every new message, and deleted explicitly.
type Chat struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title     string        `json:"title"`
	UserID    *string       `gorm:"index" json:"userId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `gorm:"index" json:"updatedAt"`
	Messages  []ChatMessage `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

func (Chat) TableName() string { return "chats" }

// ChatMessage is one persisted turn inside a Chat.
// Messages are append-only and immutable once created.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ChatID    string    `gorm:"index;not null" json:"chatId"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
