package chatstore

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/concierge/concierge/internal/schema"
)

type fakeChatRepo struct {
	chats    map[string]schema.Chat
	messages map[string][]schema.ChatMessage
	clock    time.Time
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    make(map[string]schema.Chat),
		messages: make(map[string][]schema.ChatMessage),
		clock:    time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeChatRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *fakeChatRepo) CreateChat(_ context.Context, chat *schema.Chat) error {
	now := r.tick()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	r.chats[chat.ID] = *chat
	return nil
}

func (r *fakeChatRepo) ListChats(_ context.Context, userID *string) ([]schema.Chat, error) {
	var out []schema.Chat
	for _, c := range r.chats {
		if userID != nil && (c.UserID == nil || *c.UserID != *userID) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeChatRepo) GetChat(_ context.Context, id string) (*schema.Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return nil, nil
	}
	c.Messages = append([]schema.ChatMessage(nil), r.messages[id]...)
	return &c, nil
}

func (r *fakeChatRepo) UpdateChatTitle(_ context.Context, id, title string) error {
	c, ok := r.chats[id]
	if !ok {
		return errors.New("missing chat")
	}
	c.Title = title
	r.chats[id] = c
	return nil
}

func (r *fakeChatRepo) TouchChat(_ context.Context, id string) error {
	c, ok := r.chats[id]
	if !ok {
		return errors.New("missing chat")
	}
	c.UpdatedAt = r.tick()
	r.chats[id] = c
	return nil
}

func (r *fakeChatRepo) DeleteChat(_ context.Context, id string) error {
	delete(r.chats, id)
	delete(r.messages, id)
	return nil
}

func (r *fakeChatRepo) AddMessage(_ context.Context, msg *schema.ChatMessage) error {
	msg.CreatedAt = r.tick()
	r.messages[msg.ChatID] = append(r.messages[msg.ChatID], *msg)
	return nil
}

func (r *fakeChatRepo) ListMessages(_ context.Context, chatID string, limit int) ([]schema.ChatMessage, error) {
	msgs := append([]schema.ChatMessage(nil), r.messages[chatID]...)
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func TestCreateChat_DefaultTitle(t *testing.T) {
	s := NewService(newFakeChatRepo())

	chat, err := s.CreateChat(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if chat.Title != "New Chat" {
		t.Errorf("expected default title, got %q", chat.Title)
	}
	if chat.ID == "" {
		t.Error("expected generated id")
	}
}

func TestChats_RecentFirst(t *testing.T) {
	s := NewService(newFakeChatRepo())

	first, _ := s.CreateChat(context.Background(), "first", nil)
	second, _ := s.CreateChat(context.Background(), "second", nil)

	chats, err := s.Chats(context.Background(), nil)
	if err != nil {
		t.Fatalf("Chats failed: %v", err)
	}
	if len(chats) != 2 || chats[0].ID != second.ID {
		t.Fatalf("expected most recently updated first, got %+v", chats)
	}

	// Adding a message bumps the older chat to the top.
	if _, err := s.AddMessage(context.Background(), first.ID, schema.RoleUser, "hi"); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	chats, _ = s.Chats(context.Background(), nil)
	if chats[0].ID != first.ID {
		t.Errorf("expected touched chat first, got %s", chats[0].ID)
	}
}

func TestChats_UserFilter(t *testing.T) {
	s := NewService(newFakeChatRepo())

	ada := "ada"
	bob := "bob"
	s.CreateChat(context.Background(), "a", &ada)
	s.CreateChat(context.Background(), "b", &bob)

	chats, err := s.Chats(context.Background(), &ada)
	if err != nil {
		t.Fatalf("Chats failed: %v", err)
	}
	if len(chats) != 1 || chats[0].Title != "a" {
		t.Errorf("unexpected filtered chats %+v", chats)
	}
}

func TestChat_NotFound(t *testing.T) {
	s := NewService(newFakeChatRepo())

	if _, err := s.Chat(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistory_ChronologicalAndLimited(t *testing.T) {
	s := NewService(newFakeChatRepo())

	chat, _ := s.CreateChat(context.Background(), "", nil)
	s.AddMessage(context.Background(), chat.ID, schema.RoleUser, "one")
	s.AddMessage(context.Background(), chat.ID, schema.RoleAssistant, "two")
	s.AddMessage(context.Background(), chat.ID, schema.RoleUser, "three")

	msgs, err := s.History(context.Background(), chat.ID, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "one" || msgs[2].Content != "three" {
		t.Errorf("expected chronological order, got %q..%q", msgs[0].Content, msgs[2].Content)
	}

	// A limit keeps only the most recent messages.
	msgs, _ = s.History(context.Background(), chat.ID, 2)
	if len(msgs) != 2 || msgs[0].Content != "two" || msgs[1].Content != "three" {
		t.Errorf("unexpected limited history %+v", msgs)
	}
}

func TestDeleteChat(t *testing.T) {
	s := NewService(newFakeChatRepo())

	chat, _ := s.CreateChat(context.Background(), "", nil)
	if err := s.DeleteChat(context.Background(), chat.ID); err != nil {
		t.Fatalf("DeleteChat failed: %v", err)
	}
	if err := s.DeleteChat(context.Background(), chat.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameChat(t *testing.T) {
	s := NewService(newFakeChatRepo())

	chat, _ := s.CreateChat(context.Background(), "", nil)
	if err := s.RenameChat(context.Background(), chat.ID, "Weather in Berlin"); err != nil {
		t.Fatalf("RenameChat failed: %v", err)
	}
	got, _ := s.Chat(context.Background(), chat.ID)
	if got.Title != "Weather in Berlin" {
		t.Errorf("title not updated: %q", got.Title)
	}

	if err := s.RenameChat(context.Background(), chat.ID, ""); err == nil {
		t.Error("expected error for empty title")
	}
}
