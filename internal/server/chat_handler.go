package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/concierge/concierge/internal/schema"
)

type chatRequest struct {
	ChatID   string        `json:"chatId"`
	UserID   *string       `json:"userId"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// resolveTurn validates the request, loads or creates the backing chat, and
// assembles the message history for the turn. Returns a non-nil *gin.H with
// an HTTP status when the request is invalid.
func (s *Server) resolveTurn(c *gin.Context, req *chatRequest) (chatID string, history schema.Messages, errStatus int, errBody *gin.H) {
	if err := c.ShouldBindJSON(req); err != nil || len(req.Messages) == 0 {
		return "", schema.Messages{}, http.StatusBadRequest, &gin.H{"error": "Messages array is required"}
	}

	ctx := c.Request.Context()
	chatID = req.ChatID
	if chatID == "" {
		chat, err := s.chats.CreateChat(ctx, "", req.UserID)
		if err != nil {
			slog.Error("chat creation failed", "error", err)
			return "", schema.Messages{}, http.StatusInternalServerError, &gin.H{"error": "Failed to process chat request"}
		}
		chatID = chat.ID
	} else {
		// Earlier turns of an existing chat come from storage; the request
		// only needs to carry the new user message.
		stored, err := s.chats.History(ctx, chatID, 0)
		if err != nil {
			slog.Error("history load failed", "chat_id", chatID, "error", err)
			return "", schema.Messages{}, http.StatusInternalServerError, &gin.H{"error": "Failed to process chat request"}
		}
		for _, m := range stored {
			history.Messages = append(history.Messages, schema.Message{Role: m.Role, Content: m.Content})
		}
	}

	for _, m := range req.Messages {
		history.Messages = append(history.Messages, schema.Message{Role: m.Role, Content: m.Content})
	}
	return chatID, history, 0, nil
}

// persistTurn records the latest user message and the assistant answer.
func (s *Server) persistTurn(c *gin.Context, chatID string, req chatRequest, answer string) {
	ctx := c.Request.Context()
	last := req.Messages[len(req.Messages)-1]
	if last.Role == schema.RoleUser {
		if _, err := s.chats.AddMessage(ctx, chatID, schema.RoleUser, last.Content); err != nil {
			slog.Warn("persisting user message failed", "chat_id", chatID, "error", err)
		}
	}
	if _, err := s.chats.AddMessage(ctx, chatID, schema.RoleAssistant, answer); err != nil {
		slog.Warn("persisting assistant message failed", "chat_id", chatID, "error", err)
	}
}

// handleChat answers one turn and returns the whole response at once.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	chatID, history, status, errBody := s.resolveTurn(c, &req)
	if errBody != nil {
		c.JSON(status, *errBody)
		return
	}

	answer, err := s.runner.RunTurn(c.Request.Context(), history)
	if err != nil {
		slog.Error("turn failed", "request_id", c.GetString("request_id"), "chat_id", chatID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat request"})
		return
	}

	s.persistTurn(c, chatID, req, answer)
	c.JSON(http.StatusOK, gin.H{
		"chatId": chatID,
		"choices": []gin.H{
			{"message": gin.H{"role": schema.RoleAssistant, "content": answer}},
		},
	})
}

// sseSink forwards fragments as server-sent events and terminates the
// stream with the [DONE] marker.
type sseSink struct {
	w       gin.ResponseWriter
	flusher http.Flusher
}

func (s *sseSink) Fragment(text string) error {
	payload, err := json.Marshal(gin.H{"content": text})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseSink) Done() error {
	if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// handleChatStream answers one turn as a server-sent event stream.
func (s *Server) handleChatStream(c *gin.Context) {
	var req chatRequest
	chatID, history, status, errBody := s.resolveTurn(c, &req)
	if errBody != nil {
		c.JSON(status, *errBody)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Chat-ID", chatID)
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	sink := &sseSink{w: c.Writer, flusher: flusher}
	answer, err := s.runner.RunTurnStream(c.Request.Context(), history, sink)
	if err != nil {
		slog.Error("streamed turn failed", "request_id", c.GetString("request_id"), "chat_id", chatID, "error", err)
		payload, _ := json.Marshal(gin.H{"error": "Failed to process chat request"})
		fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
		fmt.Fprint(c.Writer, "data: [DONE]\n\n")
		flusher.Flush()
		return
	}

	s.persistTurn(c, chatID, req, answer)
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API carries no cookies, so cross-origin upgrades are fine.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsInbound struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

type wsOutbound struct {
	Type    string `json:"type"` // fragment, done, error
	Content string `json:"content,omitempty"`
	ChatID  string `json:"chatId,omitempty"`
}

// wsSink forwards fragments over the websocket connection.
type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Fragment(text string) error {
	return s.conn.WriteJSON(wsOutbound{Type: "fragment", Content: text})
}

func (s *wsSink) Done() error {
	return s.conn.WriteJSON(wsOutbound{Type: "done"})
}

// handleChatWS runs turns over a websocket: one inbound JSON message per
// user turn, answered by fragment messages and a done marker.
func (s *Server) handleChatWS(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "error", err)
			}
			return
		}
		if in.Content == "" {
			conn.WriteJSON(wsOutbound{Type: "error", Content: "Message content is required"})
			continue
		}

		chatID := in.ChatID
		var history schema.Messages
		if chatID == "" {
			chat, err := s.chats.CreateChat(ctx, "", nil)
			if err != nil {
				conn.WriteJSON(wsOutbound{Type: "error", Content: "Failed to process chat request"})
				continue
			}
			chatID = chat.ID
		} else {
			stored, err := s.chats.History(ctx, chatID, 0)
			if err != nil {
				conn.WriteJSON(wsOutbound{Type: "error", Content: "Failed to process chat request"})
				continue
			}
			for _, m := range stored {
				history.Messages = append(history.Messages, schema.Message{Role: m.Role, Content: m.Content})
			}
		}
		conn.WriteJSON(wsOutbound{Type: "chat", ChatID: chatID})
		history.AddUser(in.Content)

		answer, err := s.runner.RunTurnStream(ctx, history, &wsSink{conn: conn})
		if err != nil {
			slog.Error("websocket turn failed", "chat_id", chatID, "error", err)
			conn.WriteJSON(wsOutbound{Type: "error", Content: "Failed to process chat request"})
			continue
		}

		if _, err := s.chats.AddMessage(ctx, chatID, schema.RoleUser, in.Content); err != nil {
			slog.Warn("persisting user message failed", "chat_id", chatID, "error", err)
		}
		if _, err := s.chats.AddMessage(ctx, chatID, schema.RoleAssistant, answer); err != nil {
			slog.Warn("persisting assistant message failed", "chat_id", chatID, "error", err)
		}
	}
}
