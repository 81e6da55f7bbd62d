package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concierge/concierge/internal/chatstore"
	"github.com/concierge/concierge/internal/schema"
)

// handleListChats returns all chats, optionally filtered by userId.
func (s *Server) handleListChats(c *gin.Context) {
	var userID *string
	if v := c.Query("userId"); v != "" {
		userID = &v
	}

	chats, err := s.chats.Chats(c.Request.Context(), userID)
	if err != nil {
		slog.Error("listing chats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list chats"})
		return
	}
	if chats == nil {
		chats = []schema.Chat{}
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// handleGetChat returns one chat with its full message history.
func (s *Server) handleGetChat(c *gin.Context) {
	chat, err := s.chats.Chat(c.Request.Context(), c.Param("id"))
	if errors.Is(err, chatstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	if err != nil {
		slog.Error("loading chat failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chat"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// handleDeleteChat removes a chat and its messages.
func (s *Server) handleDeleteChat(c *gin.Context) {
	err := s.chats.DeleteChat(c.Request.Context(), c.Param("id"))
	if errors.Is(err, chatstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	if err != nil {
		slog.Error("deleting chat failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
