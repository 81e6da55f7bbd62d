// Package server exposes the conversational API over HTTP: plain and
// streamed chat turns, a websocket transport, and chat history management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/concierge/concierge/internal/chatstore"
	"github.com/concierge/concierge/internal/orchestrator"
	"github.com/concierge/concierge/internal/schema"
)

// TurnRunner abstracts the orchestrator for handler tests.
type TurnRunner interface {
	RunTurn(ctx context.Context, history schema.Messages) (string, error)
	RunTurnStream(ctx context.Context, history schema.Messages, sink orchestrator.Sink) (string, error)
}

// Server holds the HTTP surface and its collaborators.
type Server struct {
	runner TurnRunner
	chats  *chatstore.Service
	engine *gin.Engine
}

func New(runner TurnRunner, chats *chatstore.Service) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		runner: runner,
		chats:  chats,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), RequestID(), Logging())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)

	s.engine.POST("/chat", s.handleChat)
	s.engine.POST("/chat/stream", s.handleChatStream)
	s.engine.GET("/ws/chat", s.handleChatWS)

	s.engine.GET("/chats", s.handleListChats)
	s.engine.GET("/chats/:id", s.handleGetChat)
	s.engine.DELETE("/chats/:id", s.handleDeleteChat)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	slog.Info("http server stopped")
	return ctx.Err()
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "concierge",
		"message": "Conversational appointment assistant. POST /chat to talk.",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
