// internal/interfaces/http/handlers/chat.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/chat"
	"github.com/technexus/storefront-backend/internal/domain/user"
)

// ChatService is the persisted chat path
type ChatService interface {
	Send(ctx context.Context, sender user.Principal, req *chat.SendRequest) (*chat.Message, error)
	List(ctx context.Context, viewer user.Principal) ([]chat.Message, error)
	UnreadCount(ctx context.Context, viewer user.Principal) (int64, error)
	MarkRead(ctx context.Context, viewer user.Principal, req *chat.MarkReadRequest) (int64, error)
}

// OnlineLister reports who holds a live chat connection
type OnlineLister interface {
	Online(ctx context.Context) []uuid.UUID
}

// ChatHandler handles chat endpoints
type ChatHandler struct {
	chat   ChatService
	online OnlineLister
	log    *logrus.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(svc ChatService, online OnlineLister, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   svc,
		online: online,
		log:    log,
	}
}

// GetUnreadCount handles GET /chat/unread
func (h *ChatHandler) GetUnreadCount(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	count, err := h.chat.UnreadCount(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetMessages handles GET /chat
func (h *ChatHandler) GetMessages(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	messages, err := h.chat.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage handles POST /chat
func (h *ChatHandler) SendMessage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req chat.SendRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.chat.Send(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// MarkRead handles POST /chat/mark-read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req chat.MarkReadRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	if _, err := h.chat.MarkRead(c.Request.Context(), p, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetOnline handles GET /chat/online (admin only)
func (h *ChatHandler) GetOnline(c *gin.Context) {
	online := h.online.Online(c.Request.Context())
	if online == nil {
		online = []uuid.UUID{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(online),
		"users": online,
	})
}
