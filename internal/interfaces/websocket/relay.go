// internal/interfaces/websocket/relay.go
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/domain/chat"
	"github.com/technexus/storefront-backend/internal/pkg/auth"
	"github.com/technexus/storefront-backend/internal/pkg/metrics"
)

// Close codes sent before the connection is admitted
const (
	CloseAuthRequired = 4001
	CloseInvalidToken = 4002
)

// TokenValidator verifies access tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// RoleResolver reports whether a user holds the admin role
type RoleResolver interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PresenceTracker mirrors connects, pongs and disconnects somewhere shared
type PresenceTracker interface {
	Online(ctx context.Context, userID uuid.UUID) error
	Touch(ctx context.Context, userID uuid.UUID) error
	Offline(ctx context.Context, userID uuid.UUID) error
	Members(ctx context.Context) ([]uuid.UUID, error)
}

// Relay upgrades /ws requests and forwards typing indicators between peers
type Relay struct {
	registry *Registry
	tokens   TokenValidator
	roles    RoleResolver
	presence PresenceTracker
	cfg      config.ChatConfig
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

// NewRelay creates a relay. presence may be nil.
func NewRelay(registry *Registry, tokens TokenValidator, roles RoleResolver, presence PresenceTracker, cfg *config.Config, log *logrus.Logger) *Relay {
	origins := cfg.Security.CORSAllowedOrigins
	return &Relay{
		registry: registry,
		tokens:   tokens,
		roles:    roles,
		presence: presence,
		cfg:      cfg.Chat,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(origins, r.Header.Get("Origin"))
			},
		},
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// Registry returns the relay's connection registry
func (r *Relay) Registry() *Registry { return r.registry }

// Online lists connected users from the shared presence set, or from this
// process's registry when presence is absent or failing.
func (r *Relay) Online(ctx context.Context) []uuid.UUID {
	if r.presence != nil {
		members, err := r.presence.Members(ctx)
		if err == nil {
			return members
		}
		r.log.WithError(err).Warn("failed to read presence, using local registry")
	}
	return r.registry.Online()
}

// Handle is the gin handler for GET /ws?token=...
func (r *Relay) Handle(c *gin.Context) {
	conn, err := r.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		r.reject(conn, CloseAuthRequired, "Authentication required")
		return
	}
	claims, err := r.tokens.ValidateAccessToken(token)
	if err != nil {
		r.log.WithError(err).Debug("websocket token rejected")
		r.reject(conn, CloseInvalidToken, "Invalid token")
		return
	}

	isAdmin, err := r.roles.IsAdmin(c.Request.Context(), claims.UserID)
	if err != nil {
		r.log.WithError(err).WithField("user_id", claims.UserID).Error("failed to resolve role for websocket")
		r.reject(conn, websocket.CloseInternalServerErr, "Server error")
		return
	}

	entry := r.log.WithFields(logrus.Fields{"user_id": claims.UserID, "admin": isAdmin})
	client := newClient(claims.UserID, isAdmin, conn, r.cfg, entry)
	client.onPong = r.touch
	r.open(client)
	defer r.close(client)

	go client.writePump()
	client.readPump(r.handleFrame)
}

func (r *Relay) reject(conn *websocket.Conn, code int, reason string) {
	metrics.ChatFrames.WithLabelValues("connect", "rejected").Inc()
	deadline := time.Now().Add(r.cfg.WriteWait)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}

func (r *Relay) open(c *Client) {
	r.registry.Register(c.id, c)
	metrics.ChatConnections.Inc()
	if r.presence != nil {
		if err := r.presence.Online(context.Background(), c.id); err != nil {
			c.log.WithError(err).Warn("failed to record presence")
		}
	}
	c.log.Info("client connected")
}

func (r *Relay) touch(c *Client) {
	if r.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteWait)
	defer cancel()
	if err := r.presence.Touch(ctx, c.id); err != nil {
		c.log.WithError(err).Debug("failed to refresh presence")
	}
}

func (r *Relay) close(c *Client) {
	metrics.ChatConnections.Dec()
	if !r.registry.Unregister(c.id, c) {
		c.log.Info("client disconnected (already replaced)")
		return
	}
	if r.presence != nil {
		if err := r.presence.Offline(context.Background(), c.id); err != nil {
			c.log.WithError(err).Warn("failed to clear presence")
		}
	}
	c.log.Info("client disconnected")
}

type inboundFrame struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

type typingFrame struct {
	Type     string    `json:"type"`
	SenderID uuid.UUID `json:"senderId"`
	IsTyping bool      `json:"isTyping"`
}

// handleFrame processes one inbound frame. Bad frames are logged and skipped.
func (r *Relay) handleFrame(c *Client, data []byte) {
	var in inboundFrame
	if err := json.Unmarshal(data, &in); err != nil {
		metrics.ChatFrames.WithLabelValues("unknown", "malformed").Inc()
		c.log.WithError(err).Warn("malformed websocket frame")
		return
	}

	switch in.Type {
	case chat.FrameTyping:
		r.relayTyping(c, in)
	default:
		metrics.ChatFrames.WithLabelValues("unknown", "ignored").Inc()
		c.log.WithField("type", in.Type).Debug("ignoring websocket frame")
	}
}

func (r *Relay) relayTyping(c *Client, in inboundFrame) {
	receiver, err := uuid.Parse(in.ReceiverID)
	if err != nil {
		metrics.ChatFrames.WithLabelValues(chat.FrameTyping, "malformed").Inc()
		c.log.WithField("receiver", in.ReceiverID).Warn("typing frame without a valid receiverId")
		return
	}

	payload, err := json.Marshal(typingFrame{Type: chat.FrameTyping, SenderID: c.id, IsTyping: in.IsTyping})
	if err != nil {
		c.log.WithError(err).Error("failed to encode typing frame")
		return
	}

	if r.registry.SendIfPresent(receiver, payload) {
		metrics.ChatFrames.WithLabelValues(chat.FrameTyping, "delivered").Inc()
		return
	}
	metrics.ChatFrames.WithLabelValues(chat.FrameTyping, "offline").Inc()
}
