// internal/domain/chat/service.go
package chat

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/user"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"github.com/technexus/storefront-backend/internal/pkg/metrics"
)

var (
	ErrEmptyMessage     = apperror.Validation("Message is required")
	ErrSenderIDRequired = apperror.Validation("Sender ID required for admin")
)

// Service handles persisted chat
type Service struct {
	repo     Repository
	notifier Notifier
	log      *logrus.Logger
}

// NewService creates a new chat service
func NewService(repo Repository, notifier Notifier, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// SendRequest represents a new chat message
type SendRequest struct {
	Message    string     `json:"message"`
	ReceiverID *uuid.UUID `json:"receiver_id"`
}

// MarkReadRequest represents a mark-read call
type MarkReadRequest struct {
	SenderID *uuid.UUID `json:"sender_id"`
}

// Send stores the message and then pushes it to the receiver, or to every
// connected admin when no receiver is given. A missing peer never fails Send.
func (s *Service) Send(ctx context.Context, sender user.Principal, req *SendRequest) (*Message, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	m := &Message{
		SenderID:    sender.ID,
		ReceiverID:  req.ReceiverID,
		Message:     text,
		IsFromAdmin: sender.IsAdmin,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	metrics.ChatMessages.WithLabelValues(string(sender.Role())).Inc()

	s.notify(m)
	return m, nil
}

func (s *Service) notify(m *Message) {
	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(Notification{Type: FrameMessage, Message: m})
	if err != nil {
		s.log.WithError(err).Error("failed to encode chat notification")
		return
	}

	entry := s.log.WithFields(logrus.Fields{"message_id": m.ID, "sender_id": m.SenderID})
	if m.ReceiverID != nil {
		delivered := s.notifier.SendIfPresent(*m.ReceiverID, payload)
		entry.WithFields(logrus.Fields{"receiver_id": *m.ReceiverID, "delivered": delivered}).Debug("chat message pushed")
		return
	}
	n := s.notifier.SendToAdmins(payload)
	entry.WithField("admins", n).Debug("chat message pushed to admins")
}

// List returns the viewer's conversation history oldest first
func (s *Service) List(ctx context.Context, viewer user.Principal) ([]Message, error) {
	if viewer.IsAdmin {
		return s.repo.List(ctx, nil)
	}
	return s.repo.List(ctx, &viewer.ID)
}

// UnreadCount counts customer messages for admins and admin replies for customers
func (s *Service) UnreadCount(ctx context.Context, viewer user.Principal) (int64, error) {
	return s.repo.CountUnread(ctx, unreadScope(viewer))
}

// MarkRead clears unread messages. Admins must name the customer whose messages they read.
func (s *Service) MarkRead(ctx context.Context, viewer user.Principal, req *MarkReadRequest) (int64, error) {
	scope := unreadScope(viewer)
	if viewer.IsAdmin {
		if req == nil || req.SenderID == nil || *req.SenderID == uuid.Nil {
			return 0, ErrSenderIDRequired
		}
		scope.SenderID = req.SenderID
	}
	return s.repo.MarkRead(ctx, scope)
}
