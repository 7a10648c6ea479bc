// internal/domain/chat/repository.go
package chat

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists chat messages
type Repository interface {
	Create(ctx context.Context, m *Message) error
	// List returns messages oldest first. A nil participant returns every message.
	List(ctx context.Context, participant *uuid.UUID) ([]Message, error)
	CountUnread(ctx context.Context, scope Scope) (int64, error)
	MarkRead(ctx context.Context, scope Scope) (int64, error)
}

// Notifier delivers frames to live connections. Delivery is best effort.
type Notifier interface {
	SendIfPresent(userID uuid.UUID, payload []byte) bool
	SendToAdmins(payload []byte) int
}
