// internal/infrastructure/database/postgres/chat_store.go
package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/technexus/storefront-backend/internal/domain/chat"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatStore implements chat.Repository on PostgreSQL
type ChatStore struct {
	db *gorm.DB
}

// NewChatStore creates a new chat store
func NewChatStore(db *gorm.DB) *ChatStore {
	return &ChatStore{db: db}
}

var _ chat.Repository = (*ChatStore)(nil)

func (s *ChatStore) Create(ctx context.Context, m *chat.Message) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return apperror.Persistence("failed to send message", err)
	}
	return nil
}

func (s *ChatStore) List(ctx context.Context, participant *uuid.UUID) ([]chat.Message, error) {
	q := s.db.WithContext(ctx).
		Model(&chat.Message{}).
		Select("chat_messages.*, profiles.full_name AS sender_name").
		Joins("LEFT JOIN profiles ON profiles.id = chat_messages.sender_id").
		Order("chat_messages.created_at ASC")
	if participant != nil {
		q = q.Where("chat_messages.sender_id = ? OR chat_messages.receiver_id = ?", *participant, *participant)
	}

	messages := []chat.Message{}
	if err := q.Find(&messages).Error; err != nil {
		return nil, apperror.Persistence("failed to list messages", err)
	}
	return messages, nil
}

func (s *ChatStore) scoped(ctx context.Context, scope chat.Scope) *gorm.DB {
	q := s.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("is_read = ? AND is_from_admin = ?", false, scope.FromAdmin)
	if scope.SenderID != nil {
		q = q.Where("sender_id = ?", *scope.SenderID)
	}
	if scope.ReceiverID != nil {
		q = q.Where("receiver_id = ?", *scope.ReceiverID)
	}
	return q
}

func (s *ChatStore) CountUnread(ctx context.Context, scope chat.Scope) (int64, error) {
	var n int64
	if err := s.scoped(ctx, scope).Count(&n).Error; err != nil {
		return 0, apperror.Persistence("failed to count unread messages", err)
	}
	return n, nil
}

func (s *ChatStore) MarkRead(ctx context.Context, scope chat.Scope) (int64, error) {
	res := s.scoped(ctx, scope).Update("is_read", true)
	if res.Error != nil {
		return 0, apperror.Persistence("failed to mark messages read", res.Error)
	}
	return res.RowsAffected, nil
}
