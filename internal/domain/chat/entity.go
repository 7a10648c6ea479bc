// internal/domain/chat/entity.go
package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/technexus/storefront-backend/internal/domain/user"
)

// Message is one support chat line. Only IsRead changes after insert.
type Message struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SenderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID  *uuid.UUID `gorm:"type:uuid;index" json:"receiver_id"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	IsFromAdmin bool       `gorm:"not null;default:false" json:"is_from_admin"`
	IsRead      bool       `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`

	SenderName *string `gorm:"->;-:migration" json:"full_name,omitempty"`

	Sender user.User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName overrides
func (Message) TableName() string { return "chat_messages" }

// Scope selects the messages an unread count or mark-read applies to
type Scope struct {
	FromAdmin  bool
	SenderID   *uuid.UUID
	ReceiverID *uuid.UUID
}

// unreadScope is what counts as unread for the viewer
func unreadScope(viewer user.Principal) Scope {
	if viewer.IsAdmin {
		return Scope{FromAdmin: false}
	}
	return Scope{FromAdmin: true, ReceiverID: &viewer.ID}
}

// Frame types pushed over the websocket
const (
	FrameMessage = "message"
	FrameTyping  = "typing"
)

// Notification is the frame pushed to a live peer after a message is stored
type Notification struct {
	Type    string   `json:"type"`
	Message *Message `json:"message"`
}
