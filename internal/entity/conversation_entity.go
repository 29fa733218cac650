package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	Topic           string
	ActiveMessageId *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Message is one node of a conversation tree. ParentMessageId is nil for
// roots and immutable once set; BranchOrder ranks a node among the children
// of its parent.
type Message struct {
	Id              uuid.UUID
	ConversationId  uuid.UUID
	ParentMessageId *uuid.UUID
	Sender          string
	Text            string
	BranchOrder     int
	Model           *string
	Provider        *string
	CreatedAt       time.Time
}

func (m *Message) IsRoot() bool {
	return m.ParentMessageId == nil
}
