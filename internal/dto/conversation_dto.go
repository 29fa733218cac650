package dto

import (
	"time"

	"github.com/google/uuid"
)

type ConversationResponse struct {
	Id              uuid.UUID  `json:"id"`
	Topic           string     `json:"topic"`
	ActiveMessageId *uuid.UUID `json:"active_message_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

type MessageResponse struct {
	Id              uuid.UUID  `json:"id"`
	ConversationId  uuid.UUID  `json:"conversation_id"`
	ParentMessageId *uuid.UUID `json:"parent_message_id"`
	Sender          string     `json:"sender"`
	Text            string     `json:"text"`
	BranchOrder     int        `json:"branch_order"`
	Model           *string    `json:"model,omitempty"`
	Provider        *string    `json:"provider,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TreeNodeResponse is one node of the materialized conversation tree with its
// children in display order.
type TreeNodeResponse struct {
	MessageResponse
	Children []TreeNodeResponse `json:"children"`
}

type RenameConversationRequest struct {
	Id    uuid.UUID
	Topic string `json:"topic" validate:"required,max=255"`
}

type RenameConversationResponse struct {
	Id uuid.UUID `json:"id"`
}

type SetActiveMessageRequest struct {
	Id        uuid.UUID
	MessageId uuid.UUID `json:"message_id" validate:"required"`
}

type ActiveMessageResponse struct {
	ActiveMessageId *uuid.UUID `json:"active_message_id"`
}
