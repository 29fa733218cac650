package dto

import (
	"github.com/google/uuid"
)

// StreamChatRequest carries the query parameters of a streaming chat call.
// ConversationId nil means "start a new conversation"; ParentMessageId nil
// means "continue from the conversation's active pointer".
type StreamChatRequest struct {
	UserText        string `validate:"required"`
	SystemMessage   string
	Model           string `validate:"required"`
	ConversationId  *uuid.UUID
	ParentMessageId *uuid.UUID
}
