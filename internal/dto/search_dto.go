package dto

import (
	"github.com/google/uuid"
)

type SearchConversationsRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type SearchConversationsResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	MessageId      uuid.UUID `json:"message_id"`
	Document       string    `json:"document"`
}
