package dto

import "github.com/google/uuid"

// PublishEmbedMessage is the payload of the embed pipeline: a message whose
// text should be embedded for semantic search.
type PublishEmbedMessage struct {
	MessageId uuid.UUID `json:"message_id"`
}
