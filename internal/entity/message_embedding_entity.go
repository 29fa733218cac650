package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type MessageEmbedding struct {
	Id             uuid.UUID
	MessageId      uuid.UUID
	ConversationId uuid.UUID
	Document       string
	EmbeddingValue pgvector.Vector
	CreatedAt      time.Time
}
