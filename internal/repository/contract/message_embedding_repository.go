package contract

import (
	"context"

	"branching-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type MessageEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.MessageEmbedding) error
	DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error
	// SearchByUser returns the closest messages (cosine distance) among the
	// given user's conversations.
	SearchByUser(ctx context.Context, userId uuid.UUID, query pgvector.Vector, limit int) ([]*entity.MessageEmbedding, error)
}
