package memory

import (
	"context"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// MessageEmbeddingRepository records embeddings but does not rank them;
// similarity search needs the pgvector operator and is exercised against a
// real database.
type MessageEmbeddingRepository struct {
	store *Store
}

var _ contract.MessageEmbeddingRepository = (*MessageEmbeddingRepository)(nil)

func (r *MessageEmbeddingRepository) Create(ctx context.Context, embedding *entity.MessageEmbedding) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if embedding.Id == uuid.Nil {
		embedding.Id = uuid.New()
	}
	copied := *embedding
	r.store.embeddings = append(r.store.embeddings, &copied)
	return nil
}

func (r *MessageEmbeddingRepository) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.embeddings[:0]
	for _, e := range r.store.embeddings {
		if e.ConversationId != conversationId {
			kept = append(kept, e)
		}
	}
	r.store.embeddings = kept
	return nil
}

func (r *MessageEmbeddingRepository) SearchByUser(ctx context.Context, userId uuid.UUID, query pgvector.Vector, limit int) ([]*entity.MessageEmbedding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]*entity.MessageEmbedding, 0)
	for _, e := range r.store.embeddings {
		if limit > 0 && len(result) >= limit {
			break
		}
		copied := *e
		result = append(result, &copied)
	}
	return result, nil
}
