package implementation

import (
	"context"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/mapper"
	"branching-chat-be/internal/model"
	"branching-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageEmbeddingMapper
}

func NewMessageEmbeddingRepository(db *gorm.DB) contract.MessageEmbeddingRepository {
	return &MessageEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageEmbeddingMapper(),
	}
}

func (r *MessageEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.MessageEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *MessageEmbeddingRepositoryImpl) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Delete(&model.MessageEmbedding{}).Error
}

func (r *MessageEmbeddingRepositoryImpl) SearchByUser(ctx context.Context, userId uuid.UUID, query pgvector.Vector, limit int) ([]*entity.MessageEmbedding, error) {
	var models []*model.MessageEmbedding
	subQuery := r.db.Table("conversations").Select("id").Where("user_id = ?", userId)
	err := r.db.WithContext(ctx).
		Where("conversation_id IN (?)", subQuery).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "embedding_value <=> ?",
			Vars:               []interface{}{query},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.MessageEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
