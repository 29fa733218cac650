package mapper

import (
	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/model"
)

type MessageEmbeddingMapper struct{}

func NewMessageEmbeddingMapper() *MessageEmbeddingMapper {
	return &MessageEmbeddingMapper{}
}

func (m *MessageEmbeddingMapper) ToEntity(e *model.MessageEmbedding) *entity.MessageEmbedding {
	if e == nil {
		return nil
	}
	return &entity.MessageEmbedding{
		Id:             e.Id,
		MessageId:      e.MessageId,
		ConversationId: e.ConversationId,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *MessageEmbeddingMapper) ToModel(e *entity.MessageEmbedding) *model.MessageEmbedding {
	if e == nil {
		return nil
	}
	return &model.MessageEmbedding{
		Id:             e.Id,
		MessageId:      e.MessageId,
		ConversationId: e.ConversationId,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue,
		CreatedAt:      e.CreatedAt,
	}
}
