package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type MessageEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MessageId      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	ConversationId uuid.UUID       `gorm:"type:uuid;not null;index"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text dimensionality
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (MessageEmbedding) TableName() string {
	return "message_embeddings"
}
