package model

import (
	"time"

	"github.com/google/uuid"
)

type ModelConfig struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Provider  string    `gorm:"type:varchar(50);not null"` // openai | anthropic | ollama
	Reasoning bool      `gorm:"default:false"`
	IsActive  bool      `gorm:"default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ModelConfig) TableName() string {
	return "model_configs"
}
