package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID  `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Topic           string     `gorm:"type:text;not null"`
	ActiveMessageId *uuid.UUID `gorm:"type:uuid"` // Currently selected leaf; the only mutable tree field
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
