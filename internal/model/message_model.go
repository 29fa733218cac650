package model

import (
	"time"

	"github.com/google/uuid"
)

// Message rows are insert-only. Branch order uniqueness among siblings is
// enforced by partial unique indexes created in cmd/migrate (one for children
// of a parent, one for roots of a conversation).
type Message struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ParentMessageId *uuid.UUID `gorm:"type:uuid;index"`
	Sender          string     `gorm:"type:varchar(50);not null"` // system | user | assistant
	Text            string     `gorm:"type:text;not null"`
	BranchOrder     int        `gorm:"not null;default:0"`
	Model           *string    `gorm:"type:varchar(100)"` // assistant nodes only
	Provider        *string    `gorm:"type:varchar(50)"`  // assistant nodes only
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
