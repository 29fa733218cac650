package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByParentMessageID struct {
	ParentMessageID uuid.UUID
}

func (s ByParentMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_message_id = ?", s.ParentMessageID)
}

// RootsOnly selects nodes with no parent (conversation roots).
type RootsOnly struct{}

func (s RootsOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_message_id IS NULL")
}

// SiblingOrder is the canonical display ordering for children of one parent.
type SiblingOrder struct{}

func (s SiblingOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("branch_order ASC").Order("created_at ASC")
}
