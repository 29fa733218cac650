package mapper

import (
	"time"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/model"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:              c.Id,
		UserId:          c.UserId,
		Topic:           c.Topic,
		ActiveMessageId: c.ActiveMessageId,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:              c.Id,
		UserId:          c.UserId,
		Topic:           c.Topic,
		ActiveMessageId: c.ActiveMessageId,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *ConversationMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:              msg.Id,
		ConversationId:  msg.ConversationId,
		ParentMessageId: msg.ParentMessageId,
		Sender:          msg.Sender,
		Text:            msg.Text,
		BranchOrder:     msg.BranchOrder,
		Model:           msg.Model,
		Provider:        msg.Provider,
		CreatedAt:       msg.CreatedAt,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:              msg.Id,
		ConversationId:  msg.ConversationId,
		ParentMessageId: msg.ParentMessageId,
		Sender:          msg.Sender,
		Text:            msg.Text,
		BranchOrder:     msg.BranchOrder,
		Model:           msg.Model,
		Provider:        msg.Provider,
		CreatedAt:       msg.CreatedAt,
	}
}

func (m *ConversationMapper) MessagesToEntities(models []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(models))
	for i, msg := range models {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}
