package mapper

import (
	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/model"
)

type ModelConfigMapper struct{}

func NewModelConfigMapper() *ModelConfigMapper {
	return &ModelConfigMapper{}
}

func (m *ModelConfigMapper) ToEntity(c *model.ModelConfig) *entity.ModelConfig {
	if c == nil {
		return nil
	}
	return &entity.ModelConfig{
		Id:        c.Id,
		Name:      c.Name,
		Provider:  c.Provider,
		Reasoning: c.Reasoning,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ModelConfigMapper) ToModel(c *entity.ModelConfig) *model.ModelConfig {
	if c == nil {
		return nil
	}
	return &model.ModelConfig{
		Id:        c.Id,
		Name:      c.Name,
		Provider:  c.Provider,
		Reasoning: c.Reasoning,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}
