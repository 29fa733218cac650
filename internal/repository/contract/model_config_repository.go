package contract

import (
	"context"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/specification"
)

type ModelConfigRepository interface {
	Create(ctx context.Context, config *entity.ModelConfig) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ModelConfig, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ModelConfig, error)
}
