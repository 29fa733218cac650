package contract

import (
	"context"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	UpdateTopic(ctx context.Context, id uuid.UUID, topic string) error
	// UpdateActiveMessage writes the active pointer, the only mutable field
	// of the tree. A nil messageId clears it.
	UpdateActiveMessage(ctx context.Context, id uuid.UUID, messageId *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
