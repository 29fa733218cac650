package contract

import (
	"context"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error
	// LockSiblings serializes branch allocation for children of one parent
	// (or for the roots of one conversation when parentId is nil). Must be
	// called inside a transaction; the lock is released on commit/rollback.
	LockSiblings(ctx context.Context, conversationId uuid.UUID, parentId *uuid.UUID) error
	// NextBranchOrder returns max(branch_order)+1 among current siblings,
	// 0 when there are none.
	NextBranchOrder(ctx context.Context, conversationId uuid.UUID, parentId *uuid.UUID) (int, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
