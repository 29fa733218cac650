package unitofwork

import (
	"context"

	"branching-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	ModelConfigRepository() contract.ModelConfigRepository
	MessageEmbeddingRepository() contract.MessageEmbeddingRepository
}
