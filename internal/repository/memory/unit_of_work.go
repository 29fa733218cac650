package memory

import (
	"context"
	"sync"

	"branching-chat-be/internal/repository/contract"
	"branching-chat-be/internal/repository/unitofwork"
)

// UnitOfWork over the in-memory store. There is no real transaction; the one
// transactional behaviour that matters to the services is that sibling locks
// taken through MessageRepository.LockSiblings are held until Commit or
// Rollback, mirroring pg_advisory_xact_lock.
type UnitOfWork struct {
	store *Store
	held  []*sync.Mutex
}

var _ unitofwork.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Begin(ctx context.Context) error {
	return nil
}

func (u *UnitOfWork) releaseLocks() {
	for _, lock := range u.held {
		lock.Unlock()
	}
	u.held = nil
}

func (u *UnitOfWork) Commit() error {
	u.releaseLocks()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	u.releaseLocks()
	return nil
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &UserRepository{store: u.store}
}

func (u *UnitOfWork) ConversationRepository() contract.ConversationRepository {
	return &ConversationRepository{store: u.store}
}

func (u *UnitOfWork) MessageRepository() contract.MessageRepository {
	return &MessageRepository{store: u.store, held: &u.held}
}

func (u *UnitOfWork) ModelConfigRepository() contract.ModelConfigRepository {
	return &ModelConfigRepository{store: u.store}
}

func (u *UnitOfWork) MessageEmbeddingRepository() contract.MessageEmbeddingRepository {
	return &MessageEmbeddingRepository{store: u.store}
}

// RepositoryFactory hands out units of work bound to one shared store.
type RepositoryFactory struct {
	store *Store
}

var _ unitofwork.RepositoryFactory = (*RepositoryFactory)(nil)

func NewRepositoryFactory(store *Store) *RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}
