package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/contract"
	"branching-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository struct {
	store *Store
	held  *[]*sync.Mutex // sibling locks held by the owning unit of work
}

var _ contract.MessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	for _, existing := range r.store.messages {
		if existing.ConversationId != message.ConversationId {
			continue
		}
		if sameParent(existing.ParentMessageId, message.ParentMessageId) &&
			existing.BranchOrder == message.BranchOrder {
			return fmt.Errorf("duplicate branch_order %d under parent", message.BranchOrder)
		}
	}
	r.store.messages[message.Id] = copyMessage(message)
	return nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *MessageRepository) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, m := range r.store.messages {
		if m.ConversationId == conversationId {
			delete(r.store.messages, id)
		}
	}
	return nil
}

func (r *MessageRepository) LockSiblings(ctx context.Context, conversationId uuid.UUID, parentId *uuid.UUID) error {
	lock := r.store.siblingLock(conversationId, parentId)
	lock.Lock()
	*r.held = append(*r.held, lock)
	return nil
}

func (r *MessageRepository) NextBranchOrder(ctx context.Context, conversationId uuid.UUID, parentId *uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	max := -1
	for _, m := range r.store.messages {
		if m.ConversationId != conversationId || !sameParent(m.ParentMessageId, parentId) {
			continue
		}
		if m.BranchOrder > max {
			max = m.BranchOrder
		}
	}
	return max + 1, nil
}

func (r *MessageRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.messages {
		if messageMatches(m, specs) {
			return copyMessage(m), nil
		}
	}
	return nil, nil
}

func (r *MessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.store.mu.Lock()
	result := make([]*entity.Message, 0)
	for _, m := range r.store.messages {
		if messageMatches(m, specs) {
			result = append(result, copyMessage(m))
		}
	}
	r.store.mu.Unlock()

	// Deterministic order regardless of map iteration: chronological when
	// asked for, sibling order otherwise.
	if wantsCreatedAtOrder(specs) {
		sortChronological(result)
	} else {
		sortSiblings(result)
	}
	return result, nil
}

func (r *MessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, m := range r.store.messages {
		if messageMatches(m, specs) {
			count++
		}
	}
	return count, nil
}
