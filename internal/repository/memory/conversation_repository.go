package memory

import (
	"context"
	"sort"
	"time"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/contract"
	"branching-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository struct {
	store *Store
}

var _ contract.ConversationRepository = (*ConversationRepository)(nil)

func conversationMatches(c *entity.Conversation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if c.Id != sp.ID {
				return false
			}
		case specification.UserOwnedBy:
			if c.UserId != sp.UserID {
				return false
			}
		}
	}
	return true
}

func (r *ConversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if conversation.Id == uuid.Nil {
		conversation.Id = uuid.New()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	r.store.conversations[conversation.Id] = copyConversation(conversation)
	return nil
}

func (r *ConversationRepository) UpdateTopic(ctx context.Context, id uuid.UUID, topic string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.conversations[id]; ok {
		c.Topic = topic
	}
	return nil
}

func (r *ConversationRepository) UpdateActiveMessage(ctx context.Context, id uuid.UUID, messageId *uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.conversations[id]; ok {
		c.ActiveMessageId = messageId
	}
	return nil
}

func (r *ConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.conversations, id)
	return nil
}

func (r *ConversationRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.conversations {
		if conversationMatches(c, specs) {
			return copyConversation(c), nil
		}
	}
	return nil, nil
}

func (r *ConversationRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	r.store.mu.Lock()
	result := make([]*entity.Conversation, 0)
	for _, c := range r.store.conversations {
		if conversationMatches(c, specs) {
			result = append(result, copyConversation(c))
		}
	}
	r.store.mu.Unlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt) // newest first
	})
	return result, nil
}

func (r *ConversationRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, c := range r.store.conversations {
		if conversationMatches(c, specs) {
			count++
		}
	}
	return count, nil
}
