package memory

import (
	"fmt"
	"sort"
	"sync"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// Store is an in-memory stand-in for the relational node store. It backs the
// service-level tests; the production wiring uses the GORM implementations.
type Store struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*entity.Conversation
	messages      map[uuid.UUID]*entity.Message
	users         map[uuid.UUID]*entity.User
	modelConfigs  []*entity.ModelConfig
	embeddings    []*entity.MessageEmbedding

	lockMu       sync.Mutex
	siblingLocks map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		conversations: make(map[uuid.UUID]*entity.Conversation),
		messages:      make(map[uuid.UUID]*entity.Message),
		users:         make(map[uuid.UUID]*entity.User),
		siblingLocks:  make(map[string]*sync.Mutex),
	}
}

func (s *Store) siblingLock(conversationId uuid.UUID, parentId *uuid.UUID) *sync.Mutex {
	key := fmt.Sprintf("%s:root", conversationId)
	if parentId != nil {
		key = fmt.Sprintf("%s:%s", conversationId, parentId)
	}
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if _, ok := s.siblingLocks[key]; !ok {
		s.siblingLocks[key] = &sync.Mutex{}
	}
	return s.siblingLocks[key]
}

// messageMatches interprets the query specifications the services actually
// use. The GORM implementations translate the same specifications to SQL.
func messageMatches(m *entity.Message, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if m.Id != sp.ID {
				return false
			}
		case specification.ByConversationID:
			if m.ConversationId != sp.ConversationID {
				return false
			}
		case specification.ByParentMessageID:
			if m.ParentMessageId == nil || *m.ParentMessageId != sp.ParentMessageID {
				return false
			}
		case specification.RootsOnly:
			if m.ParentMessageId != nil {
				return false
			}
		}
	}
	return true
}

func wantsCreatedAtOrder(specs []specification.Specification) bool {
	for _, spec := range specs {
		if sp, ok := spec.(specification.OrderBy); ok && sp.Field == "created_at" {
			return true
		}
	}
	return false
}

func sortChronological(msgs []*entity.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

func sortSiblings(msgs []*entity.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].BranchOrder != msgs[j].BranchOrder {
			return msgs[i].BranchOrder < msgs[j].BranchOrder
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

func copyMessage(m *entity.Message) *entity.Message {
	c := *m
	return &c
}

func copyConversation(c *entity.Conversation) *entity.Conversation {
	cc := *c
	return &cc
}
