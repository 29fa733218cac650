package memory

import (
	"context"
	"time"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/contract"
	"branching-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ModelConfigRepository struct {
	store *Store
}

var _ contract.ModelConfigRepository = (*ModelConfigRepository)(nil)

func modelConfigMatches(m *entity.ModelConfig, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByModelName:
			if m.Name != sp.Name {
				return false
			}
		case specification.ActiveOnly:
			if !m.IsActive {
				return false
			}
		}
	}
	return true
}

func (r *ModelConfigRepository) Create(ctx context.Context, config *entity.ModelConfig) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if config.Id == uuid.Nil {
		config.Id = uuid.New()
	}
	if config.CreatedAt.IsZero() {
		config.CreatedAt = time.Now()
	}
	copied := *config
	r.store.modelConfigs = append(r.store.modelConfigs, &copied)
	return nil
}

func (r *ModelConfigRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ModelConfig, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.modelConfigs {
		if modelConfigMatches(m, specs) {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *ModelConfigRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ModelConfig, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]*entity.ModelConfig, 0)
	for _, m := range r.store.modelConfigs {
		if modelConfigMatches(m, specs) {
			copied := *m
			result = append(result, &copied)
		}
	}
	return result, nil
}
