package service

import (
	"context"

	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/pkg/serverutils"
	"branching-chat-be/internal/repository/memory"
	"branching-chat-be/internal/repository/specification"
	"branching-chat-be/internal/repository/unitofwork"
)

type IModelService interface {
	GetModels(ctx context.Context) ([]*dto.ModelResponse, error)
	// Resolve maps a model name to its catalog entry; unknown or disabled
	// models are rejected.
	Resolve(ctx context.Context, name string) (*entity.ModelConfig, error)
}

type modelService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.CatalogCache
}

func NewModelService(uowFactory unitofwork.RepositoryFactory, cache *memory.CatalogCache) IModelService {
	return &modelService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

func (s *modelService) catalog(ctx context.Context) ([]*entity.ModelConfig, error) {
	if configs, found := s.cache.Get(); found {
		return configs, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	configs, err := uow.ModelConfigRepository().FindAll(ctx, specification.ActiveOnly{})
	if err != nil {
		return nil, err
	}
	s.cache.Save(configs)
	return configs, nil
}

func (s *modelService) GetModels(ctx context.Context) ([]*dto.ModelResponse, error) {
	configs, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ModelResponse, len(configs))
	for i, cfg := range configs {
		result[i] = &dto.ModelResponse{
			Name:      cfg.Name,
			Provider:  cfg.Provider,
			Reasoning: cfg.Reasoning,
		}
	}
	return result, nil
}

func (s *modelService) Resolve(ctx context.Context, name string) (*entity.ModelConfig, error) {
	configs, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	for _, cfg := range configs {
		if cfg.Name == name {
			return cfg, nil
		}
	}
	return nil, serverutils.NewInvalidArgumentError("unknown model: " + name)
}
