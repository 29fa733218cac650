package implementation

import (
	"context"
	"errors"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/mapper"
	"branching-chat-be/internal/model"
	"branching-chat-be/internal/repository/contract"
	"branching-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ModelConfigRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ModelConfigMapper
}

func NewModelConfigRepository(db *gorm.DB) contract.ModelConfigRepository {
	return &ModelConfigRepositoryImpl{
		db:     db,
		mapper: mapper.NewModelConfigMapper(),
	}
}

func (r *ModelConfigRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ModelConfigRepositoryImpl) Create(ctx context.Context, config *entity.ModelConfig) error {
	m := r.mapper.ToModel(config)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*config = *r.mapper.ToEntity(m)
	return nil
}

func (r *ModelConfigRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ModelConfig, error) {
	var m model.ModelConfig
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ModelConfigRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ModelConfig, error) {
	var models []*model.ModelConfig
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ModelConfig, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
