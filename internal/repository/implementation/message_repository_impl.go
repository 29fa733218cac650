package implementation

import (
	"context"
	"errors"
	"fmt"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/mapper"
	"branching-chat-be/internal/model"
	"branching-chat-be/internal/repository/contract"
	"branching-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Delete(&model.Message{}).Error
}

// LockSiblings takes a transaction-scoped advisory lock keyed by the sibling
// group. Concurrent allocations under different parents hash to different
// keys and proceed in parallel.
func (r *MessageRepositoryImpl) LockSiblings(ctx context.Context, conversationId uuid.UUID, parentId *uuid.UUID) error {
	key := siblingLockKey(conversationId, parentId)
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key).Error
}

func siblingLockKey(conversationId uuid.UUID, parentId *uuid.UUID) string {
	if parentId == nil {
		return fmt.Sprintf("branch:%s:root", conversationId)
	}
	return fmt.Sprintf("branch:%s:%s", conversationId, parentId)
}

func (r *MessageRepositoryImpl) NextBranchOrder(ctx context.Context, conversationId uuid.UUID, parentId *uuid.UUID) (int, error) {
	var next int
	query := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Select("COALESCE(MAX(branch_order), -1) + 1").
		Where("conversation_id = ?", conversationId)
	if parentId == nil {
		query = query.Where("parent_message_id IS NULL")
	} else {
		query = query.Where("parent_message_id = ?", *parentId)
	}
	if err := query.Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func (r *MessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	var m model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(models), nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
