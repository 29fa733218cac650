package service

import (
	"context"
	"errors"
	"log"
	"time"

	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/pkg/serverutils"
	"branching-chat-be/internal/repository/specification"
	"branching-chat-be/internal/repository/unitofwork"
	"branching-chat-be/pkg/events"
	pktNats "branching-chat-be/pkg/nats"
	"branching-chat-be/pkg/tree"

	"github.com/google/uuid"
)

type IConversationService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
	Rename(ctx context.Context, userId uuid.UUID, req *dto.RenameConversationRequest) (*dto.RenameConversationResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	GetMessages(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.MessageResponse, error)
	GetTree(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]dto.TreeNodeResponse, error)
	GetChildren(ctx context.Context, userId uuid.UUID, conversationId, messageId uuid.UUID) ([]*dto.MessageResponse, error)
	GetPath(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, leafId *uuid.UUID) ([]*dto.MessageResponse, error)
	GetActive(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ActiveMessageResponse, error)
	SetActive(ctx context.Context, userId uuid.UUID, req *dto.SetActiveMessageRequest) error
}

type conversationService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IConversationService {
	return &conversationService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func messageToDTO(m *entity.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:              m.Id,
		ConversationId:  m.ConversationId,
		ParentMessageId: m.ParentMessageId,
		Sender:          m.Sender,
		Text:            m.Text,
		BranchOrder:     m.BranchOrder,
		Model:           m.Model,
		Provider:        m.Provider,
		CreatedAt:       m.CreatedAt,
	}
}

func messagesToDTOs(msgs []*entity.Message) []*dto.MessageResponse {
	result := make([]*dto.MessageResponse, len(msgs))
	for i, m := range msgs {
		result[i] = messageToDTO(m)
	}
	return result
}

func treeNodeToDTO(n *tree.Node) dto.TreeNodeResponse {
	node := dto.TreeNodeResponse{
		MessageResponse: *messageToDTO(n.Message),
		Children:        make([]dto.TreeNodeResponse, 0, len(n.Children)),
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, treeNodeToDTO(child))
	}
	return node
}

// findOwned loads a conversation and verifies ownership in one query.
func findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, conversationId uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, serverutils.NewNotFoundError("conversation not found")
	}
	return conversation, nil
}

func (s *conversationService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ConversationResponse, len(conversations))
	for i, c := range conversations {
		result[i] = &dto.ConversationResponse{
			Id:              c.Id,
			Topic:           c.Topic,
			ActiveMessageId: c.ActiveMessageId,
			CreatedAt:       c.CreatedAt,
			UpdatedAt:       c.UpdatedAt,
		}
	}
	return result, nil
}

func (s *conversationService) Rename(ctx context.Context, userId uuid.UUID, req *dto.RenameConversationRequest) (*dto.RenameConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}
	if err := uow.ConversationRepository().UpdateTopic(ctx, conversation.Id, req.Topic); err != nil {
		return nil, err
	}
	return &dto.RenameConversationResponse{Id: conversation.Id}, nil
}

// Delete removes the conversation and everything hanging off it in one
// transaction. The active pointer is cleared first so the message rows can go
// without tripping the conversation's foreign key.
func (s *conversationService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findOwned(ctx, uow, userId, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ConversationRepository().UpdateActiveMessage(ctx, id, nil); err != nil {
		return err
	}
	if err := uow.MessageEmbeddingRepository().DeleteByConversationId(ctx, id); err != nil {
		return err
	}
	if err := uow.MessageRepository().DeleteByConversationId(ctx, id); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "CONVERSATION_DELETED",
			Data: map[string]interface{}{
				"conversation_id": id,
				"user_id":         userId,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish CONVERSATION_DELETED event: %v", err)
		}
	}
	return nil
}

func (s *conversationService) GetMessages(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findOwned(ctx, uow, userId, id); err != nil {
		return nil, err
	}

	msgs, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	return messagesToDTOs(msgs), nil
}

func (s *conversationService) GetTree(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]dto.TreeNodeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findOwned(ctx, uow, userId, id); err != nil {
		return nil, err
	}

	msgs, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: id},
	)
	if err != nil {
		return nil, err
	}

	roots := tree.Materialize(msgs)
	result := make([]dto.TreeNodeResponse, 0, len(roots))
	for _, root := range roots {
		result = append(result, treeNodeToDTO(root))
	}
	return result, nil
}

func (s *conversationService) GetChildren(ctx context.Context, userId uuid.UUID, conversationId, messageId uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findOwned(ctx, uow, userId, conversationId); err != nil {
		return nil, err
	}

	parent, err := uow.MessageRepository().FindOne(ctx,
		specification.ByID{ID: messageId},
		specification.ByConversationID{ConversationID: conversationId},
	)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, serverutils.NewNotFoundError("message not found")
	}

	children, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.ByParentMessageID{ParentMessageID: messageId},
		specification.SiblingOrder{},
	)
	if err != nil {
		return nil, err
	}
	return messagesToDTOs(children), nil
}

func (s *conversationService) GetPath(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, leafId *uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := findOwned(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	// The caller's explicit leaf beats the stored active pointer.
	if leafId == nil {
		leafId = conversation.ActiveMessageId
	}

	msgs, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
	)
	if err != nil {
		return nil, err
	}

	path, err := tree.ResolvePath(msgs, leafId)
	if err != nil {
		if errors.Is(err, tree.ErrNodeNotFound) {
			return nil, serverutils.NewNotFoundError("message not found")
		}
		return nil, err
	}
	return messagesToDTOs(path), nil
}

func (s *conversationService) GetActive(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ActiveMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return &dto.ActiveMessageResponse{ActiveMessageId: conversation.ActiveMessageId}, nil
}

func (s *conversationService) SetActive(ctx context.Context, userId uuid.UUID, req *dto.SetActiveMessageRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}

	// The pointer may only reference a message of this conversation.
	target, err := uow.MessageRepository().FindOne(ctx,
		specification.ByID{ID: req.MessageId},
		specification.ByConversationID{ConversationID: conversation.Id},
	)
	if err != nil {
		return err
	}
	if target == nil {
		return serverutils.NewInvalidArgumentError("message does not belong to conversation")
	}

	messageId := target.Id
	return uow.ConversationRepository().UpdateActiveMessage(ctx, conversation.Id, &messageId)
}
