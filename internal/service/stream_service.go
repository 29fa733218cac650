package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"branching-chat-be/internal/config"
	"branching-chat-be/internal/constant"
	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/pkg/logger"
	"branching-chat-be/internal/pkg/serverutils"
	"branching-chat-be/internal/repository/specification"
	"branching-chat-be/internal/repository/unitofwork"
	"branching-chat-be/pkg/events"
	"branching-chat-be/pkg/llm"
	pktNats "branching-chat-be/pkg/nats"
	"branching-chat-be/pkg/tree"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ProviderFactory builds an LLM backend for one streaming call. Injected so
// tests can substitute a scripted provider.
type ProviderFactory func(providerType, modelName, apiKey, baseURL string) (llm.LLMProvider, error)

type IStreamService interface {
	// StreamChat runs one full streaming interaction: accept the user turn,
	// stream the provider's reply to the emitter, persist the assistant turn.
	// All outcomes, including failures, are reported through the emitter.
	StreamChat(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest, emitter events.Emitter) error
}

type streamService struct {
	uowFactory       unitofwork.RepositoryFactory
	modelService     IModelService
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	providerFactory  ProviderFactory
	cfg              *config.Config
	logger           logger.ILogger
}

func NewStreamService(
	uowFactory unitofwork.RepositoryFactory,
	modelService IModelService,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	providerFactory ProviderFactory,
	cfg *config.Config,
	sysLogger logger.ILogger,
) IStreamService {
	return &streamService{
		uowFactory:       uowFactory,
		modelService:     modelService,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		providerFactory:  providerFactory,
		cfg:              cfg,
		logger:           sysLogger,
	}
}

// acceptedTurn is the durable outcome of the synchronous first phase.
type acceptedTurn struct {
	conversation *entity.Conversation
	userNode     *entity.Message
	created      bool
}

func isBranchOrderConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "duplicate branch_order")
}

// commitTurn runs fn inside its own transaction and retries it from scratch
// when a concurrent writer won the race for the same branch_order. fn must
// recompute everything it derives from current siblings on every attempt.
func (s *streamService) commitTurn(ctx context.Context, fn func(uow unitofwork.UnitOfWork) error) error {
	var lastErr error
	for attempt := 0; attempt < constant.BranchAllocationMaxRetries; attempt++ {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		if err := fn(uow); err != nil {
			uow.Rollback()
			if isBranchOrderConflict(err) {
				lastErr = err
				continue
			}
			return err
		}
		if err := uow.Commit(); err != nil {
			if isBranchOrderConflict(err) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return serverutils.NewTransientError("branch allocation conflict, retries exhausted", lastErr)
}

// appendNode allocates the next branch order under parent and inserts the
// node, then advances the conversation's active pointer to it. Runs inside
// the caller's transaction; the sibling lock is held until commit.
func appendNode(ctx context.Context, uow unitofwork.UnitOfWork, node *entity.Message) error {
	if err := uow.MessageRepository().LockSiblings(ctx, node.ConversationId, node.ParentMessageId); err != nil {
		return err
	}
	order, err := uow.MessageRepository().NextBranchOrder(ctx, node.ConversationId, node.ParentMessageId)
	if err != nil {
		return err
	}
	node.BranchOrder = order
	if err := uow.MessageRepository().Create(ctx, node); err != nil {
		return err
	}
	nodeId := node.Id
	return uow.ConversationRepository().UpdateActiveMessage(ctx, node.ConversationId, &nodeId)
}

func (s *streamService) acceptUserTurn(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest) (*acceptedTurn, error) {
	var conversation *entity.Conversation
	created := false

	if req.ConversationId == nil {
		created = true
	} else {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		existing, err := findOwned(ctx, uow, userId, *req.ConversationId)
		if err != nil {
			return nil, err
		}
		conversation = existing

		if req.ParentMessageId != nil {
			parent, err := uow.MessageRepository().FindOne(ctx,
				specification.ByID{ID: *req.ParentMessageId},
				specification.ByConversationID{ConversationID: conversation.Id},
			)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				return nil, serverutils.NewInvalidArgumentError("parent message does not belong to conversation")
			}
		}
	}

	var userNode *entity.Message

	err := s.commitTurn(ctx, func(uow unitofwork.UnitOfWork) error {
		if created {
			conversation = &entity.Conversation{
				Id:        uuid.New(),
				UserId:    userId,
				Topic:     time.Now().Format("Jan 02, 2006 15:04"),
				CreatedAt: time.Now(),
			}
			if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
				return err
			}
		}

		// A leading system prompt becomes the root ancestor of the first
		// user turn. Existing conversations already carry their system
		// context inside the resolved path.
		var parentId *uuid.UUID
		if req.ParentMessageId != nil {
			parentId = req.ParentMessageId
		} else if !created {
			parentId = conversation.ActiveMessageId
		}

		if created && req.SystemMessage != "" {
			systemNode := &entity.Message{
				Id:             uuid.New(),
				ConversationId: conversation.Id,
				Sender:         constant.SenderSystem,
				Text:           req.SystemMessage,
				CreatedAt:      time.Now(),
			}
			if err := appendNode(ctx, uow, systemNode); err != nil {
				return err
			}
			systemId := systemNode.Id
			parentId = &systemId
		}

		userNode = &entity.Message{
			Id:              uuid.New(),
			ConversationId:  conversation.Id,
			ParentMessageId: parentId,
			Sender:          constant.SenderUser,
			Text:            req.UserText,
			CreatedAt:       time.Now(),
		}
		return appendNode(ctx, uow, userNode)
	})
	if err != nil {
		return nil, err
	}

	return &acceptedTurn{
		conversation: conversation,
		userNode:     userNode,
		created:      created,
	}, nil
}

// resolveContext rebuilds the root-to-leaf chain ending at the accepted user
// node and converts it to provider turns.
func (s *streamService) resolveContext(ctx context.Context, turn *acceptedTurn) ([]llm.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: turn.conversation.Id},
	)
	if err != nil {
		return nil, err
	}

	path, err := tree.ResolvePath(msgs, &turn.userNode.Id)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, len(path))
	for i, node := range path {
		history[i] = llm.Message{
			Role:    node.Sender,
			Content: node.Text,
		}
	}
	return history, nil
}

func (s *streamService) apiKeyFor(ctx context.Context, userId uuid.UUID, provider string) string {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err == nil && user != nil {
		switch provider {
		case constant.ProviderOpenAI:
			if user.OpenAIKey != nil && *user.OpenAIKey != "" {
				return *user.OpenAIKey
			}
		case constant.ProviderAnthropic:
			if user.AnthropicKey != nil && *user.AnthropicKey != "" {
				return *user.AnthropicKey
			}
		}
	}

	switch provider {
	case constant.ProviderOpenAI:
		return s.cfg.Keys.OpenAI
	case constant.ProviderAnthropic:
		return s.cfg.Keys.Anthropic
	}
	return ""
}

func errKindOf(err error) string {
	var appErr *serverutils.AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return events.ErrKindPrepare
}

func emitError(emitter events.Emitter, kind string) {
	_ = emitter.Emit(events.StreamSignal{Kind: events.SignalError, Value: kind})
}

func (s *streamService) publishEmbed(messageId uuid.UUID) {
	payload, err := json.Marshal(dto.PublishEmbedMessage{MessageId: messageId})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(context.Background(), payload); err != nil {
		s.logger.Warn("STREAM", "Failed to publish embed message", map[string]interface{}{
			"message_id": messageId,
			"error":      err.Error(),
		})
	}
}

func (s *streamService) StreamChat(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest, emitter events.Emitter) error {
	// Validation before any mutation: the model must exist in the catalog.
	modelCfg, err := s.modelService.Resolve(ctx, req.Model)
	if err != nil {
		emitError(emitter, errKindOf(err))
		_ = emitter.Emit(events.StreamSignal{Kind: events.SignalDone})
		return nil
	}

	provider, err := s.providerFactory(
		modelCfg.Provider,
		modelCfg.Name,
		s.apiKeyFor(ctx, userId, modelCfg.Provider),
		s.cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		emitError(emitter, events.ErrKindInvalid)
		_ = emitter.Emit(events.StreamSignal{Kind: events.SignalDone})
		return nil
	}

	// Phase one, synchronous and transactional: the user's turn is durable
	// before any provider I/O happens.
	turn, err := s.acceptUserTurn(ctx, userId, req)
	if err != nil {
		emitError(emitter, errKindOf(err))
		_ = emitter.Emit(events.StreamSignal{Kind: events.SignalDone})
		return nil
	}

	if turn.created {
		if err := emitter.Emit(events.StreamSignal{
			Kind:  events.SignalConversationCreated,
			Value: turn.conversation.Id.String(),
		}); err != nil {
			return err
		}
		s.publishLifecycleEvent(turn)
	}
	if err := emitter.Emit(events.StreamSignal{
		Kind:  events.SignalUserMessageAccepted,
		Value: turn.userNode.Id.String(),
	}); err != nil {
		return err
	}
	s.publishEmbed(turn.userNode.Id)

	history, err := s.resolveContext(ctx, turn)
	if err != nil {
		emitError(emitter, events.ErrKindPrepare)
		_ = emitter.Emit(events.StreamSignal{Kind: events.SignalDone})
		return nil
	}

	accumulated, streamErr := provider.ChatStream(ctx, history, func(fragment string) error {
		return emitter.Emit(events.StreamSignal{
			Kind:  events.SignalToken,
			Value: fragment,
		})
	}, llm.WithReasoning(modelCfg.Reasoning))

	// Finalization runs regardless of how the stream ended; a cancelled or
	// failed stream still persists whatever text arrived. The caller's
	// context may already be gone, so the writes use a fresh one.
	finalCtx := context.Background()
	if accumulated != "" {
		modelName := modelCfg.Name
		providerName := modelCfg.Provider
		parentId := turn.userNode.Id
		assistantNode := &entity.Message{
			ConversationId:  turn.conversation.Id,
			ParentMessageId: &parentId,
			Sender:          constant.SenderAssistant,
			Text:            accumulated,
			Model:           &modelName,
			Provider:        &providerName,
		}
		err := s.commitTurn(finalCtx, func(uow unitofwork.UnitOfWork) error {
			assistantNode.Id = uuid.New()
			assistantNode.CreatedAt = time.Now()
			return appendNode(finalCtx, uow, assistantNode)
		})
		if err != nil {
			// The tokens already reached the caller; only durability is lost.
			s.logger.Error("STREAM", "Failed to persist assistant message", map[string]interface{}{
				"conversation_id": turn.conversation.Id,
				"error":           err.Error(),
			})
			emitError(emitter, events.ErrKindStream)
			_ = emitter.Emit(events.StreamSignal{Kind: events.SignalDone})
			return nil
		}
		_ = emitter.Emit(events.StreamSignal{
			Kind:  events.SignalAssistantPersisted,
			Value: assistantNode.Id.String(),
		})
		s.publishEmbed(assistantNode.Id)
	}

	if streamErr != nil && !errors.Is(streamErr, context.Canceled) {
		s.logger.Warn("STREAM", "Provider stream ended with error", map[string]interface{}{
			"conversation_id": turn.conversation.Id,
			"error":           streamErr.Error(),
		})
		emitError(emitter, events.ErrKindStream)
	}

	_ = emitter.Emit(events.StreamSignal{Kind: events.SignalDone})
	return nil
}

func (s *streamService) publishLifecycleEvent(turn *acceptedTurn) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: "CONVERSATION_CREATED",
		Data: map[string]interface{}{
			"conversation_id": turn.conversation.Id,
			"user_id":         turn.conversation.UserId,
			"topic":           turn.conversation.Topic,
		},
		OccurredAt: time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("STREAM", "Failed to publish CONVERSATION_CREATED event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
