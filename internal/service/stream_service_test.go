package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"branching-chat-be/internal/config"
	"branching-chat-be/internal/constant"
	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/pkg/logger"
	"branching-chat-be/internal/repository/memory"
	"branching-chat-be/internal/repository/specification"
	"branching-chat-be/pkg/events"
	"branching-chat-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replays a fixed fragment sequence, optionally ending with
// an error to mimic a broken or cancelled stream.
type scriptedProvider struct {
	fragments []string
	finalErr  error
}

func (p *scriptedProvider) ChatStream(ctx context.Context, history []llm.Message, handler llm.StreamHandler, opts ...llm.Option) (string, error) {
	var accumulated strings.Builder
	for _, fragment := range p.fragments {
		accumulated.WriteString(fragment)
		if err := handler(fragment); err != nil {
			return accumulated.String(), err
		}
	}
	return accumulated.String(), p.finalErr
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return strings.Join(p.fragments, ""), p.finalErr
}

type recordingEmitter struct {
	mu      sync.Mutex
	signals []events.StreamSignal
}

func (r *recordingEmitter) Emit(signal events.StreamSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, signal)
	return nil
}

func (r *recordingEmitter) values(kind string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var values []string
	for _, s := range r.signals {
		if s.Kind == kind {
			values = append(values, s.Value)
		}
	}
	return values
}

type streamFixture struct {
	store    *memory.Store
	factory  *memory.RepositoryFactory
	service  IStreamService
	provider *scriptedProvider
	userId   uuid.UUID
}

func newStreamFixture(t *testing.T, provider *scriptedProvider) *streamFixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.ModelConfigRepository().Create(ctx, &entity.ModelConfig{
		Name:     "test-model",
		Provider: constant.ProviderOpenAI,
		IsActive: true,
	}))

	userId := uuid.New()
	require.NoError(t, uow.UserRepository().Create(ctx, &entity.User{
		Id:    userId,
		Email: "chat@example.com",
	}))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := NewPublisherService(pubSub, constant.EmbedMessageTopicName)
	modelService := NewModelService(factory, memory.NewCatalogCache())

	providerFactory := func(providerType, modelName, apiKey, baseURL string) (llm.LLMProvider, error) {
		return provider, nil
	}

	sysLogger := logger.NewZapLogger(filepath.Join(t.TempDir(), "app.log"), false)

	return &streamFixture{
		store:    store,
		factory:  factory,
		service:  NewStreamService(factory, modelService, publisher, nil, providerFactory, &config.Config{}, sysLogger),
		provider: provider,
		userId:   userId,
	}
}

func (f *streamFixture) messages(t *testing.T, conversationId uuid.UUID) []*entity.Message {
	t.Helper()
	uow := f.factory.NewUnitOfWork(context.Background())
	msgs, err := uow.MessageRepository().FindAll(context.Background(),
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at"},
	)
	require.NoError(t, err)
	return msgs
}

func (f *streamFixture) conversation(t *testing.T, id uuid.UUID) *entity.Conversation {
	t.Helper()
	uow := f.factory.NewUnitOfWork(context.Background())
	c, err := uow.ConversationRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func TestStreamChatPersistsAccumulatedResponse(t *testing.T) {
	fixture := newStreamFixture(t, &scriptedProvider{fragments: []string{"He", "llo"}})
	emitter := &recordingEmitter{}

	err := fixture.service.StreamChat(context.Background(), fixture.userId, &dto.StreamChatRequest{
		UserText:      "Hi there",
		SystemMessage: "You are helpful.",
		Model:         "test-model",
	}, emitter)
	require.NoError(t, err)

	conversationIds := emitter.values(events.SignalConversationCreated)
	require.Len(t, conversationIds, 1)
	conversationId, err := uuid.Parse(conversationIds[0])
	require.NoError(t, err)

	assert.Equal(t, []string{"He", "llo"}, emitter.values(events.SignalToken))
	require.Len(t, emitter.values(events.SignalDone), 1)
	assert.Empty(t, emitter.values(events.SignalError))

	msgs := fixture.messages(t, conversationId)
	require.Len(t, msgs, 3)

	system, user, assistant := msgs[0], msgs[1], msgs[2]
	assert.Equal(t, constant.SenderSystem, system.Sender)
	assert.True(t, system.IsRoot())
	assert.Equal(t, 0, system.BranchOrder)

	assert.Equal(t, constant.SenderUser, user.Sender)
	require.NotNil(t, user.ParentMessageId)
	assert.Equal(t, system.Id, *user.ParentMessageId)
	assert.Equal(t, 0, user.BranchOrder)

	assert.Equal(t, constant.SenderAssistant, assistant.Sender)
	assert.Equal(t, "Hello", assistant.Text)
	require.NotNil(t, assistant.ParentMessageId)
	assert.Equal(t, user.Id, *assistant.ParentMessageId)
	assert.Equal(t, 0, assistant.BranchOrder)
	require.NotNil(t, assistant.Model)
	assert.Equal(t, "test-model", *assistant.Model)

	persisted := emitter.values(events.SignalAssistantPersisted)
	require.Len(t, persisted, 1)
	assert.Equal(t, assistant.Id.String(), persisted[0])

	conversation := fixture.conversation(t, conversationId)
	require.NotNil(t, conversation.ActiveMessageId)
	assert.Equal(t, assistant.Id, *conversation.ActiveMessageId)
}

func TestStreamChatCancellationPersistsPartialText(t *testing.T) {
	fixture := newStreamFixture(t, &scriptedProvider{
		fragments: []string{"Par", "ti"},
		finalErr:  context.Canceled,
	})
	emitter := &recordingEmitter{}

	err := fixture.service.StreamChat(context.Background(), fixture.userId, &dto.StreamChatRequest{
		UserText: "Tell me something",
		Model:    "test-model",
	}, emitter)
	require.NoError(t, err)

	conversationIds := emitter.values(events.SignalConversationCreated)
	require.Len(t, conversationIds, 1)
	conversationId, err := uuid.Parse(conversationIds[0])
	require.NoError(t, err)

	msgs := fixture.messages(t, conversationId)
	require.Len(t, msgs, 2)

	assistant := msgs[1]
	assert.Equal(t, constant.SenderAssistant, assistant.Sender)
	assert.Equal(t, "Parti", assistant.Text)

	conversation := fixture.conversation(t, conversationId)
	require.NotNil(t, conversation.ActiveMessageId)
	assert.Equal(t, assistant.Id, *conversation.ActiveMessageId)

	// Cancellation is not reported as a stream error.
	assert.Empty(t, emitter.values(events.SignalError))
	require.Len(t, emitter.values(events.SignalDone), 1)
}

func TestStreamChatProviderFailureBeforeFirstToken(t *testing.T) {
	fixture := newStreamFixture(t, &scriptedProvider{
		fragments: nil,
		finalErr:  assert.AnError,
	})
	emitter := &recordingEmitter{}

	err := fixture.service.StreamChat(context.Background(), fixture.userId, &dto.StreamChatRequest{
		UserText: "Hi",
		Model:    "test-model",
	}, emitter)
	require.NoError(t, err)

	conversationIds := emitter.values(events.SignalConversationCreated)
	require.Len(t, conversationIds, 1)
	conversationId, err := uuid.Parse(conversationIds[0])
	require.NoError(t, err)

	// The user turn survives; no assistant node is written for zero text.
	msgs := fixture.messages(t, conversationId)
	require.Len(t, msgs, 1)
	assert.Equal(t, constant.SenderUser, msgs[0].Sender)
	assert.Empty(t, emitter.values(events.SignalAssistantPersisted))

	// Active pointer still references the user node.
	conversation := fixture.conversation(t, conversationId)
	require.NotNil(t, conversation.ActiveMessageId)
	assert.Equal(t, msgs[0].Id, *conversation.ActiveMessageId)

	assert.Equal(t, []string{events.ErrKindStream}, emitter.values(events.SignalError))
	require.Len(t, emitter.values(events.SignalDone), 1)
}

func TestStreamChatUnknownModelRejectedBeforeMutation(t *testing.T) {
	fixture := newStreamFixture(t, &scriptedProvider{fragments: []string{"x"}})
	emitter := &recordingEmitter{}

	err := fixture.service.StreamChat(context.Background(), fixture.userId, &dto.StreamChatRequest{
		UserText: "Hi",
		Model:    "no-such-model",
	}, emitter)
	require.NoError(t, err)

	assert.Empty(t, emitter.values(events.SignalConversationCreated))
	assert.Equal(t, []string{events.ErrKindInvalid}, emitter.values(events.SignalError))
}

func TestStreamChatConcurrentBranchesGetDistinctOrders(t *testing.T) {
	fixture := newStreamFixture(t, &scriptedProvider{fragments: []string{"ok"}})

	// Seed one conversation with a single user turn to branch from.
	seed := &recordingEmitter{}
	err := fixture.service.StreamChat(context.Background(), fixture.userId, &dto.StreamChatRequest{
		UserText: "root question",
		Model:    "test-model",
	}, seed)
	require.NoError(t, err)

	conversationId, err := uuid.Parse(seed.values(events.SignalConversationCreated)[0])
	require.NoError(t, err)
	parentId, err := uuid.Parse(seed.values(events.SignalUserMessageAccepted)[0])
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			emitter := &recordingEmitter{}
			convId := conversationId
			parent := parentId
			_ = fixture.service.StreamChat(context.Background(), fixture.userId, &dto.StreamChatRequest{
				UserText:        "what if I'd asked differently?",
				Model:           "test-model",
				ConversationId:  &convId,
				ParentMessageId: &parent,
			}, emitter)
		}()
	}
	wg.Wait()

	uow := fixture.factory.NewUnitOfWork(context.Background())
	children, err := uow.MessageRepository().FindAll(context.Background(),
		specification.ByConversationID{ConversationID: conversationId},
		specification.ByParentMessageID{ParentMessageID: parentId},
	)
	require.NoError(t, err)

	// The seed assistant reply is also a child of the parent, so the sibling
	// set is writers+1 nodes whose branch orders must be exactly {0..n}.
	require.Len(t, children, writers+1)

	seen := make(map[int]bool)
	for _, child := range children {
		assert.False(t, seen[child.BranchOrder], "duplicate branch_order %d", child.BranchOrder)
		seen[child.BranchOrder] = true
	}
	for i := 0; i < len(children); i++ {
		assert.True(t, seen[i], "missing branch_order %d", i)
	}
}
