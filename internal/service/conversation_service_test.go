package service

import (
	"context"
	"testing"
	"time"

	"branching-chat-be/internal/constant"
	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/pkg/serverutils"
	"branching-chat-be/internal/repository/memory"
	"branching-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversationFixture struct {
	factory *memory.RepositoryFactory
	service IConversationService
	userId  uuid.UUID
	clock   time.Time
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()
	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)

	userId := uuid.New()
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.UserRepository().Create(context.Background(), &entity.User{
		Id:    userId,
		Email: "owner@example.com",
	}))

	return &conversationFixture{
		factory: factory,
		service: NewConversationService(factory, nil),
		userId:  userId,
		clock:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *conversationFixture) newConversation(t *testing.T) *entity.Conversation {
	t.Helper()
	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    f.userId,
		Topic:     "Jun 01, 2025 09:00",
		CreatedAt: f.tick(),
	}
	uow := f.factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.ConversationRepository().Create(context.Background(), conversation))
	return conversation
}

func (f *conversationFixture) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *conversationFixture) addMessage(t *testing.T, conversationId uuid.UUID, parent *entity.Message, sender, text string, branchOrder int) *entity.Message {
	t.Helper()
	m := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Sender:         sender,
		Text:           text,
		BranchOrder:    branchOrder,
		CreatedAt:      f.tick(),
	}
	if parent != nil {
		parentId := parent.Id
		m.ParentMessageId = &parentId
	}
	uow := f.factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.MessageRepository().Create(context.Background(), m))
	return m
}

func TestGetChildrenSiblingOrder(t *testing.T) {
	f := newConversationFixture(t)
	conversation := f.newConversation(t)

	system := f.addMessage(t, conversation.Id, nil, constant.SenderSystem, "sys", 0)
	first := f.addMessage(t, conversation.Id, system, constant.SenderUser, "first", 0)
	second := f.addMessage(t, conversation.Id, system, constant.SenderUser, "second", 1)

	children, err := f.service.GetChildren(context.Background(), f.userId, conversation.Id, system.Id)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, first.Id, children[0].Id)
	assert.Equal(t, second.Id, children[1].Id)
}

func TestSetActiveThenDefaultPathEndsAtIt(t *testing.T) {
	f := newConversationFixture(t)
	conversation := f.newConversation(t)

	root := f.addMessage(t, conversation.Id, nil, constant.SenderUser, "question", 0)
	answerA := f.addMessage(t, conversation.Id, root, constant.SenderAssistant, "answer A", 0)
	f.addMessage(t, conversation.Id, root, constant.SenderAssistant, "answer B", 1)

	err := f.service.SetActive(context.Background(), f.userId, &dto.SetActiveMessageRequest{
		Id:        conversation.Id,
		MessageId: answerA.Id,
	})
	require.NoError(t, err)

	path, err := f.service.GetPath(context.Background(), f.userId, conversation.Id, nil)
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, root.Id, path[0].Id)
	assert.Equal(t, answerA.Id, path[len(path)-1].Id)
}

func TestSetActiveRejectsForeignMessage(t *testing.T) {
	f := newConversationFixture(t)
	mine := f.newConversation(t)
	other := f.newConversation(t)
	foreign := f.addMessage(t, other.Id, nil, constant.SenderUser, "elsewhere", 0)

	err := f.service.SetActive(context.Background(), f.userId, &dto.SetActiveMessageRequest{
		Id:        mine.Id,
		MessageId: foreign.Id,
	})
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.KindInvalidArgument, appErr.Kind)
}

func TestGetPathExplicitLeafBeatsActivePointer(t *testing.T) {
	f := newConversationFixture(t)
	conversation := f.newConversation(t)

	root := f.addMessage(t, conversation.Id, nil, constant.SenderUser, "question", 0)
	answerA := f.addMessage(t, conversation.Id, root, constant.SenderAssistant, "answer A", 0)
	answerB := f.addMessage(t, conversation.Id, root, constant.SenderAssistant, "answer B", 1)

	require.NoError(t, f.service.SetActive(context.Background(), f.userId, &dto.SetActiveMessageRequest{
		Id:        conversation.Id,
		MessageId: answerA.Id,
	}))

	path, err := f.service.GetPath(context.Background(), f.userId, conversation.Id, &answerB.Id)
	require.NoError(t, err)
	assert.Equal(t, answerB.Id, path[len(path)-1].Id)
}

func TestGetPathNoActivePointerReturnsRoots(t *testing.T) {
	f := newConversationFixture(t)
	conversation := f.newConversation(t)

	system := f.addMessage(t, conversation.Id, nil, constant.SenderSystem, "sys", 0)
	user := f.addMessage(t, conversation.Id, nil, constant.SenderUser, "first", 1)
	f.addMessage(t, conversation.Id, user, constant.SenderAssistant, "reply", 0)

	path, err := f.service.GetPath(context.Background(), f.userId, conversation.Id, nil)
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, system.Id, path[0].Id)
	assert.Equal(t, user.Id, path[1].Id)
}

func TestGetTreeMaterializesBranches(t *testing.T) {
	f := newConversationFixture(t)
	conversation := f.newConversation(t)

	root := f.addMessage(t, conversation.Id, nil, constant.SenderUser, "question", 0)
	f.addMessage(t, conversation.Id, root, constant.SenderAssistant, "answer A", 0)
	f.addMessage(t, conversation.Id, root, constant.SenderAssistant, "answer B", 1)

	roots, err := f.service.GetTree(context.Background(), f.userId, conversation.Id)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, root.Id, roots[0].Id)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "answer A", roots[0].Children[0].Text)
	assert.Equal(t, "answer B", roots[0].Children[1].Text)
}

func TestDeleteCascadesMessages(t *testing.T) {
	f := newConversationFixture(t)
	conversation := f.newConversation(t)

	root := f.addMessage(t, conversation.Id, nil, constant.SenderUser, "question", 0)
	f.addMessage(t, conversation.Id, root, constant.SenderAssistant, "answer", 0)

	require.NoError(t, f.service.Delete(context.Background(), f.userId, conversation.Id))

	uow := f.factory.NewUnitOfWork(context.Background())
	gone, err := uow.ConversationRepository().FindOne(context.Background(), specification.ByID{ID: conversation.Id})
	require.NoError(t, err)
	assert.Nil(t, gone)

	remaining, err := uow.MessageRepository().Count(context.Background(),
		specification.ByConversationID{ConversationID: conversation.Id},
	)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestConversationOwnershipEnforced(t *testing.T) {
	f := newConversationFixture(t)
	conversation := f.newConversation(t)

	stranger := uuid.New()
	_, err := f.service.GetTree(context.Background(), stranger, conversation.Id)
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.KindNotFound, appErr.Kind)
}
