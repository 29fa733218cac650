package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/specification"
	"branching-chat-be/internal/repository/unitofwork"
	"branching-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.MessageRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Message Repository", func(t *testing.T) {
		count, err := uow.MessageRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Message count: %d", count)
	})

	t.Run("Check Transactional Branch Allocation", func(t *testing.T) {
		ctx := context.Background()

		userId := uuid.New()
		user := &entity.User{
			Id:       userId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
		}
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		conversationId := uuid.New()
		conversation := &entity.Conversation{
			Id:     conversationId,
			UserId: userId,
			Topic:  "Integration Conversation",
		}
		err = uow.ConversationRepository().Create(ctx, conversation)
		assert.NoError(t, err)

		// Transaction Test: allocate a root branch order under the sibling
		// lock, then roll back so nothing survives the run.
		txUow := uowFactory.NewUnitOfWork(ctx)
		err = txUow.Begin(ctx)
		assert.NoError(t, err)
		defer txUow.Rollback()

		err = txUow.MessageRepository().LockSiblings(ctx, conversationId, nil)
		assert.NoError(t, err)

		order, err := txUow.MessageRepository().NextBranchOrder(ctx, conversationId, nil)
		assert.NoError(t, err)
		assert.Equal(t, 0, order)

		msg := &entity.Message{
			Id:             uuid.New(),
			ConversationId: conversationId,
			Sender:         "user",
			Text:           "integration probe",
			BranchOrder:    order,
		}
		err = txUow.MessageRepository().Create(ctx, msg)
		assert.NoError(t, err)

		found, err := txUow.MessageRepository().FindOne(ctx, specification.ByID{ID: msg.Id})
		assert.NoError(t, err)
		assert.NotNil(t, found)
	})
}
