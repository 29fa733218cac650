package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/entity"
	"branching-chat-be/internal/repository/specification"
	"branching-chat-be/internal/repository/unitofwork"
	"branching-chat-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal embed payload: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	node, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: payload.MessageId})
	if err != nil {
		log.Printf("[ERROR] Failed to get message %s: %v", payload.MessageId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if node == nil {
		// Message deleted before the embed ran. Nothing to do.
		msg.Ack()
		return
	}
	if node.Text == "" {
		msg.Ack()
		return
	}

	document := node.Sender + ": " + node.Text

	resp, err := cs.embeddingProvider.Generate(document, "RETRIEVAL_DOCUMENT")
	if err != nil {
		log.Printf("[ERROR] Failed to generate embedding for message %s: %v", payload.MessageId, err)
		msg.Nack()
		return
	}

	record := &entity.MessageEmbedding{
		Id:             uuid.New(),
		MessageId:      node.Id,
		ConversationId: node.ConversationId,
		Document:       document,
		EmbeddingValue: pgvector.NewVector(resp.Embedding.Values),
		CreatedAt:      time.Now(),
	}
	if err := uow.MessageEmbeddingRepository().Create(ctx, record); err != nil {
		log.Printf("[ERROR] Failed to store embedding for message %s: %v", payload.MessageId, err)
		msg.Nack()
		return
	}

	msg.Ack()
}
