package bootstrap

import (
	"context"
	"log"

	"branching-chat-be/internal/config"
	"branching-chat-be/internal/constant"
	"branching-chat-be/internal/controller"
	"branching-chat-be/internal/pkg/logger"
	"branching-chat-be/internal/repository/memory"
	"branching-chat-be/internal/repository/unitofwork"
	"branching-chat-be/internal/service"
	"branching-chat-be/pkg/embedding"
	"branching-chat-be/pkg/llm/factory"

	pktNats "branching-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	ModelController        controller.IModelController
	ConversationController controller.IConversationController
	StreamController       controller.IStreamController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is optional infrastructure; lifecycle events degrade to warnings
	// when the broker is unreachable.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.EmbeddingModel,
	)
	log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)

	catalogCache := memory.NewCatalogCache()

	// 3. Services
	publisherService := service.NewPublisherService(pubSub, constant.EmbedMessageTopicName)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.EmbedMessageTopicName,
		uowFactory,
		embeddingProvider,
	)

	authService := service.NewAuthService(uowFactory, natsPub)
	modelService := service.NewModelService(uowFactory, catalogCache)
	conversationService := service.NewConversationService(uowFactory, natsPub)
	searchService := service.NewSearchService(uowFactory, embeddingProvider)

	streamService := service.NewStreamService(
		uowFactory,
		modelService,
		publisherService,
		natsPub,
		factory.NewLLMProvider,
		cfg,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		AuthController:         controller.NewAuthController(authService),
		ModelController:        controller.NewModelController(modelService),
		ConversationController: controller.NewConversationController(conversationService, searchService),
		StreamController:       controller.NewStreamController(streamService, cfg),

		ConsumerService: consumerService,
	}
}

// StartConsumers launches the background embedding pipeline.
func (c *Container) StartConsumers(ctx context.Context) {
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := c.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
}
