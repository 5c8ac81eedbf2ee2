package bootstrap

import (
	"log"
	"time"

	"ai-docshelper-be/internal/config"
	"ai-docshelper-be/internal/controller"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/memory"
	"ai-docshelper-be/internal/repository/unitofwork"
	"ai-docshelper-be/internal/service"
	"ai-docshelper-be/pkg/embedding"
	"ai-docshelper-be/pkg/llm/factory"
	pktNats "ai-docshelper-be/pkg/nats"
	"ai-docshelper-be/pkg/pipeline"
	"ai-docshelper-be/pkg/pipeline/conversation"
	"ai-docshelper-be/pkg/pipeline/mutation"
	"ai-docshelper-be/pkg/pipeline/retrieval"
	"ai-docshelper-be/pkg/pipeline/stage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QueryController   controller.IQueryController
	ContentController controller.IContentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Infrastructure exposed for shutdown
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
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

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	sessionRegistry := memory.NewSessionRegistry()

	// 5. Pipeline
	convManager := conversation.NewManager(uowFactory, sysLogger)
	repeatDetector := conversation.NewDetector(embeddingProvider, convManager, sysLogger)
	mutator := mutation.NewClient(uowFactory, pubSub, cfg.Keys.EmbedTopic, natsPub, sysLogger)
	retriever := retrieval.NewClient(embeddingProvider, uowFactory, cfg.Pipeline.RetrievalTopN, sysLogger)

	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Conversation:    convManager,
		Detector:        repeatDetector,
		Classifier:      stage.NewClassifier(llmProvider, sysLogger),
		Synthesizer:     stage.NewSynthesizer(llmProvider, sysLogger),
		Responder:       stage.NewResponder(llmProvider, sysLogger),
		Retriever:       retriever,
		Mutator:         mutator,
		RepeatThreshold: cfg.Pipeline.RepeatThreshold,
		StageTimeout:    time.Duration(cfg.Pipeline.StageTimeoutSec) * time.Second,
		Logger:          sysLogger,
	})

	// 6. Services
	queryService := service.NewQueryService(orchestrator, convManager, sessionRegistry, sysLogger)
	contentService := service.NewContentService(mutator, uowFactory, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg, uowFactory, embeddingProvider, sysLogger)

	// 7. Controllers
	return &Container{
		QueryController:   controller.NewQueryController(queryService),
		ContentController: controller.NewContentController(contentService),
		ConsumerService:   consumerService,
		NatsPublisher:     natsPub,
		Logger:            sysLogger,
	}
}
