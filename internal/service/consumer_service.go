package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-docshelper-be/internal/config"
	"ai-docshelper-be/internal/dto"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/specification"
	"ai-docshelper-be/internal/repository/unitofwork"
	"ai-docshelper-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the embedding topic: for each queued record id it
// re-reads the row, embeds its current content and stores the vector. Rows
// written by mutations stay embedding-less until this catches up.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	expectedDim       int
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         cfg.Keys.EmbedTopic,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		expectedDim:       cfg.Ai.EmbeddingDim,
		logger:            log,
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
	var payload dto.PublishEmbedContentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("service.consumer", "Failed to unmarshal embed message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed, retrying cannot help
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.ContentRepository().FindOne(ctx, specification.ByRecordID{ID: payload.RecordId})
	if err != nil {
		cs.logger.Error("service.consumer", "Failed to load content record", map[string]interface{}{
			"record_id": payload.RecordId, "error": err.Error(),
		})
		msg.Nack()
		return
	}
	if record == nil {
		// deleted before we got to it
		msg.Ack()
		return
	}

	res, err := cs.embeddingProvider.Generate(record.Content, embedding.TaskRetrievalDocument)
	if err != nil {
		cs.logger.Error("service.consumer", "Failed to generate embedding", map[string]interface{}{
			"record_id": payload.RecordId, "error": err.Error(),
		})
		msg.Nack()
		return
	}

	values := res.Embedding.Values
	if len(values) != cs.expectedDim {
		cs.logger.Error("service.consumer", "Embedding dimension mismatch", map[string]interface{}{
			"record_id": payload.RecordId,
			"got":       len(values),
			"want":      cs.expectedDim,
			"error":     fmt.Sprintf("provider returned %d dims", len(values)),
		})
		msg.Ack() // config problem, not retriable
		return
	}

	if err := uow.ContentRepository().SetEmbedding(ctx, payload.RecordId, values); err != nil {
		cs.logger.Error("service.consumer", "Failed to store embedding", map[string]interface{}{
			"record_id": payload.RecordId, "error": err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("service.consumer", "Content record embedded", map[string]interface{}{
		"record_id": payload.RecordId,
	})
	msg.Ack()
}
