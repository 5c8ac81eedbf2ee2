package mutation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/dto"
	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/unitofwork"
	"ai-docshelper-be/pkg/events"
	pknats "ai-docshelper-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ErrNoTargetRecords means a replace or delete resolved zero target rows.
// The caller gets the error instead of a silent no-op.
var ErrNoTargetRecords = errors.New("no target records resolved for mutation")

// FailedError wraps a storage failure during an attempted mutation.
type FailedError struct {
	Action string
	Err    error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s mutation failed: %v", e.Action, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Client applies content-store mutations in-process. New and replaced rows
// are written without an embedding; the embedding pipeline fills it in
// asynchronously via the embed topic. Lifecycle events go to NATS on a
// best-effort basis.
type Client struct {
	uowFactory     unitofwork.RepositoryFactory
	embedPublisher message.Publisher
	embedTopic     string
	eventPublisher *pknats.Publisher
	logger         logger.ILogger
}

func NewClient(
	uowFactory unitofwork.RepositoryFactory,
	embedPublisher message.Publisher,
	embedTopic string,
	eventPublisher *pknats.Publisher,
	log logger.ILogger,
) *Client {
	return &Client{
		uowFactory:     uowFactory,
		embedPublisher: embedPublisher,
		embedTopic:     embedTopic,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Apply executes one mutation and returns the ids actually changed.
// Replace targets only the first resolved id; delete targets all of them.
func (c *Client) Apply(ctx context.Context, action string, recordIds []int64, newContent *string) ([]int64, error) {
	switch action {
	case constant.ActionAdd:
		return c.add(ctx, newContent)
	case constant.ActionReplace:
		return c.replace(ctx, recordIds, newContent)
	case constant.ActionDelete:
		return c.delete(ctx, recordIds)
	default:
		return nil, &FailedError{Action: action, Err: fmt.Errorf("unsupported action %q", action)}
	}
}

func (c *Client) add(ctx context.Context, newContent *string) ([]int64, error) {
	if newContent == nil || *newContent == "" {
		return nil, &FailedError{Action: constant.ActionAdd, Err: errors.New("no content to add")}
	}

	record := &entity.ContentRecord{Content: *newContent}
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentRepository().Create(ctx, record); err != nil {
		return nil, &FailedError{Action: constant.ActionAdd, Err: err}
	}

	c.RequestEmbedding(record.Id)
	c.publishEvent(ctx, events.ContentAdded, []int64{record.Id})
	c.logger.Info("pipeline.mutation", "Content record added", map[string]interface{}{
		"record_id": record.Id,
	})
	return []int64{record.Id}, nil
}

func (c *Client) replace(ctx context.Context, recordIds []int64, newContent *string) ([]int64, error) {
	if len(recordIds) == 0 {
		return nil, ErrNoTargetRecords
	}
	if newContent == nil || *newContent == "" {
		return nil, &FailedError{Action: constant.ActionReplace, Err: errors.New("no replacement content")}
	}

	targetId := recordIds[0]
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentRepository().UpdateContent(ctx, targetId, *newContent); err != nil {
		return nil, &FailedError{Action: constant.ActionReplace, Err: err}
	}

	c.RequestEmbedding(targetId)
	c.publishEvent(ctx, events.ContentReplaced, []int64{targetId})
	c.logger.Info("pipeline.mutation", "Content record replaced", map[string]interface{}{
		"record_id": targetId,
	})
	return []int64{targetId}, nil
}

func (c *Client) delete(ctx context.Context, recordIds []int64) ([]int64, error) {
	if len(recordIds) == 0 {
		return nil, ErrNoTargetRecords
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.ContentRepository().DeleteByIDs(ctx, recordIds)
	if err != nil {
		return nil, &FailedError{Action: constant.ActionDelete, Err: err}
	}
	if len(deleted) == 0 {
		return nil, ErrNoTargetRecords
	}

	c.publishEvent(ctx, events.ContentDeleted, deleted)
	c.logger.Info("pipeline.mutation", "Content records deleted", map[string]interface{}{
		"record_ids": deleted,
	})
	return deleted, nil
}

// RequestEmbedding enqueues the record for asynchronous embedding. A publish
// failure is logged, not returned; the row stays queryable by id either way.
func (c *Client) RequestEmbedding(recordId int64) {
	if c.embedPublisher == nil {
		return
	}

	payload, err := json.Marshal(dto.PublishEmbedContentMessage{RecordId: recordId})
	if err != nil {
		c.logger.Error("pipeline.mutation", "Failed to marshal embed message", map[string]interface{}{
			"record_id": recordId, "error": err.Error(),
		})
		return
	}
	if err := c.embedPublisher.Publish(c.embedTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		c.logger.Error("pipeline.mutation", "Failed to publish embed message", map[string]interface{}{
			"record_id": recordId, "error": err.Error(),
		})
	}
}

func (c *Client) publishEvent(ctx context.Context, eventType string, recordIds []int64) {
	if c.eventPublisher == nil {
		return
	}
	if err := c.eventPublisher.Publish(ctx, events.NewContentEvent(eventType, recordIds)); err != nil {
		c.logger.Warn("pipeline.mutation", "Failed to publish content event", map[string]interface{}{
			"event_type": eventType, "error": err.Error(),
		})
	}
}
