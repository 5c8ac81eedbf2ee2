package conversation

import (
	"context"
	"fmt"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/specification"
	"ai-docshelper-be/internal/repository/unitofwork"
	"ai-docshelper-be/pkg/llm"

	"github.com/google/uuid"
)

// Manager owns the durable, session-scoped conversation log. Every read goes
// to the backing store so the repeat detector and the responder always see
// the latest state; nothing is cached here.
type Manager struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewManager(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *Manager {
	return &Manager{
		uowFactory: uowFactory,
		logger:     log,
	}
}

// Append writes one message at the end of the session log. A storage error
// is propagated, never swallowed.
func (m *Manager) Append(ctx context.Context, sessionId uuid.UUID, role, content string, metadata map[string]interface{}) error {
	msg := &entity.ConversationMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      role,
		Content:   content,
		Metadata:  metadata,
	}

	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationMessageRepository().Create(ctx, msg); err != nil {
		return fmt.Errorf("append %s message: %w", role, err)
	}
	return nil
}

func (m *Manager) AppendUserMessage(ctx context.Context, sessionId uuid.UUID, content string) error {
	return m.Append(ctx, sessionId, constant.MessageRoleUser, content, nil)
}

func (m *Manager) AppendAssistantMessage(ctx context.Context, sessionId uuid.UUID, content string, metadata map[string]interface{}) error {
	return m.Append(ctx, sessionId, constant.MessageRoleAssistant, content, metadata)
}

func (m *Manager) AppendSystemMessage(ctx context.Context, sessionId uuid.UUID, content string) error {
	return m.Append(ctx, sessionId, constant.MessageRoleSystem, content, nil)
}

// ReadAll returns the full session log oldest-first, as of call time.
func (m *Manager) ReadAll(ctx context.Context, sessionId uuid.UUID) ([]*entity.ConversationMessage, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ConversationMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("read conversation: %w", err)
	}
	return messages, nil
}

// History returns the session log converted to provider-agnostic messages.
func (m *Manager) History(ctx context.Context, sessionId uuid.UUID) ([]llm.Message, error) {
	messages, err := m.ReadAll(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, len(messages))
	for i, msg := range messages {
		history[i] = llm.Message{Role: msg.Role, Content: msg.Content}
	}
	return history, nil
}

// Clear deletes every message of the session. Clearing an empty session is a
// no-op; the session identifier stays valid.
func (m *Manager) Clear(ctx context.Context, sessionId uuid.UUID) error {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}
	m.logger.Info("pipeline.conversation", "Session cleared", map[string]interface{}{
		"session_id": sessionId.String(),
	})
	return nil
}
