package conversation

import (
	"context"
	"testing"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestManagerAppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(memory.NewFactory(), logger.NewNopLogger())
	sessionId := uuid.New()

	assert.NoError(t, manager.AppendUserMessage(ctx, sessionId, "first question"))
	assert.NoError(t, manager.AppendAssistantMessage(ctx, sessionId, "first answer", map[string]interface{}{"intent": "greeting"}))
	assert.NoError(t, manager.AppendUserMessage(ctx, sessionId, "second question"))

	messages, err := manager.ReadAll(ctx, sessionId)
	assert.NoError(t, err)
	assert.Len(t, messages, 3)

	assert.Equal(t, constant.MessageRoleUser, messages[0].Role)
	assert.Equal(t, "first question", messages[0].Content)
	assert.Equal(t, constant.MessageRoleAssistant, messages[1].Role)
	assert.Equal(t, "greeting", messages[1].Metadata["intent"])
	assert.Equal(t, "second question", messages[2].Content)
}

func TestManagerSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(memory.NewFactory(), logger.NewNopLogger())
	sessionA := uuid.New()
	sessionB := uuid.New()

	assert.NoError(t, manager.AppendUserMessage(ctx, sessionA, "only in A"))

	messagesB, err := manager.ReadAll(ctx, sessionB)
	assert.NoError(t, err)
	assert.Empty(t, messagesB)
}

func TestManagerHistoryConversion(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(memory.NewFactory(), logger.NewNopLogger())
	sessionId := uuid.New()

	assert.NoError(t, manager.AppendUserMessage(ctx, sessionId, "hello"))
	assert.NoError(t, manager.AppendAssistantMessage(ctx, sessionId, "hi there", nil))

	history, err := manager.History(ctx, sessionId)
	assert.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, constant.MessageRoleUser, history[0].Role)
	assert.Equal(t, "hi there", history[1].Content)
}

func TestManagerClear(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(memory.NewFactory(), logger.NewNopLogger())
	sessionId := uuid.New()

	assert.NoError(t, manager.AppendUserMessage(ctx, sessionId, "to be cleared"))
	assert.NoError(t, manager.Clear(ctx, sessionId))

	messages, err := manager.ReadAll(ctx, sessionId)
	assert.NoError(t, err)
	assert.Empty(t, messages)

	// clearing an already-empty session is a no-op
	assert.NoError(t, manager.Clear(ctx, sessionId))
}
