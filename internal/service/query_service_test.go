package service

import (
	"context"
	"errors"
	"testing"

	"ai-docshelper-be/internal/dto"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/memory"
	"ai-docshelper-be/pkg/embedding"
	"ai-docshelper-be/pkg/llm"
	"ai-docshelper-be/pkg/pipeline"
	"ai-docshelper-be/pkg/pipeline/conversation"
	"ai-docshelper-be/pkg/pipeline/mutation"
	"ai-docshelper-be/pkg/pipeline/retrieval"
	"ai-docshelper-be/pkg/pipeline/stage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type loopLLM struct {
	responses []string
	next      int
}

func (l *loopLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(l.responses) == 0 {
		return "", errors.New("no scripted responses")
	}
	resp := l.responses[l.next%len(l.responses)]
	l.next++
	return resp, nil
}

func (l *loopLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return l.Chat(ctx, nil, options...)
}

type fixedEmbedder struct{}

func (fixedEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	// distinct texts hash to distinct axes crudely via length parity
	vec := []float32{1, 0, 0}
	if len(text)%2 == 1 {
		vec = []float32{0, 1, 0}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func newTestQueryService() (IQueryService, *conversation.Manager) {
	log := logger.NewNopLogger()
	factory := memory.NewFactory()
	provider := &loopLLM{responses: []string{
		`{"intent": "chitchat", "action": "none"}`,
		`{"new_content": null, "call_to_db": false}`,
		"Happy to help!",
	}}

	manager := conversation.NewManager(factory, log)
	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Conversation:    manager,
		Detector:        conversation.NewDetector(fixedEmbedder{}, manager, log),
		Classifier:      stage.NewClassifier(provider, log),
		Synthesizer:     stage.NewSynthesizer(provider, log),
		Responder:       stage.NewResponder(provider, log),
		Retriever:       retrieval.NewClient(fixedEmbedder{}, factory, 3, log),
		Mutator:         mutation.NewClient(factory, nil, "embed.content", nil, log),
		RepeatThreshold: 0.99,
		Logger:          log,
	})
	return NewQueryService(orchestrator, manager, memory.NewSessionRegistry(), log), manager
}

func TestHandleQueryCreatesSession(t *testing.T) {
	svc, _ := newTestQueryService()

	res, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "hello"})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.SessionId)
	assert.Equal(t, "Happy to help!", res.Response)
}

func TestHandleQueryKeepsProvidedSession(t *testing.T) {
	svc, manager := newTestQueryService()
	sessionId := uuid.New()

	res, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{SessionId: &sessionId, Query: "hello!!"})
	assert.NoError(t, err)
	assert.Equal(t, sessionId, res.SessionId)

	messages, err := manager.ReadAll(context.Background(), sessionId)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestGetHistoryAndClear(t *testing.T) {
	svc, manager := newTestQueryService()
	ctx := context.Background()
	sessionId := uuid.New()

	assert.NoError(t, manager.AppendUserMessage(ctx, sessionId, "a question"))

	history, err := svc.GetHistory(ctx, sessionId)
	assert.NoError(t, err)
	assert.Len(t, history.Messages, 1)
	assert.Equal(t, "a question", history.Messages[0].Content)

	assert.NoError(t, svc.ClearHistory(ctx, sessionId))
	history, err = svc.GetHistory(ctx, sessionId)
	assert.NoError(t, err)
	assert.Empty(t, history.Messages)

	// clearing twice stays a no-op
	assert.NoError(t, svc.ClearHistory(ctx, sessionId))
}
