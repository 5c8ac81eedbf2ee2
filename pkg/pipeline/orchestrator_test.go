package pipeline

import (
	"context"
	"errors"
	"testing"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/memory"
	"ai-docshelper-be/pkg/embedding"
	"ai-docshelper-be/pkg/llm"
	"ai-docshelper-be/pkg/pipeline/conversation"
	"ai-docshelper-be/pkg/pipeline/mutation"
	"ai-docshelper-be/pkg/pipeline/retrieval"
	"ai-docshelper-be/pkg/pipeline/stage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	if len(s.responses) == 0 {
		return "", errors.New("scripted llm exhausted")
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, nil, options...)
}

type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	vec, ok := s.vectors[text]
	if !ok {
		vec = []float32{0, 0, 0}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

type testHarness struct {
	orchestrator *Orchestrator
	factory      *memory.Factory
	manager      *conversation.Manager
	llm          *scriptedLLM
}

func newHarness(responses []string, vectors map[string][]float32) *testHarness {
	log := logger.NewNopLogger()
	factory := memory.NewFactory()
	if vectors == nil {
		vectors = map[string][]float32{}
	}
	embedder := &stubEmbedder{vectors: vectors}
	provider := &scriptedLLM{responses: responses}

	manager := conversation.NewManager(factory, log)
	orchestrator := NewOrchestrator(OrchestratorConfig{
		Conversation:    manager,
		Detector:        conversation.NewDetector(embedder, manager, log),
		Classifier:      stage.NewClassifier(provider, log),
		Synthesizer:     stage.NewSynthesizer(provider, log),
		Responder:       stage.NewResponder(provider, log),
		Retriever:       retrieval.NewClient(embedder, factory, 3, log),
		Mutator:         mutation.NewClient(factory, nil, "embed.content", nil, log),
		RepeatThreshold: 0.70,
		Logger:          log,
	})
	return &testHarness{
		orchestrator: orchestrator,
		factory:      factory,
		manager:      manager,
		llm:          provider,
	}
}

func TestRunChitchat(t *testing.T) {
	h := newHarness([]string{
		`{"intent": "chitchat", "action": "none"}`,
		`{"new_content": null, "call_to_db": false}`,
		"Hello! How can I help with your docs?",
	}, nil)
	ctx := context.Background()
	sessionId := uuid.New()

	result, err := h.orchestrator.Run(ctx, sessionId, "hey there")
	assert.NoError(t, err)
	assert.Equal(t, "chitchat", result.Intent)
	assert.Empty(t, result.ChangedIds)
	assert.Empty(t, result.RetrievedRows)
	assert.False(t, result.CallToDb)
	assert.Equal(t, "Hello! How can I help with your docs?", result.FinalUserResponse)

	messages, _ := h.manager.ReadAll(ctx, sessionId)
	assert.Len(t, messages, 2)
	assert.Equal(t, constant.MessageRoleUser, messages[0].Role)
	assert.Equal(t, constant.MessageRoleAssistant, messages[1].Role)
	assert.Equal(t, result.FinalUserResponse, messages[1].Content)
}

func TestRunAddFlow(t *testing.T) {
	h := newHarness([]string{
		`{"intent": "add documentation", "action": "add"}`,
		`{"new_content": "Deploys run nightly at 02:00 UTC.", "call_to_db": true}`,
		"Noted, I saved that for you.",
	}, nil)
	ctx := context.Background()

	result, err := h.orchestrator.Run(ctx, uuid.New(), "remember that deploys run nightly at 2am UTC")
	assert.NoError(t, err)
	assert.True(t, result.CallToDb)
	assert.Len(t, result.ChangedIds, 1)

	count, _ := h.factory.ContentRepo().Count(ctx)
	assert.Equal(t, int64(1), count)
}

func TestRunRetrieveFlow(t *testing.T) {
	vectors := map[string][]float32{
		"deployment schedule": {1, 0, 0},
	}
	h := newHarness([]string{
		`{"intent": "lookup", "action": "retrieve", "refined_query": "deployment schedule"}`,
		`{"new_content": null, "call_to_db": false}`,
		"Deploys run nightly at 02:00 UTC.",
	}, vectors)
	ctx := context.Background()

	seeded := &entity.ContentRecord{
		Content:   "Deploys run nightly at 02:00 UTC.",
		Embedding: []float32{1, 0, 0},
	}
	assert.NoError(t, h.factory.ContentRepo().Create(ctx, seeded))

	result, err := h.orchestrator.Run(ctx, uuid.New(), "when do deploys happen?")
	assert.NoError(t, err)
	assert.Len(t, result.RetrievedRows, 1)
	assert.Equal(t, seeded.Id, result.RetrievedRows[0].Id)
	assert.Empty(t, result.ChangedIds)
}

func TestRunDeleteFlow(t *testing.T) {
	vectors := map[string][]float32{
		"stale deploy notes": {1, 0, 0},
	}
	h := newHarness([]string{
		`{"intent": "remove documentation", "action": "delete", "refined_query": "stale deploy notes"}`,
		`{"new_content": null, "call_to_db": true}`,
		"Done, the outdated notes are gone.",
	}, vectors)
	ctx := context.Background()

	doomed := &entity.ContentRecord{Content: "old deploy notes", Embedding: []float32{1, 0, 0}}
	assert.NoError(t, h.factory.ContentRepo().Create(ctx, doomed))

	result, err := h.orchestrator.Run(ctx, uuid.New(), "delete the stale deploy notes")
	assert.NoError(t, err)
	assert.Equal(t, []int64{doomed.Id}, result.ChangedIds)

	count, _ := h.factory.ContentRepo().Count(ctx)
	assert.Equal(t, int64(0), count)
}

func TestRunClassifierFailureFallsBack(t *testing.T) {
	h := newHarness([]string{"I have no idea what you mean."}, nil)
	ctx := context.Background()
	sessionId := uuid.New()

	result, err := h.orchestrator.Run(ctx, sessionId, "gibberish input")
	assert.NoError(t, err)
	assert.Equal(t, constant.FallbackIntent, result.Intent)
	assert.Equal(t, constant.ClassifierFallbackMessage, result.FinalUserResponse)
	assert.Empty(t, result.ChangedIds)

	messages, _ := h.manager.ReadAll(ctx, sessionId)
	assert.Len(t, messages, 2)
	assert.Equal(t, constant.ClassifierFallbackMessage, messages[1].Content)
	assert.Equal(t, true, messages[1].Metadata["fallback"])
}

func TestRunSynthesizerFailureFallsBack(t *testing.T) {
	h := newHarness([]string{
		`{"intent": "add documentation", "action": "add"}`,
		`{"new_content": "missing the boolean"}`,
	}, nil)
	ctx := context.Background()
	sessionId := uuid.New()

	result, err := h.orchestrator.Run(ctx, sessionId, "save this")
	assert.NoError(t, err)
	assert.Equal(t, "add documentation", result.Intent)
	assert.Equal(t, constant.SynthesizerFallbackMessage, result.FinalUserResponse)
	assert.False(t, result.CallToDb)

	// nothing was written to the content store
	count, _ := h.factory.ContentRepo().Count(ctx)
	assert.Equal(t, int64(0), count)
}

func TestRunRepeatedQueryShortCircuits(t *testing.T) {
	vectors := map[string][]float32{
		"how do I reset my password": {1, 0, 0},
		"password reset how?":        {0.95, 0.05, 0},
	}
	h := newHarness([]string{
		"You already asked. Use the reset link in settings.",
	}, vectors)
	ctx := context.Background()
	sessionId := uuid.New()

	assert.NoError(t, h.manager.AppendUserMessage(ctx, sessionId, "how do I reset my password"))

	result, err := h.orchestrator.Run(ctx, sessionId, "password reset how?")
	assert.NoError(t, err)
	assert.Equal(t, "You already asked. Use the reset link in settings.", result.FinalUserResponse)

	// only the responder fired, no classifier or synthesizer calls
	assert.Equal(t, 1, h.llm.calls)

	// the repeated user message is not appended, only the assistant reply
	messages, _ := h.manager.ReadAll(ctx, sessionId)
	assert.Len(t, messages, 2)
	assert.Equal(t, constant.MessageRoleUser, messages[0].Role)
	assert.Equal(t, "how do I reset my password", messages[0].Content)
	assert.Equal(t, constant.MessageRoleAssistant, messages[1].Role)
}

func TestRunMutationRequestedForReadAction(t *testing.T) {
	h := newHarness([]string{
		`{"intent": "lookup", "action": "none"}`,
		`{"new_content": "surprise content", "call_to_db": true}`,
		"Nothing was changed.",
	}, nil)
	ctx := context.Background()

	result, err := h.orchestrator.Run(ctx, uuid.New(), "just asking")
	assert.NoError(t, err)
	// call_to_db with a non-mutating action is skipped, not applied
	assert.Empty(t, result.ChangedIds)
	count, _ := h.factory.ContentRepo().Count(ctx)
	assert.Equal(t, int64(0), count)
}

func TestRunReplaceWithNoTargetsSurfaces(t *testing.T) {
	h := newHarness([]string{
		`{"intent": "update documentation", "action": "replace", "refined_query": "nothing matches"}`,
		`{"new_content": "replacement text", "call_to_db": true}`,
	}, nil)
	ctx := context.Background()

	_, err := h.orchestrator.Run(ctx, uuid.New(), "replace docs that do not exist")
	assert.ErrorIs(t, err, mutation.ErrNoTargetRecords)
}
