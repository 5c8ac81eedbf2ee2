package stage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/pkg/llm"
	"ai-docshelper-be/pkg/pipeline/retrieval"

	"github.com/go-playground/validator/v10"
)

const stageSynthesizer = "synthesizer"

// SynthesisInput is the classifier outcome plus retrieved rows, handed to the
// model as one JSON document.
type SynthesisInput struct {
	Intent           string             `json:"intent"`
	Action           *string            `json:"action"`
	OldFeature       *string            `json:"old_feature"`
	NewFeature       *string            `json:"new_feature"`
	RetrievedContext []retrieval.Record `json:"retrieved_context"`
}

// MutationDecision is the validated synthesis outcome. CallToDb gates the
// mutation step; NewContent carries the text to write when one is needed.
type MutationDecision struct {
	NewContent *string
	CallToDb   bool
}

// mutationDecisionWire distinguishes a missing call_to_db boolean, which is a
// schema violation, from an explicit false.
type mutationDecisionWire struct {
	NewContent *string `json:"new_content"`
	CallToDb   *bool   `json:"call_to_db" validate:"required"`
}

type Synthesizer struct {
	provider llm.LLMProvider
	validate *validator.Validate
	logger   logger.ILogger
}

func NewSynthesizer(provider llm.LLMProvider, log logger.ILogger) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		validate: validator.New(),
		logger:   log,
	}
}

// Synthesize asks the model whether the content store must change and what
// the new content should be.
func (s *Synthesizer) Synthesize(ctx context.Context, input SynthesisInput) (*MutationDecision, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal synthesis input: %w", err)
	}

	messages := []llm.Message{
		{Role: constant.MessageRoleSystem, Content: constant.SynthesisPrompt},
		{Role: constant.MessageRoleUser, Content: string(payload)},
	}

	raw, err := s.provider.Chat(ctx, messages,
		llm.WithTemperature(0.0),
		llm.WithMaxTokens(1500),
	)
	if err != nil {
		return nil, fmt.Errorf("synthesizer model call: %w", err)
	}

	object, ok := extractJSON(raw)
	if !ok {
		return nil, &MalformedOutputError{
			Stage: stageSynthesizer,
			Raw:   raw,
			Err:   errors.New("no JSON object in model output"),
		}
	}

	var wire mutationDecisionWire
	if err := json.Unmarshal([]byte(object), &wire); err != nil {
		return nil, &MalformedOutputError{Stage: stageSynthesizer, Raw: raw, Err: err}
	}
	if err := s.validate.Struct(&wire); err != nil {
		return nil, &SchemaValidationError{Stage: stageSynthesizer, Err: err}
	}

	decision := &MutationDecision{
		NewContent: wire.NewContent,
		CallToDb:   *wire.CallToDb,
	}
	s.logger.Debug("pipeline.synthesizer", "Mutation decision synthesized", map[string]interface{}{
		"call_to_db":      decision.CallToDb,
		"has_new_content": decision.NewContent != nil,
	})
	return decision, nil
}
