package stage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/pkg/llm"

	"github.com/go-playground/validator/v10"
)

const stageClassifier = "classifier"

// IntentDecision is the structured outcome of intent classification. Action
// is nil when the model omits it, which is treated the same as "none".
type IntentDecision struct {
	Intent       string  `json:"intent" validate:"required"`
	Action       *string `json:"action" validate:"omitempty,oneof=retrieve replace delete add none"`
	OldFeature   *string `json:"old_feature"`
	NewFeature   *string `json:"new_feature"`
	RefinedQuery *string `json:"refined_query"`
}

// NormalizedAction returns the lowercased action, or ActionNone when absent.
func (d *IntentDecision) NormalizedAction() string {
	if d.Action == nil || *d.Action == "" {
		return constant.ActionNone
	}
	return strings.ToLower(*d.Action)
}

// RequiresRetrieval reports whether the decided action needs existing records
// looked up before synthesis.
func (d *IntentDecision) RequiresRetrieval() bool {
	switch d.NormalizedAction() {
	case constant.ActionRetrieve, constant.ActionReplace, constant.ActionDelete:
		return true
	default:
		return false
	}
}

// RetrievalQuery prefers the model's refined query over the raw user text.
func (d *IntentDecision) RetrievalQuery(raw string) string {
	if d.RefinedQuery != nil && strings.TrimSpace(*d.RefinedQuery) != "" {
		return *d.RefinedQuery
	}
	return raw
}

type Classifier struct {
	provider llm.LLMProvider
	validate *validator.Validate
	logger   logger.ILogger
}

func NewClassifier(provider llm.LLMProvider, log logger.ILogger) *Classifier {
	return &Classifier{
		provider: provider,
		validate: validator.New(),
		logger:   log,
	}
}

// Classify runs the intent model over the raw query and decodes its answer
// into a validated IntentDecision.
func (c *Classifier) Classify(ctx context.Context, query string) (*IntentDecision, error) {
	messages := []llm.Message{
		{Role: constant.MessageRoleSystem, Content: constant.IntentPrompt},
		{Role: constant.MessageRoleUser, Content: query},
	}

	raw, err := c.provider.Chat(ctx, messages,
		llm.WithTemperature(0.0),
		llm.WithMaxTokens(500),
	)
	if err != nil {
		return nil, fmt.Errorf("classifier model call: %w", err)
	}

	payload, ok := extractJSON(raw)
	if !ok {
		return nil, &MalformedOutputError{
			Stage: stageClassifier,
			Raw:   raw,
			Err:   errors.New("no JSON object in model output"),
		}
	}

	var decision IntentDecision
	if err := json.Unmarshal([]byte(payload), &decision); err != nil {
		return nil, &MalformedOutputError{Stage: stageClassifier, Raw: raw, Err: err}
	}

	if decision.Action != nil {
		lowered := strings.ToLower(strings.TrimSpace(*decision.Action))
		decision.Action = &lowered
	}

	if err := c.validate.Struct(&decision); err != nil {
		return nil, &SchemaValidationError{Stage: stageClassifier, Err: err}
	}

	c.logger.Debug("pipeline.classifier", "Intent classified", map[string]interface{}{
		"intent": decision.Intent,
		"action": decision.NormalizedAction(),
	})
	return &decision, nil
}
