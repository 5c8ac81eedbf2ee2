package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/pkg/llm"
)

type Responder struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewResponder(provider llm.LLMProvider, log logger.ILogger) *Responder {
	return &Responder{
		provider: provider,
		logger:   log,
	}
}

// Respond produces the final user-facing reply. The query and any additional
// pipeline outcome fields are sent as one JSON user message, and the
// conversation snapshot is flattened into a trailing system message so the
// model sees history without it being replayed as turns.
func (r *Responder) Respond(ctx context.Context, query string, history []llm.Message, additional map[string]interface{}) (string, error) {
	payload := map[string]interface{}{"query": query}
	for key, value := range additional {
		payload[key] = value
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal responder payload: %w", err)
	}

	messages := []llm.Message{
		{Role: constant.MessageRoleSystem, Content: constant.ResponsePrompt},
		{Role: constant.MessageRoleUser, Content: string(payloadJSON)},
		{Role: constant.MessageRoleSystem, Content: formatHistory(history)},
	}

	reply, err := r.provider.Chat(ctx, messages,
		llm.WithTemperature(0.8),
		llm.WithMaxTokens(200),
	)
	if err != nil {
		return "", fmt.Errorf("responder model call: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func formatHistory(history []llm.Message) string {
	var b strings.Builder
	b.WriteString("Chat History:\n")
	for _, msg := range history {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}
