package stage

import (
	"context"
	"strings"
	"testing"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestRespondMessageLayout(t *testing.T) {
	provider := &scriptedLLM{responses: []string{"Here you go!"}}
	responder := NewResponder(provider, logger.NewNopLogger())

	history := []llm.Message{
		{Role: constant.MessageRoleUser, Content: "earlier question"},
		{Role: constant.MessageRoleAssistant, Content: "earlier answer"},
	}
	reply, err := responder.Respond(context.Background(), "what changed?", history, map[string]interface{}{
		"intent": "lookup",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Here you go!", reply)

	assert.Len(t, provider.calls, 1)
	sent := provider.calls[0]
	assert.Len(t, sent, 3)

	// system prompt, then the request payload, then history as a system turn
	assert.Equal(t, constant.MessageRoleSystem, sent[0].Role)
	assert.Equal(t, constant.MessageRoleUser, sent[1].Role)
	assert.Contains(t, sent[1].Content, `"query":"what changed?"`)
	assert.Contains(t, sent[1].Content, `"intent":"lookup"`)
	assert.Equal(t, constant.MessageRoleSystem, sent[2].Role)
	assert.True(t, strings.HasPrefix(sent[2].Content, "Chat History:"))
	assert.Contains(t, sent[2].Content, "user: earlier question")
	assert.Contains(t, sent[2].Content, "assistant: earlier answer")
}

func TestRespondTrimsWhitespace(t *testing.T) {
	provider := &scriptedLLM{responses: []string{"  padded reply \n"}}
	responder := NewResponder(provider, logger.NewNopLogger())

	reply, err := responder.Respond(context.Background(), "hi", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, "padded reply", reply)
}
