package constant

// Conversation message roles
const (
	MessageRoleSystem    = "system"
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Content store actions, as emitted by the intent classifier.
const (
	ActionRetrieve = "retrieve"
	ActionReplace  = "replace"
	ActionDelete   = "delete"
	ActionAdd      = "add"
	ActionNone     = "none"
)

// Fallback replies recorded as normal assistant turns when a stage's output
// fails to parse or validate.
const (
	ClassifierFallbackMessage  = "I'm having trouble understanding your request. Could you please rephrase or provide more details?"
	SynthesizerFallbackMessage = "I'm having trouble processing your request. Could you please rephrase or provide more details?"

	FallbackIntent = "fallback"
)
