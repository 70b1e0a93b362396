// Package assistant runs a chat with an external completion provider
// that designs patches for the synthesizer and applies the patches it
// returns through the graph's mutation path.
package assistant

import "context"

// Role is the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Provider is a completion backend.
type Provider interface {
	// Name returns the provider name, e.g. "openai".
	Name() string
	// Complete returns the assistant's reply to conversation. The first
	// message is the system prompt.
	Complete(ctx context.Context, model string, conversation []Message) (string, error)
	// Models lists the models the backend offers.
	Models(ctx context.Context) ([]string, error)
}
