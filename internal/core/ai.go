package core

import (
	"context"

	"github.com/obinna-dev/drivesage/internal/models"
)

// Message is one role-tagged segment of a context window.
type Message struct {
	Role    models.Role
	Content string
}

// LLMProvider abstracts the chat-completion capability. A leading
// system-role message carries the instruction for the whole exchange;
// implementations decide how to encode it for their provider.
type LLMProvider interface {
	Complete(ctx context.Context, msgs []Message, maxTokens int32, temperature float32) (string, error)
}
