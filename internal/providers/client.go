package providers

import (
	"context"

	"github.com/textiq/textiq/internal/chat"
)

// Options carries the knobs forwarded to the provider SDK.
type Options struct {
	SystemPrompt    string
	Temperature     float32
	MaxOutputTokens int
}

// LLMClient abstracts the chosen SDK. The conversation arrives
// pre-partitioned: history is every prior turn, input is the newest
// user message.
type LLMClient interface {
	Chat(ctx context.Context, model string, history []chat.Turn, input string, opts Options) (string, error)
}
