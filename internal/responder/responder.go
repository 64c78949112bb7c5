// Package responder produces the assistant's next turn from the full
// conversation context. It never raises to the caller: every failure
// path collapses into a user-displayable string that the session
// controller appends as if it were an assistant reply.
package responder

import (
	"context"

	"github.com/textiq/textiq/internal/chat"
	"github.com/textiq/textiq/internal/providers"
)

// maxOutputTokens is the fixed reply length cap forwarded to the
// provider.
const maxOutputTokens = 2048

// Fixed advisory strings returned in place of a reply.
const (
	MsgClientUnavailable = "❌ Chat client unavailable. Check your provider configuration."
	MsgNotConfigured     = "❌ API key not configured. Add GEMINI_API_KEY to your .env file."
	MsgRateLimited       = "⏳ Usage limit reached. Please wait a moment or get a new API key."
)

// Responder generates replies through an LLMClient. It is stateless
// with respect to the conversation: it never mutates the turns it is
// given.
type Responder struct {
	client     providers.LLMClient
	configured bool
}

// New creates a responder. client may be nil when no client could be
// built; configured reports whether a plausible credential was found.
func New(client providers.LLMClient, configured bool) *Responder {
	return &Responder{client: client, configured: configured}
}

// Generate returns the assistant's reply for the conversation, whose
// last turn is the newest user message. All prior turns are forwarded
// as history. Failures come back as advisory strings, never as errors;
// no network call is attempted when the credential is missing.
func (r *Responder) Generate(ctx context.Context, turns []chat.Turn, systemPrompt, model string, temperature float32) string {
	if !r.configured {
		return MsgNotConfigured
	}
	if r.client == nil {
		return MsgClientUnavailable
	}
	if len(turns) == 0 {
		return errorString(errEmptyConversation)
	}

	history := turns[:len(turns)-1]
	input := turns[len(turns)-1].Content

	reply, err := r.client.Chat(ctx, model, history, input, providers.Options{
		SystemPrompt:    systemPrompt,
		Temperature:     temperature,
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		if isRateLimit(err) {
			return MsgRateLimited
		}
		return errorString(err)
	}
	if reply == "" {
		return errorString(errEmptyReply)
	}
	return reply
}
