package providers

import (
	"context"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/textiq/textiq/internal/chat"
)

// AnthropicClient implements LLMClient by calling the Anthropic SDK
// directly.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{client: anthropic.NewClient(apiKey)}
}

// Chat implements LLMClient.
func (c *AnthropicClient) Chat(ctx context.Context, model string, history []chat.Turn, input string, opts Options) (string, error) {
	req := buildMessagesRequest(model, history, input, opts)

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", err
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text += *block.Text
		}
	}
	return text, nil
}

func buildMessagesRequest(model string, history []chat.Turn, input string, opts Options) anthropic.MessagesRequest {
	msgs := make([]anthropic.Message, 0, len(history)+1)

	for _, turn := range history {
		role := anthropic.RoleUser
		if turn.Role == chat.RoleAssistant {
			role = anthropic.RoleAssistant
		}
		msgs = append(msgs, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(turn.Content)},
		})
	}

	msgs = append(msgs, anthropic.Message{
		Role:    anthropic.RoleUser,
		Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(input)},
	})

	maxTokens := 4096
	if opts.MaxOutputTokens > 0 {
		maxTokens = opts.MaxOutputTokens
	}

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		Messages:  msgs,
		MaxTokens: maxTokens,
	}
	// 0.0 is a valid deterministic temperature; forward it rather than
	// falling back to the provider default.
	temperature := opts.Temperature
	req.Temperature = &temperature
	if opts.SystemPrompt != "" {
		req.MultiSystem = []anthropic.MessageSystemPart{{
			Type: "text",
			Text: opts.SystemPrompt,
		}}
	}
	return req
}
