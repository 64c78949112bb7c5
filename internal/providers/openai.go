package providers

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/textiq/textiq/internal/chat"
)

// geminiBaseURL is Google's OpenAI-compatible endpoint for Gemini
// models.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// OpenAICompatClient implements LLMClient against any
// OpenAI-compatible chat completions API.
type OpenAICompatClient struct {
	client *openai.Client
}

// NewOpenAICompatClient creates a client for an OpenAI-compatible API.
// An empty baseURL targets OpenAI itself.
func NewOpenAICompatClient(apiKey, baseURL string) *OpenAICompatClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAICompatClient{client: openai.NewClientWithConfig(config)}
}

// NewGeminiClient creates a client for Gemini models via the
// OpenAI-compatible endpoint.
func NewGeminiClient(apiKey string) *OpenAICompatClient {
	return NewOpenAICompatClient(apiKey, geminiBaseURL)
}

// Chat implements LLMClient.
func (c *OpenAICompatClient) Chat(ctx context.Context, model string, history []chat.Turn, input string, opts Options) (string, error) {
	req := buildChatCompletionRequest(model, history, input, opts)

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from provider")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildChatCompletionRequest(model string, history []chat.Turn, input string, opts Options) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)

	if opts.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: opts.SystemPrompt,
		})
	}

	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
	}
	if opts.MaxOutputTokens > 0 {
		req.MaxTokens = opts.MaxOutputTokens
	}
	// Always forward the temperature: 0.0 is a valid deterministic
	// setting, not "use the provider default".
	temperature := opts.Temperature
	req.Temperature = &temperature
	return req
}
