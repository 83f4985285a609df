package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hazz-dev/kbprobe/internal/config"
)

type openaiClient struct {
	cfg    config.OpenAIConfig
	client *openai.Client
}

func newOpenAIClient(cfg config.OpenAIConfig) (*openaiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api_key is not set (config or OPENAI_API_KEY)")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &openaiClient{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (c *openaiClient) Provider() string { return "openai" }

func (c *openaiClient) Model() string { return c.cfg.Model }

// Generate calls the chat completions endpoint and returns the first choice.
func (c *openaiClient) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
	})
	if err != nil {
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("openai request error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	return fmt.Errorf("calling openai: %w", err)
}
