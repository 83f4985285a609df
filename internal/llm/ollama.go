package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hazz-dev/kbprobe/internal/config"
)

type ollamaClient struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func newOllamaClient(cfg config.OllamaConfig) *ollamaClient {
	return &ollamaClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (c *ollamaClient) Provider() string { return "ollama" }

func (c *ollamaClient) Model() string { return c.cfg.Model }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
	} `json:"options"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error"`
}

// Generate calls the Ollama /api/chat endpoint with a non-streaming request.
func (c *ollamaClient) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	reqBody := ollamaChatRequest{
		Model:  c.cfg.Model,
		Stream: false,
	}
	reqBody.Options.Temperature = c.cfg.Temperature
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, ollamaMessage{Role: "system", Content: systemPrompt})
	}
	reqBody.Messages = append(reqBody.Messages, ollamaMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama at %s: %w", c.cfg.BaseURL, err)
	}
	defer resp.Body.Close()

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if chatResp.Error != "" {
			return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, chatResp.Error)
		}
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	if chatResp.Message.Content == "" {
		return "", fmt.Errorf("ollama returned an empty message")
	}

	return chatResp.Message.Content, nil
}
