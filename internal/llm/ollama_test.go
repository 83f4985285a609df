package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazz-dev/kbprobe/internal/config"
	"github.com/hazz-dev/kbprobe/internal/llm"
)

func newOllama(t *testing.T, baseURL string) llm.Client {
	t.Helper()
	c, err := llm.New(config.LLMConfig{
		Provider: "ollama",
		Ollama: config.OllamaConfig{
			BaseURL:     baseURL,
			Model:       "llama3.1:70b",
			Temperature: 0.2,
		},
	})
	if err != nil {
		t.Fatalf("building ollama client: %v", err)
	}
	return c
}

func TestOllama_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			Stream bool `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "llama3.1:70b" {
			t.Errorf("expected configured model, got %q", req.Model)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("expected [system, user] messages, got %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "pong"},
		})
	}))
	defer srv.Close()

	c := newOllama(t, srv.URL)
	text, err := c.Generate(context.Background(), "Say 'pong'", "Answer in one word.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "pong" {
		t.Errorf("expected 'pong', got %q", text)
	}
}

func TestOllama_Generate_NoSystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected single user message, got %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "hi"},
		})
	}))
	defer srv.Close()

	c := newOllama(t, srv.URL)
	if _, err := c.Generate(context.Background(), "hello", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOllama_Generate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "model 'llama3.1:70b' not found"})
	}))
	defer srv.Close()

	c := newOllama(t, srv.URL)
	_, err := c.Generate(context.Background(), "hi", "")
	if err == nil {
		t.Fatal("expected error for server error response")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected server error text, got %q", err.Error())
	}
}

func TestOllama_Generate_EmptyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": ""},
		})
	}))
	defer srv.Close()

	c := newOllama(t, srv.URL)
	if _, err := c.Generate(context.Background(), "hi", ""); err == nil {
		t.Fatal("expected error for empty message content")
	}
}

func TestOllama_Generate_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newOllama(t, url)
	if _, err := c.Generate(context.Background(), "hi", ""); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}
