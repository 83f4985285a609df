package probe_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hazz-dev/kbprobe/internal/llm"
	"github.com/hazz-dev/kbprobe/internal/probe"
)

type fakeLLM struct {
	text string
	err  error
}

func (f *fakeLLM) Provider() string { return "ollama" }
func (f *fakeLLM) Model() string    { return "llama3.1:70b" }

func (f *fakeLLM) Generate(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

func llmConnector(c llm.Client, err error) probe.LLMConnector {
	return func(_ context.Context) (llm.Client, error) {
		return c, err
	}
}

func TestLLMProbe_Success(t *testing.T) {
	p := probe.NewLLM(llmConnector(&fakeLLM{text: "pong"}, nil), 5*time.Second)

	result := p.Check(context.Background())
	if result.Status != probe.StatusPass {
		t.Fatalf("expected pass, got %q: %s", result.Status, result.Error)
	}
	if result.ProbeName != "llm" {
		t.Errorf("expected probe name 'llm', got %q", result.ProbeName)
	}
	if !strings.Contains(result.Detail, "provider=ollama") {
		t.Errorf("expected provider in detail, got %q", result.Detail)
	}
}

func TestLLMProbe_ConstructionFailure(t *testing.T) {
	p := probe.NewLLM(llmConnector(nil, errors.New("api_key is not set")), 5*time.Second)

	result := p.Check(context.Background())
	if result.Status != probe.StatusFail {
		t.Fatalf("expected fail, got %q", result.Status)
	}
	if !strings.Contains(result.Error, "connecting") {
		t.Errorf("expected construction error to mention connecting, got %q", result.Error)
	}
	if !strings.Contains(result.Error, "api_key is not set") {
		t.Errorf("expected original error text, got %q", result.Error)
	}
}

func TestLLMProbe_GenerateFailure(t *testing.T) {
	p := probe.NewLLM(llmConnector(&fakeLLM{err: errors.New("connection refused")}, nil), 5*time.Second)

	result := p.Check(context.Background())
	if result.Status != probe.StatusFail {
		t.Fatalf("expected fail, got %q", result.Status)
	}
	if !strings.Contains(result.Error, "generate") {
		t.Errorf("expected operation error to mention generate, got %q", result.Error)
	}
}

func TestLLMProbe_EmptyResponse(t *testing.T) {
	p := probe.NewLLM(llmConnector(&fakeLLM{text: "   "}, nil), 5*time.Second)

	result := p.Check(context.Background())
	if result.Status != probe.StatusFail {
		t.Fatalf("expected fail for whitespace-only response, got %q", result.Status)
	}
}
