package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hazz-dev/kbprobe/internal/llm"
)

const (
	llmProbeName       = "llm"
	healthPrompt       = "Say 'pong' and nothing else."
	healthSystemPrompt = "You are a health check assistant. Answer in one word."
)

// LLMConnector builds a connected LLM client. Construction runs inside the
// probe so that bad configuration or credentials surface as a failed check.
type LLMConnector func(ctx context.Context) (llm.Client, error)

type llmProbe struct {
	connect LLMConnector
	timeout time.Duration
}

// NewLLM returns the LLM probe. Each check connects, issues one short
// generation, and verifies a non-empty response arrives within timeout.
func NewLLM(connect LLMConnector, timeout time.Duration) Probe {
	return &llmProbe{connect: connect, timeout: timeout}
}

func (p *llmProbe) Name() string { return llmProbeName }

func (p *llmProbe) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		ProbeName: llmProbeName,
		CheckedAt: start,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client, err := p.connect(ctx)
	if err != nil {
		result.Status = StatusFail
		result.Error = fmt.Sprintf("connecting: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	text, err := client.Generate(ctx, healthPrompt, healthSystemPrompt)
	result.Duration = time.Since(start)
	if err != nil {
		result.Status = StatusFail
		result.Error = fmt.Sprintf("generate: %v", err)
		return result
	}
	if strings.TrimSpace(text) == "" {
		result.Status = StatusFail
		result.Error = "generate: empty response"
		return result
	}

	result.Status = StatusPass
	result.Detail = fmt.Sprintf("provider=%s model=%s", client.Provider(), client.Model())
	return result
}
