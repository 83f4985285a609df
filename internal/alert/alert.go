package alert

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hazz-dev/kbprobe/internal/probe"
)

// Alerter sends webhook notifications on probe state changes.
type Alerter struct {
	webhookURL string
	cooldown   time.Duration
	client     *http.Client
	lastAlert  map[string]time.Time
	mu         sync.Mutex
	logger     *slog.Logger
}

// New creates a new Alerter. Pass nil logger to use the default logger.
func New(webhookURL string, cooldown time.Duration, logger *slog.Logger) *Alerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Alerter{
		webhookURL: webhookURL,
		cooldown:   cooldown,
		client:     &http.Client{Timeout: 10 * time.Second},
		lastAlert:  make(map[string]time.Time),
		logger:     logger,
	}
}

type webhookPayload struct {
	Probe          string `json:"probe"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status"`
	Detail         string `json:"detail"`
	Error          string `json:"error"`
	DurationMs     int64  `json:"duration_ms"`
	CheckedAt      string `json:"checked_at"`
	Source         string `json:"source"`
}

// Notify sends a webhook if the probe state has changed and the cooldown has elapsed.
func (a *Alerter) Notify(result probe.CheckResult, previousStatus *probe.Status) {
	// No previous status means first run — skip.
	if previousStatus == nil {
		return
	}
	// No state change — skip.
	if result.Status == *previousStatus {
		return
	}

	// Check cooldown.
	a.mu.Lock()
	last, exists := a.lastAlert[result.ProbeName]
	if exists && time.Since(last) < a.cooldown {
		a.mu.Unlock()
		a.logger.Info("alert suppressed by cooldown", "probe", result.ProbeName)
		return
	}
	a.lastAlert[result.ProbeName] = time.Now()
	a.mu.Unlock()

	// Send asynchronously so Notify doesn't block the scheduler.
	go a.send(result, string(*previousStatus))
}

func (a *Alerter) send(result probe.CheckResult, prevStatus string) {
	payload := webhookPayload{
		Probe:          result.ProbeName,
		Status:         string(result.Status),
		PreviousStatus: prevStatus,
		Detail:         result.Detail,
		Error:          result.Error,
		DurationMs:     result.Duration.Milliseconds(),
		CheckedAt:      result.CheckedAt.UTC().Format(time.RFC3339),
		Source:         "kbprobe",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("marshaling webhook payload", "probe", result.ProbeName, "error", err)
		return
	}

	resp, err := a.client.Post(a.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		a.logger.Error("sending webhook", "probe", result.ProbeName, "url", a.webhookURL, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		a.logger.Warn("webhook returned non-2xx status",
			"probe", result.ProbeName,
			"status", resp.StatusCode,
		)
	}
}
