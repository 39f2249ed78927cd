// Package alert fans significant pipeline events out to configured handlers.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/basismind/basismind/pkg/logger"
)

// Level orders alert severities.
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

var levelPriority = map[Level]int{
	LevelInfo:     0,
	LevelWarning:  1,
	LevelError:    2,
	LevelCritical: 3,
}

// AtLeast reports whether l is at or above min.
func (l Level) AtLeast(min Level) bool {
	return levelPriority[l] >= levelPriority[min]
}

// Alert is one notification.
type Alert struct {
	Level     Level                  `json:"level"`
	Source    string                 `json:"source"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Handler delivers alerts to one destination.
type Handler interface {
	Send(ctx context.Context, alert Alert) error
	Name() string
}

// Manager dispatches alerts to every registered handler. Handler failures
// are logged, never propagated; alerting must not break the pipeline.
type Manager struct {
	mu       sync.RWMutex
	handlers []Handler
	log      *logger.Logger
}

// NewManager creates an empty manager.
func NewManager(log *logger.Logger) *Manager {
	return &Manager{log: log}
}

// Register adds a handler.
func (m *Manager) Register(handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
}

// Notify sends the alert through every handler.
func (m *Manager) Notify(ctx context.Context, alert Alert) {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	m.mu.RLock()
	handlers := make([]Handler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Send(ctx, alert); err != nil {
			m.log.WithError(err).WithField("handler", handler.Name()).Warn("Alert delivery failed")
		}
	}
}

// Notifyf builds and sends an alert with a formatted message.
func (m *Manager) Notifyf(ctx context.Context, level Level, source, format string, args ...interface{}) {
	m.Notify(ctx, Alert{
		Level:   level,
		Source:  source,
		Message: fmt.Sprintf(format, args...),
	})
}

// LogHandler writes alerts to the structured log.
type LogHandler struct {
	log *logger.Logger
}

// NewLogHandler creates a handler over the given logger.
func NewLogHandler(log *logger.Logger) *LogHandler {
	return &LogHandler{log: log}
}

func (h *LogHandler) Name() string { return "log" }

func (h *LogHandler) Send(_ context.Context, alert Alert) error {
	entry := h.log.WithFields(map[string]interface{}{
		"source":  alert.Source,
		"details": alert.Details,
	})
	switch alert.Level {
	case LevelCritical, LevelError:
		entry.Error(alert.Message)
	case LevelWarning:
		entry.Warn(alert.Message)
	default:
		entry.Info(alert.Message)
	}
	return nil
}

// WebhookHandler POSTs alerts at or above a minimum level as JSON.
type WebhookHandler struct {
	url      string
	minLevel Level
	client   *http.Client
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(url string, minLevel Level) *WebhookHandler {
	return &WebhookHandler{
		url:      url,
		minLevel: minLevel,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *WebhookHandler) Name() string { return "webhook" }

func (h *WebhookHandler) Send(ctx context.Context, alert Alert) error {
	if !alert.Level.AtLeast(h.minLevel) {
		return nil
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
