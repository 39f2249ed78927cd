package alert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basismind/basismind/pkg/logger"
)

type recordingHandler struct {
	alerts []Alert
	err    error
}

func (h *recordingHandler) Send(_ context.Context, alert Alert) error {
	if h.err != nil {
		return h.err
	}
	h.alerts = append(h.alerts, alert)
	return nil
}

func (h *recordingHandler) Name() string { return "recording" }

func TestLevelAtLeast(t *testing.T) {
	assert.True(t, LevelCritical.AtLeast(LevelWarning))
	assert.True(t, LevelWarning.AtLeast(LevelWarning))
	assert.False(t, LevelInfo.AtLeast(LevelError))
}

func TestManagerFansOut(t *testing.T) {
	first := &recordingHandler{}
	second := &recordingHandler{}
	mgr := NewManager(logger.NewNop())
	mgr.Register(first)
	mgr.Register(second)

	mgr.Notifyf(context.Background(), LevelWarning, "ingest", "missing rate %.0f%%", 12.0)

	require.Len(t, first.alerts, 1)
	require.Len(t, second.alerts, 1)
	assert.Equal(t, "missing rate 12%", first.alerts[0].Message)
	assert.Equal(t, "ingest", first.alerts[0].Source)
	assert.False(t, first.alerts[0].Timestamp.IsZero())
}

func TestManagerSurvivesHandlerFailure(t *testing.T) {
	broken := &recordingHandler{err: errors.New("smtp down")}
	working := &recordingHandler{}
	mgr := NewManager(logger.NewNop())
	mgr.Register(broken)
	mgr.Register(working)

	mgr.Notify(context.Background(), Alert{Level: LevelError, Source: "engine", Message: "boom"})

	assert.Len(t, working.alerts, 1)
}

func TestWebhookHandlerPosts(t *testing.T) {
	var received Alert
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	handler := NewWebhookHandler(server.URL, LevelWarning)
	err := handler.Send(context.Background(), Alert{
		Level:   LevelCritical,
		Source:  "decision",
		Message: "logistics override active",
	})

	require.NoError(t, err)
	assert.Equal(t, LevelCritical, received.Level)
	assert.Equal(t, "logistics override active", received.Message)
}

func TestWebhookHandlerFiltersBelowMinLevel(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	handler := NewWebhookHandler(server.URL, LevelError)
	err := handler.Send(context.Background(), Alert{Level: LevelInfo, Message: "routine"})

	require.NoError(t, err)
	assert.False(t, called)
}

func TestWebhookHandlerReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	handler := NewWebhookHandler(server.URL, LevelInfo)
	err := handler.Send(context.Background(), Alert{Level: LevelError, Message: "boom"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
