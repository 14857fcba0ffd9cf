package callback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/entity"
	pkgRetry "github.com/futig/survey-agent/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() config.CallbackConnectorConfig {
	return config.CallbackConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{RequestTimeout: time.Second},
		Retry:            pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}
}

type rawEvent struct {
	Event     entity.CallbackEventType `json:"event"`
	SessionID string                   `json:"session_id"`
	Timestamp time.Time                `json:"timestamp"`
	Data      json.RawMessage          `json:"data"`
}

func capture(t *testing.T) (*httptest.Server, <-chan rawEvent) {
	t.Helper()
	received := make(chan rawEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))

		var event rawEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event
	}))
	t.Cleanup(srv.Close)
	return srv, received
}

func TestConnector_SurveyReady(t *testing.T) {
	srv, received := capture(t)

	c := NewConnector(testConfig(), zap.NewNop())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	c.SurveyReady(context.Background(), entity.CallbackTarget{URL: srv.URL, RequestID: "req-42", SessionID: "s1"}, &entity.SurveyDTO{
		SessionID: "s1",
		Questions: []entity.SurveyQuestion{{Text: "Q?", Type: entity.QuestionTypeText, Required: true}},
	})

	event := <-received
	assert.Equal(t, entity.CallbackEventSurveyReady, event.Event)
	assert.Equal(t, "s1", event.SessionID)
	assert.True(t, fixed.Equal(event.Timestamp))

	var survey entity.SurveyDTO
	require.NoError(t, json.Unmarshal(event.Data, &survey))
	assert.Equal(t, "Q?", survey.Questions[0].Text)
}

func TestConnector_SurveyFailed(t *testing.T) {
	srv, received := capture(t)

	NewConnector(testConfig(), zap.NewNop()).SurveyFailed(context.Background(),
		entity.CallbackTarget{URL: srv.URL, RequestID: "req-42", SessionID: "s2"},
		errors.New("conversation is not started"),
	)

	event := <-received
	assert.Equal(t, entity.CallbackEventSurveyFailed, event.Event)
	assert.JSONEq(t, `{"error":"conversation is not started"}`, string(event.Data))
}

func TestConnector_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewConnector(testConfig(), zap.NewNop()).Send(context.Background(), entity.CallbackTarget{URL: srv.URL}, entity.CallbackEventSurveyFailed, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestConnector_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewConnector(testConfig(), zap.NewNop()).Send(context.Background(), entity.CallbackTarget{URL: srv.URL}, entity.CallbackEventSurveyFailed, nil)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
