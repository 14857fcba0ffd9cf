package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/entity"
	pkgRetry "github.com/futig/survey-agent/internal/pkg/retry"
	pkghttp "github.com/futig/survey-agent/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedGenerator struct {
	calls   atomic.Int32
	errs    []error
	success string
}

func (g *scriptedGenerator) Generate(context.Context, string) (string, error) {
	n := int(g.calls.Add(1)) - 1
	if n < len(g.errs) {
		return "", g.errs[n]
	}
	return g.success, nil
}

func fastRetry(attempts uint) pkgRetry.RetryConfig {
	return pkgRetry.RetryConfig{Attempts: attempts, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestConnector_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))

		var req entity.LLMGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Prompt)
		assert.Equal(t, SystemPrompt, req.SystemPrompt)
		assert.Equal(t, "test-model", req.Model)

		_ = json.NewEncoder(w).Encode(entity.LLMGenerateResponse{Text: `["Why?"]`})
	}))
	defer srv.Close()

	cfg := config.LLMConnectorConfig{
		Model:            "test-model",
		GenerateEndpoint: "/generate",
		HTTPClientConfig: config.HTTPClientConfig{
			Url:            srv.URL,
			Token:          "svc-token",
			RequestTimeout: time.Second,
		},
	}

	text, err := NewConnector(cfg, zap.NewNop()).Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `["Why?"]`, text)
}

func TestConnector_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	cfg := config.LLMConnectorConfig{HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL, RequestTimeout: time.Second}}
	_, err := NewConnector(cfg, zap.NewNop()).Generate(context.Background(), "hello")
	assert.Error(t, err)
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": " [\"Which region?\"] "}}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`))
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator(config.LLMConnectorConfig{
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
	})

	text, err := gen.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `["Which region?"]`, text)
}

func TestRetrying_RecoversFromTransientErrors(t *testing.T) {
	gen := &scriptedGenerator{
		errs:    []error{&pkghttp.HTTPError{StatusCode: http.StatusBadGateway}, &pkghttp.NetworkError{Err: errors.New("reset")}},
		success: "ok",
	}

	text, err := NewRetrying(gen, fastRetry(3)).Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), gen.calls.Load())
}

func TestRetrying_StopsOnClientError(t *testing.T) {
	badRequest := &pkghttp.HTTPError{StatusCode: http.StatusBadRequest, Message: "bad prompt"}
	gen := &scriptedGenerator{errs: []error{badRequest}, success: "never"}

	_, err := NewRetrying(gen, fastRetry(5)).Generate(context.Background(), "p")

	var httpErr *pkghttp.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestRetrying_GivesUpAfterAttempts(t *testing.T) {
	down := errors.New("provider down")
	gen := &scriptedGenerator{errs: []error{down, down, down, down}}

	_, err := NewRetrying(gen, fastRetry(2)).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, down)
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestMockGenerator_Survey(t *testing.T) {
	prompt := "Survey Purpose: hotel stays\n" +
		"Generate exactly 4 survey questions that address the specified purpose.\n" +
		"Include a mix of the following question types: rating, multiple_choice."

	text, err := NewMockGenerator(zap.NewNop()).Generate(context.Background(), prompt)
	require.NoError(t, err)

	var questions []entity.SurveyQuestion
	require.NoError(t, json.Unmarshal([]byte(text), &questions))
	require.Len(t, questions, 4)
	assert.Equal(t, entity.QuestionTypeRating, questions[0].Type)
	assert.Equal(t, entity.QuestionTypeMultipleChoice, questions[1].Type)
	assert.NotEmpty(t, questions[1].Options)
	assert.Contains(t, questions[0].Text, "hotel stays")
}

func TestMockGenerator_FollowUps(t *testing.T) {
	prompt := "The user is designing a survey. They were asked:\n\"Who is your target audience for this survey?\"\n"

	text, err := NewMockGenerator(zap.NewNop()).Generate(context.Background(), prompt)
	require.NoError(t, err)

	var followUps []string
	require.NoError(t, json.Unmarshal([]byte(text), &followUps))
	assert.Len(t, followUps, 2)
}
