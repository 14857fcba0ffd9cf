package session_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/survey-agent/internal/api"
	"github.com/futig/survey-agent/internal/api/chat"
	sessionapi "github.com/futig/survey-agent/internal/api/session"
	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/entity"
	"github.com/futig/survey-agent/internal/pkg/validator"
	"github.com/futig/survey-agent/internal/repository"
	"github.com/futig/survey-agent/internal/usecase/intake"
	sessionuc "github.com/futig/survey-agent/internal/usecase/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testQuestions = []string{
	"What is the primary purpose of your survey?",
	"Who is your target audience for this survey?",
}

type recordingCallback struct {
	mu      sync.Mutex
	surveys []*entity.SurveyDTO
	done    chan struct{}
}

func (c *recordingCallback) SurveyFailed(context.Context, entity.CallbackTarget, error) {}

func (c *recordingCallback) SurveyReady(_ context.Context, _ entity.CallbackTarget, data *entity.SurveyDTO) {
	c.mu.Lock()
	c.surveys = append(c.surveys, data)
	c.mu.Unlock()
	close(c.done)
}

func newTestServer(t *testing.T) (*httptest.Server, *recordingCallback) {
	t.Helper()

	gen := intake.GeneratorFunc(func(context.Context, string) (string, error) {
		return `[{"question_text":"How likely are you to recommend us?","question_type":"rating"}]`, nil
	})
	uc := sessionuc.NewUsecase(
		repository.NewSessionMemory(time.Hour, time.Minute),
		intake.NewMachine(intake.NoFollowUps{}),
		intake.NewSynthesizer(gen, time.Second, 0),
		testQuestions,
	)
	cb := &recordingCallback{done: make(chan struct{})}
	v := validator.NewValidator(config.IntakeConfig{MaxAnswerLength: 1000})

	router := api.SetupRouter(sessionapi.NewHandler(uc, v, cb), chat.NewHandler(uc), zap.NewNop())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, cb
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestAPI_FullIntakeFlow(t *testing.T) {
	srv, cb := newTestServer(t)
	base := srv.URL + "/survey-session"

	resp, body := doJSON(t, http.MethodPost, base, nil, map[string]string{sessionapi.SessionIDHeader: "web-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "web-1", body["session_id"])
	assert.Equal(t, testQuestions[0], body["question"])

	resp, body = doJSON(t, http.MethodPost, base+"/web-1/answer", entity.SubmitAnswerRequest{Answer: "customer satisfaction"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testQuestions[1], body["question"])
	assert.Equal(t, false, body["is_complete"])

	resp, body = doJSON(t, http.MethodPost, base+"/web-1/answer", entity.SubmitAnswerRequest{
		Answer:      "mobile app users",
		CallbackURL: "http://callback.example/hook",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_complete"])

	select {
	case <-cb.done:
	case <-time.After(2 * time.Second):
		t.Fatal("final survey callback was not sent")
	}
	cb.mu.Lock()
	require.Len(t, cb.surveys, 1)
	assert.Equal(t, "web-1", cb.surveys[0].SessionID)
	cb.mu.Unlock()

	resp, body = doJSON(t, http.MethodGet, base+"/web-1/requirements", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "customer satisfaction", body["purpose"])
	assert.Equal(t, "mobile app users", body["audience"])

	resp, body = doJSON(t, http.MethodGet, base+"/web-1/history", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["history"], 5)

	resp, body = doJSON(t, http.MethodGet, base+"/web-1/survey", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Survey: customer satisfaction", body["title"])
	assert.Len(t, body["questions"], 1)

	resp, _ = doJSON(t, http.MethodGet, base+"/web-1/survey?format=markdown", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "survey-web-1.md")

	resp, _ = doJSON(t, http.MethodDelete, base+"/web-1", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, base+"/web-1", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/survey-session"

	resp, _ := doJSON(t, http.MethodPost, base+"/nobody/answer", entity.SubmitAnswerRequest{Answer: "hello"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"/nobody/answer", entity.SubmitAnswerRequest{Answer: "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base+"/nobody/survey?format=xlsx", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base, nil, map[string]string{sessionapi.SessionIDHeader: "bad id!"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, base+"/nobody/history", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["history"])

	resp, _ = doJSON(t, http.MethodDelete, base+"/nobody", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_GeneratedSessionIDAndProbe(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/survey-session", nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["session_id"])
	assert.Equal(t, body["session_id"], resp.Header.Get(sessionapi.SessionIDHeader))

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/test", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Survey API is working!", body["message"])
}
