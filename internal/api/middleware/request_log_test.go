package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	h := chimw.RequestID(RequestLog(zap.New(core), "/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxzap.Info(r.Context(), "inside handler")
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	})))

	for _, path := range []string{"/health", "/items", "/boom"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	inner := logs.FilterMessage("inside handler").All()
	require.Len(t, inner, 3)
	assert.NotEmpty(t, inner[0].ContextMap()["request_id"])

	summaries := logs.FilterMessage("http request").All()
	require.Len(t, summaries, 3)
	assert.Equal(t, zap.DebugLevel, summaries[0].Level)
	assert.Equal(t, zap.InfoLevel, summaries[1].Level)
	assert.Equal(t, int64(2), summaries[1].ContextMap()["bytes"])
	assert.Equal(t, zap.ErrorLevel, summaries[2].Level)
}

func TestSummaryLevel(t *testing.T) {
	assert.Equal(t, zap.WarnLevel, summaryLevel(http.StatusNotFound, false))
	assert.Equal(t, zap.DebugLevel, summaryLevel(http.StatusOK, true))
	assert.Equal(t, zap.ErrorLevel, summaryLevel(http.StatusInternalServerError, true))
}
