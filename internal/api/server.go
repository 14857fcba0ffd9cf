package api

import (
	"net/http"
	"time"

	"github.com/futig/survey-agent/internal/api/chat"
	"github.com/futig/survey-agent/internal/api/docs"
	"github.com/futig/survey-agent/internal/api/middleware"
	sessionapi "github.com/futig/survey-agent/internal/api/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	healthPath     = "/health"
	requestTimeout = 60 * time.Second
)

// SetupRouter mounts the session API, the chat socket, docs and the health probe
func SetupRouter(sessionHandler *sessionapi.Handler, chatHandler *chat.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLog(logger, healthPath))
	r.Use(middleware.CORS())

	r.Get(healthPath, health)
	r.Get("/test", probe)
	docs.RegisterRoutes(r)

	// Long-lived connection, kept outside the request timeout
	r.Get("/survey-session/{id}/ws", chatHandler.Serve)

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))
		sessionapi.RegisterRoutes(r, sessionHandler)
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func probe(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"Survey API is working!"}`))
}
