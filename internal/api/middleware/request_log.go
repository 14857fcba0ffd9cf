package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLog binds a per-request logger carrying the chi request id into the
// context and writes one summary line per request. Requests to quiet paths are
// summarised at debug level.
func RequestLog(base *zap.Logger, quiet ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			reqLog := base.With(zap.String("request_id", chimw.GetReqID(r.Context())))

			rec := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rec, r.WithContext(ctxzap.ToContext(r.Context(), reqLog)))

			_, isQuiet := skip[r.URL.Path]
			reqLog.Log(summaryLevel(rec.Status(), isQuiet), "http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.Status()),
				zap.Int("bytes", rec.BytesWritten()),
				zap.Duration("elapsed", time.Since(began)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

func summaryLevel(status int, quiet bool) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zap.ErrorLevel
	case quiet:
		return zap.DebugLevel
	case status >= http.StatusBadRequest:
		return zap.WarnLevel
	default:
		return zap.InfoLevel
	}
}
