package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/avast/retry-go/v4"
	pkgRetry "github.com/futig/survey-agent/internal/pkg/retry"
	pkghttp "github.com/futig/survey-agent/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

// Generator is the text generation capability shared by all providers
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retrying repeats transient generation failures under a retry policy
type Retrying struct {
	next   Generator
	config pkgRetry.RetryConfig
}

func NewRetrying(next Generator, cfg pkgRetry.RetryConfig) *Retrying {
	if cfg.Attempts == 0 {
		cfg = *pkgRetry.DefaultRetryConfig()
	}
	return &Retrying{next: next, config: cfg}
}

func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := r.config.Do(ctx, func(ctx context.Context) error {
		out, err := r.next.Generate(ctx, prompt)
		if err != nil {
			if !isTransient(err) {
				return retry.Unrecoverable(err)
			}
			return err
		}
		text = out
		return nil
	}, retry.OnRetry(func(n uint, err error) {
		ctxzap.Warn(ctx, "retrying text generation", zap.Uint("attempt", n+1), zap.Error(err))
	}))
	if err != nil {
		return "", err
	}
	return text, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}

	var httpErr *pkghttp.HTTPError
	var netErr *pkghttp.NetworkError
	if errors.As(err, &httpErr) || errors.As(err, &netErr) {
		return pkghttp.IsRetryable(err)
	}

	// unclassified errors, e.g. an empty completion, are worth another attempt
	return !errors.Is(err, context.DeadlineExceeded)
}
