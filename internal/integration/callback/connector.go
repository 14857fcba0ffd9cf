package callback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/entity"
	"github.com/futig/survey-agent/internal/integration/common"
	pkghttp "github.com/futig/survey-agent/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector delivers survey results to client callback URLs
type Connector struct {
	cfg       config.CallbackConnectorConfig
	connector *pkghttp.Connector
	now       func() time.Time
}

func NewConnector(cfg config.CallbackConnectorConfig, logger *zap.Logger) *Connector {
	return &Connector{
		cfg:       cfg,
		connector: common.NewServiceConnector(cfg.HTTPClientConfig, logger),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SurveyReady posts a finalSurvey event. Delivery failures are logged, not returned.
func (c *Connector) SurveyReady(ctx context.Context, target entity.CallbackTarget, survey *entity.SurveyDTO) {
	if err := c.Send(ctx, target, entity.CallbackEventSurveyReady, survey); err != nil {
		ctxzap.Error(ctx, "failed to deliver survey callback", zap.Error(err))
	}
}

// SurveyFailed posts an error event describing cause
func (c *Connector) SurveyFailed(ctx context.Context, target entity.CallbackTarget, cause error) {
	failure := &entity.CallbackFailure{Error: cause.Error()}
	if err := c.Send(ctx, target, entity.CallbackEventSurveyFailed, failure); err != nil {
		ctxzap.Error(ctx, "failed to deliver error callback", zap.Error(err))
	}
}

// Send posts one event, retrying transient failures per the retry config
func (c *Connector) Send(ctx context.Context, target entity.CallbackTarget, kind entity.CallbackEventType, data any) error {
	event := &entity.CallbackEvent{
		Event:     kind,
		SessionID: target.SessionID,
		Timestamp: c.now(),
		Data:      data,
	}

	ctx = withEventFields(ctx, target, kind)
	ctxzap.Debug(ctx, "sending callback event")

	post := func(ctx context.Context) error {
		err := c.connector.DoRequest(ctx, http.MethodPost, "", event, nil,
			pkghttp.WithURL(target.URL),
			pkghttp.WithHeader("X-Request-ID", target.RequestID),
		)
		if err != nil && !pkghttp.IsRetryable(err) {
			return retry.Unrecoverable(err)
		}
		return err
	}

	if err := c.cfg.Retry.Do(ctx, post); err != nil {
		return fmt.Errorf("send %s callback to %s: %w", kind, target.URL, err)
	}

	ctxzap.Info(ctx, "callback delivered")
	return nil
}

func withEventFields(ctx context.Context, target entity.CallbackTarget, kind entity.CallbackEventType) context.Context {
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(
		zap.String("event_type", string(kind)),
		zap.String("callback_url", target.URL),
		zap.String("request_id", target.RequestID),
	))
}
