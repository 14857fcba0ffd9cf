package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/entity"
	"github.com/futig/survey-agent/internal/integration/common"
	pkghttp "github.com/futig/survey-agent/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector generates text through a standalone generation service
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewServiceConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

func (c *Connector) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Debug(ctx, "generating text via LLM service", zap.Int("prompt_length", len(prompt)))

	req := &entity.LLMGenerateRequest{
		SystemPrompt: SystemPrompt,
		Prompt:       prompt,
		Model:        c.config.Model,
		Temperature:  c.config.Temperature,
	}

	var resp entity.LLMGenerateResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.GenerateEndpoint, req, &resp); err != nil {
		return "", fmt.Errorf("generate text failed: %w", err)
	}

	if resp.Text == "" {
		return "", fmt.Errorf("invalid generation response: empty or missing text field")
	}

	ctxzap.Debug(ctx, "text generated successfully", zap.Int("result_length", len(resp.Text)))

	return resp.Text, nil
}
