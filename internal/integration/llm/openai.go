package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/survey-agent/internal/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// SystemPrompt frames every generation call
const SystemPrompt = "You are a helpful assistant that helps design surveys. " +
	"When asked for JSON, respond with the JSON value only."

var ErrEmptyCompletion = errors.New("completion has no choices")

// OpenAIGenerator generates text with the OpenAI chat completions API
type OpenAIGenerator struct {
	client      openai.Client
	model       string
	temperature float64
}

func NewOpenAIGenerator(cfg config.LLMConnectorConfig) *OpenAIGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// retries are owned by the Retrying decorator
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}

	return &OpenAIGenerator{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Debug(ctx, "requesting chat completion",
		zap.String("model", g.model),
		zap.Int("prompt_length", len(prompt)),
	)

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(g.model),
		Temperature: openai.Float(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	ctxzap.Debug(ctx, "chat completion received",
		zap.Int("result_length", len(text)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
	)

	return text, nil
}
