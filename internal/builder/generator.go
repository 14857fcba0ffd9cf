package builder

import (
	"fmt"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/integration/llm"
	"github.com/futig/survey-agent/internal/usecase/intake"
	"go.uber.org/zap"
)

func setupGenerator(cfg *config.Config, logger *zap.Logger) (intake.Generator, error) {
	provider := cfg.GeneratorProvider()
	logger.Info("Configuring text generation", zap.String("provider", string(provider)))

	var gen llm.Generator
	switch provider {
	case config.ProviderMock:
		return llm.NewMockGenerator(logger), nil
	case config.ProviderService:
		gen = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	case config.ProviderOpenAI:
		gen = llm.NewOpenAIGenerator(cfg.LLMConnectorCfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}

	return llm.NewRetrying(gen, cfg.LLMConnectorCfg.Retry), nil
}

// setupIntake builds the conversation machine and survey synthesizer
func setupIntake(cfg *config.Config, gen intake.Generator) (*intake.Machine, *intake.Synthesizer) {
	timeout := cfg.LLMConnectorCfg.Timeout

	var followUps intake.FollowUpSource = intake.NoFollowUps{}
	if cfg.IntakeCfg.FollowUpsEnabled {
		followUps = intake.NewFollowUpGenerator(gen, timeout)
	}

	return intake.NewMachine(followUps), intake.NewSynthesizer(gen, timeout, cfg.IntakeCfg.MaxSurveyQuestions)
}
