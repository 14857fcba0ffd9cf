package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/survey-agent/internal/api"
	"github.com/futig/survey-agent/internal/api/chat"
	sessionapi "github.com/futig/survey-agent/internal/api/session"
	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/integration/callback"
	"github.com/futig/survey-agent/internal/pkg/validator"
	"github.com/futig/survey-agent/internal/telegram"
	"github.com/futig/survey-agent/internal/usecase/intake"
	"github.com/futig/survey-agent/internal/usecase/session"
	"go.uber.org/zap"
)

// core holds what the HTTP server and the Telegram bot share
type core struct {
	cfg       *config.Config
	logger    *zap.Logger
	sessionUC *session.SessionUsecase
	validator *validator.Validator
	closers   []func()
}

func (c *core) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func buildCore(ctx context.Context) (*core, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("store", string(cfg.StoreCfg.Kind)),
		zap.Int("intake_questions", len(cfg.IntakeQuestions)),
	)

	store, closers, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup session store: %w", err)
	}

	gen, err := setupGenerator(cfg, logger)
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, err
	}

	machine, synthesizer := setupIntake(cfg, gen)
	sessionUC := session.NewUsecase(store, machine, synthesizer, cfg.IntakeQuestions)
	logger.Info("Use cases initialized",
		zap.Bool("follow_ups_enabled", cfg.IntakeCfg.FollowUpsEnabled),
	)

	return &core{
		cfg:       cfg,
		logger:    logger,
		sessionUC: sessionUC,
		validator: validator.NewValidator(cfg.IntakeCfg),
		closers:   closers,
	}, nil
}

func Build() (*App, error) {
	c, err := buildCore(context.Background())
	if err != nil {
		return nil, err
	}

	callbackConnector := callback.NewConnector(c.cfg.CallbackConnectorCfg, c.logger)

	sessionHandler := sessionapi.NewHandler(c.sessionUC, c.validator, callbackConnector)
	chatHandler := chat.NewHandler(c.sessionUC)
	c.logger.Info("API handlers initialized")

	router := api.SetupRouter(sessionHandler, chatHandler, c.logger)

	server := &http.Server{
		Addr:         c.cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // survey synthesis may take a full generation timeout
		IdleTimeout:  60 * time.Second,
	}

	c.logger.Info("Application built successfully",
		zap.String("server_addr", c.cfg.ServerAddr),
	)

	return &App{
		server: server,
		core:   c,
		logger: c.logger,
	}, nil
}

// BuildTelegramBot creates the Telegram bot and a cleanup func for its backing store
func BuildTelegramBot() (telegram.Bot, *zap.Logger, func(), error) {
	c, err := buildCore(context.Background())
	if err != nil {
		return nil, nil, nil, err
	}

	bot, err := telegram.NewBot(&c.cfg.TelegramCfg, c.sessionUC, c.validator, c.logger)
	if err != nil {
		c.close()
		return nil, nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	c.logger.Info("Telegram bot built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return bot, c.logger, c.close, nil
}

// BuildAgent wires a standalone intake agent for local, storeless use
func BuildAgent(environment string) (*intake.Agent, *zap.Logger, error) {
	cfg, err := config.LoadConfigFor(environment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	gen, err := setupGenerator(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	machine, synthesizer := setupIntake(cfg, gen)
	return intake.NewAgent(machine, synthesizer, cfg.IntakeQuestions), logger, nil
}
