// Package telegram runs the intake conversation as a Telegram bot.
package telegram

import (
	"context"
	"fmt"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/pkg/validator"
	"github.com/futig/survey-agent/internal/telegram/bot"
	"go.uber.org/zap"
)

// Bot polls for updates from Start until Stop
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authenticates against the Bot API with cfg.Token
func NewBot(cfg *config.TelegramConfig, sessions bot.SessionUsecase, v *validator.Validator, logger *zap.Logger) (Bot, error) {
	b, err := bot.New(cfg, sessions, v, logger)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return b, nil
}
