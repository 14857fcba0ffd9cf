package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/futig/survey-agent/internal/builder"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("telegram-bot: %v", err)
	}
}

func run() error {
	bot, logger, cleanup, err := builder.BuildTelegramBot()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutdown requested")
	if err := bot.Stop(); err != nil {
		logger.Error("stop telegram bot", zap.Error(err))
	}
	return nil
}
