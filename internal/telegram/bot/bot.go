package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/entity"
	"github.com/futig/survey-agent/internal/pkg/formatter"
	"github.com/futig/survey-agent/internal/pkg/logger"
	"github.com/futig/survey-agent/internal/pkg/validator"
	"github.com/futig/survey-agent/internal/telegram/keyboard"
	"github.com/futig/survey-agent/internal/telegram/middleware"
	"github.com/futig/survey-agent/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot runs the intake interview over Telegram, one session per user
type Bot struct {
	client      *tgbotapi.BotAPI
	api         Sender
	cfg         *config.TelegramConfig
	sessionUC   SessionUsecase
	validator   *validator.Validator
	formatters  *formatter.Factory
	keyboard    *keyboard.Builder
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// New connects to the Bot API with the configured token
func New(
	cfg *config.TelegramConfig,
	sessionUC SessionUsecase,
	validator *validator.Validator,
	logger *zap.Logger,
) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", client.Self.UserName),
		zap.Int64("id", client.Self.ID),
	)

	b := newBot(client, cfg, sessionUC, validator, logger)
	b.client = client
	return b, nil
}

func newBot(
	api Sender,
	cfg *config.TelegramConfig,
	sessionUC SessionUsecase,
	validator *validator.Validator,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		sessionUC:   sessionUC,
		validator:   validator,
		formatters:  formatter.NewFactory(),
		keyboard:    keyboard.NewBuilder(),
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(logger, api),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger, api),
		stopChan:    make(chan struct{}),
	}
}

// SessionID maps a Telegram user onto a survey session
func SessionID(userID int64) string {
	return fmt.Sprintf("tg-%d", userID)
}

// Start begins long polling; updates are handled until Stop or ctx ends
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("telegram client is not configured")
	}

	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.client.GetUpdatesChan(u)

	go b.processUpdates(ctxzap.ToContext(ctx, b.logger), updates)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	if b.client != nil {
		b.client.StopReceivingUpdates()
	}
	b.rateLimitMW.Close()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(ctx, u3)
			})
		})
	})
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	chatID := message.Chat.ID
	sessionID := SessionID(message.From.ID)
	ctx = logger.WithSession(logger.WithAction(ctx, "SubmitAnswer"), sessionID)

	if message.Text == "" {
		b.sendText(ctx, chatID, render.ErrUnsupportedMessage, nil)
		return
	}

	if err := b.validator.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{Answer: message.Text}); err != nil {
		b.sendText(ctx, chatID, render.ClassifyError(err), nil)
		return
	}

	question, complete, err := b.sessionUC.SubmitAnswer(ctx, sessionID, message.Text)
	if err != nil {
		b.reportError(ctx, chatID, "failed to submit answer", err)
		return
	}

	if !complete {
		b.sendText(ctx, chatID, render.RenderQuestion(question), b.keyboard.InterviewKeyboard())
		return
	}

	b.sendText(ctx, chatID, question, nil)
	b.deliverSurvey(ctx, chatID, sessionID, false)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	chatID := message.Chat.ID
	sessionID := SessionID(message.From.ID)
	ctx = logger.AddFields(logger.WithSession(ctx, sessionID), zap.String("command", command))

	ctxzap.Info(ctx, "command received")

	switch command {
	case "start":
		b.sendText(ctx, chatID, render.MsgWelcome, nil)
		b.beginInterview(ctx, chatID, sessionID)
	case "help":
		b.sendText(ctx, chatID, render.MsgHelp, nil)
	case "survey":
		b.deliverSurvey(ctx, chatID, sessionID, true)
	case "cancel":
		b.cancel(ctx, chatID, sessionID)
	default:
		b.sendText(ctx, chatID, render.ErrUnknownCommand, nil)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.answerCallback(ctx, query.ID, "")
		return
	}

	chatID := query.Message.Chat.ID
	sessionID := SessionID(query.From.ID)
	ctx = logger.WithSession(ctx, sessionID)

	data, err := keyboard.ParseCallback(query.Data)
	if err != nil {
		ctxzap.Warn(ctx, "invalid callback data", zap.Error(err), zap.String("data", query.Data))
		b.answerCallback(ctx, query.ID, "❌ Invalid button")
		return
	}

	ctxzap.Info(ctx, "callback query received",
		zap.String("callback_action", data.Action),
		zap.String("value", data.Value),
	)

	// Answer first so Telegram does not show the request as stale.
	b.answerCallback(ctx, query.ID, "⏳ Working on it...")

	switch {
	case data.Action == keyboard.DownloadPrefix:
		b.sendSurveyDocument(ctx, chatID, sessionID, entity.ResultFormat(data.Value))
	case data.Action == keyboard.ActionPrefix && data.Value == keyboard.ActionStart:
		b.beginInterview(ctx, chatID, sessionID)
	case data.Action == keyboard.ActionPrefix && data.Value == keyboard.ActionRegenerate:
		b.deliverSurvey(ctx, chatID, sessionID, true)
	case data.Action == keyboard.ActionPrefix && data.Value == keyboard.ActionCancel:
		b.cancel(ctx, chatID, sessionID)
	default:
		ctxzap.Warn(ctx, "unhandled callback", zap.String("data", query.Data))
	}
}

func (b *Bot) beginInterview(ctx context.Context, chatID int64, sessionID string) {
	ctx = logger.WithAction(ctx, "StartSession")

	_, question, err := b.sessionUC.StartSession(ctx, sessionID)
	if err != nil {
		b.reportError(ctx, chatID, "failed to start session", err)
		return
	}

	b.sendText(ctx, chatID, render.RenderQuestion(question), b.keyboard.InterviewKeyboard())
}

func (b *Bot) deliverSurvey(ctx context.Context, chatID int64, sessionID string, regenerate bool) {
	ctx = logger.WithAction(ctx, "GenerateSurvey")

	b.sendText(ctx, chatID, render.MsgGenerating, nil)
	typing := startTyping(ctx, b.api, chatID, ctxzap.Extract(ctx))
	survey, err := b.sessionUC.GenerateSurvey(ctx, sessionID, regenerate)
	typing.Stop()
	if err != nil {
		b.reportError(ctx, chatID, "failed to generate survey", err)
		return
	}

	b.sendText(ctx, chatID, render.RenderSurvey(survey), nil)
	b.sendSurveyDocument(ctx, chatID, sessionID, entity.FormatMarkdown)
	b.sendText(ctx, chatID, render.MsgResultReady, b.keyboard.ResultKeyboard())
}

func (b *Bot) sendSurveyDocument(ctx context.Context, chatID int64, sessionID string, format entity.ResultFormat) {
	ctx = logger.AddFields(logger.WithAction(ctx, "DownloadSurvey"), zap.String("format", string(format)))

	fmtr, err := b.formatters.Create(format)
	if err != nil {
		b.reportError(ctx, chatID, "unsupported download format", err)
		return
	}

	survey, err := b.sessionUC.GenerateSurvey(ctx, sessionID, false)
	if err != nil {
		b.reportError(ctx, chatID, "failed to load survey", err)
		return
	}

	data, err := fmtr.Format(survey)
	if err != nil {
		b.reportError(ctx, chatID, "failed to format survey", err)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "survey-" + sessionID + fmtr.FileExtension(),
		Bytes: data,
	})
	if _, err := b.api.Send(doc); err != nil {
		ctxzap.Error(ctx, "failed to send document", zap.Error(err))
	}
}

func (b *Bot) cancel(ctx context.Context, chatID int64, sessionID string) {
	ctx = logger.WithAction(ctx, "DeleteSession")

	if err := b.sessionUC.DeleteSession(ctx, sessionID); err != nil {
		b.reportError(ctx, chatID, "failed to delete session", err)
		return
	}

	b.sendText(ctx, chatID, render.MsgSessionFinished, b.keyboard.StartKeyboard())
}

// reportError logs unexpected failures and tells the user what happened
func (b *Bot) reportError(ctx context.Context, chatID int64, msg string, err error) {
	text := render.ClassifyError(err)
	if text == render.ErrGeneric {
		ctxzap.Error(ctx, msg, zap.Error(err))
	} else {
		ctxzap.Info(ctx, msg, zap.Error(err))
	}
	b.sendText(ctx, chatID, text, nil)
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string, replyMarkup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := b.api.Send(msg); err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

func (b *Bot) answerCallback(ctx context.Context, callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		ctxzap.Error(ctx, "failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}
