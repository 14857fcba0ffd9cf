package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const msgPanic = "❌ Something went wrong. Try again or press /start"

// RecoveryMiddleware turns a handler panic into an apology to the chat
type RecoveryMiddleware struct {
	logger *zap.Logger
	sender Sender
}

func NewRecoveryMiddleware(logger *zap.Logger, sender Sender) *RecoveryMiddleware {
	return &RecoveryMiddleware{logger: logger, sender: sender}
}

func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next HandlerFunc) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		m.logger.Error("telegram handler panicked",
			zap.Any("panic", r),
			zap.Int("update_id", update.UpdateID),
			zap.Stack("stack"),
		)

		_, chatID, ok := origin(update)
		if !ok {
			return
		}
		if _, err := m.sender.Send(tgbotapi.NewMessage(chatID, msgPanic)); err != nil {
			m.logger.Warn("notify chat after panic", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}()

	next(update)
}
