package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram clears a chat action after 5 seconds
const typingInterval = 4 * time.Second

// typingNotifier keeps the "typing" indicator alive while a survey is generated
type typingNotifier struct {
	api    Sender
	chatID int64
	done   chan struct{}
	logger *zap.Logger
}

func startTyping(ctx context.Context, api Sender, chatID int64, logger *zap.Logger) *typingNotifier {
	t := &typingNotifier{
		api:    api,
		chatID: chatID,
		done:   make(chan struct{}),
		logger: logger,
	}

	t.send()
	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.send()
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return t
}

func (t *typingNotifier) send() {
	action := tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)
	if _, err := t.api.Request(action); err != nil {
		t.logger.Warn("failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}

func (t *typingNotifier) Stop() {
	close(t.done)
}
