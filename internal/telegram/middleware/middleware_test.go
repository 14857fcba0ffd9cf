package middleware

import (
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func TestRateLimiter_BurstThenBlock(t *testing.T) {
	sender := &recordingSender{}
	rl := NewRateLimiterMiddleware(60, 2, zap.NewNop(), sender)
	defer rl.Close()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	calls := 0
	next := func(tgbotapi.Update) { calls++ }

	for range 4 {
		rl.Handle(textUpdate(7, "hi"), next)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, sender.count(), "one warning per interval")

	clock = clock.Add(time.Second)
	rl.Handle(textUpdate(7, "hi"), next)
	assert.Equal(t, 3, calls)

	rl.Handle(textUpdate(8, "hi"), next)
	assert.Equal(t, 4, calls, "limits are per user")
}

func TestRateLimiter_EvictsInactiveUsers(t *testing.T) {
	rl := NewRateLimiterMiddleware(60, 1, zap.NewNop(), &recordingSender{})
	defer rl.Close()

	clock := time.Now()
	rl.now = func() time.Time { return clock }
	rl.Handle(textUpdate(1, "hi"), func(tgbotapi.Update) {})

	clock = clock.Add(2 * time.Hour)
	rl.evictInactive()
	assert.Empty(t, rl.limits)
}

func TestRateLimiter_PassesUnknownUpdates(t *testing.T) {
	rl := NewRateLimiterMiddleware(1, 1, zap.NewNop(), &recordingSender{})
	defer rl.Close()

	calls := 0
	for range 3 {
		rl.Handle(tgbotapi.Update{}, func(tgbotapi.Update) { calls++ })
	}
	assert.Equal(t, 3, calls)
}

func TestRecovery_NotifiesChat(t *testing.T) {
	sender := &recordingSender{}
	m := NewRecoveryMiddleware(zap.NewNop(), sender)

	require.NotPanics(t, func() {
		m.Handle(textUpdate(5, "boom"), func(tgbotapi.Update) { panic("handler exploded") })
	})
	require.Equal(t, 1, sender.count())

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(5), msg.ChatID)
	assert.Equal(t, msgPanic, msg.Text)
}

func TestLogging_CallsNext(t *testing.T) {
	m := NewLoggingMiddleware(zap.NewNop())
	called := false
	m.Handle(textUpdate(1, "hello"), func(tgbotapi.Update) { called = true })
	assert.True(t, called)
}
