package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/pkg/validator"
	"github.com/futig/survey-agent/internal/repository"
	"github.com/futig/survey-agent/internal/telegram/keyboard"
	"github.com/futig/survey-agent/internal/telegram/render"
	"github.com/futig/survey-agent/internal/usecase/intake"
	"github.com/futig/survey-agent/internal/usecase/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testQuestions = []string{
	"What is the primary purpose of your survey?",
	"Who is your target audience for this survey?",
}

const surveyResponse = `[{"question_text":"How was your stay?","question_type":"rating"}]`

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	docs     []tgbotapi.DocumentConfig
	requests int
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		s.messages = append(s.messages, v)
	case tgbotapi.DocumentConfig:
		s.docs = append(s.docs, v)
	}
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, m.Text)
	}
	return out
}

func (s *fakeSender) last() tgbotapi.MessageConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[len(s.messages)-1]
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()

	gen := intake.GeneratorFunc(func(context.Context, string) (string, error) {
		return surveyResponse, nil
	})
	uc := session.NewUsecase(
		repository.NewSessionMemory(time.Hour, time.Minute),
		intake.NewMachine(intake.NoFollowUps{}),
		intake.NewSynthesizer(gen, time.Second, 0),
		testQuestions,
	)

	sender := &fakeSender{}
	cfg := &config.TelegramConfig{RateLimitPerMinute: 60, RateLimitBurst: 100, ShutdownTimeout: 1}
	b := newBot(sender, cfg, uc, validator.NewValidator(config.IntakeConfig{MaxAnswerLength: 50}), zap.NewNop())
	t.Cleanup(b.rateLimitMW.Close)
	return b, sender
}

func testCtx() context.Context {
	return ctxzap.ToContext(context.Background(), zap.NewNop())
}

func command(userID int64, name string) tgbotapi.Update {
	text := "/" + name
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: userID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func text(userID int64, body string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: body,
	}}
}

func button(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func TestBot_FullInterview(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := testCtx()

	b.handleUpdate(ctx, command(42, "start"))
	assert.Equal(t, []string{render.MsgWelcome, render.RenderQuestion(testQuestions[0])}, sender.texts())

	b.handleUpdate(ctx, text(42, "guest satisfaction"))
	assert.Equal(t, render.RenderQuestion(testQuestions[1]), sender.last().Text)

	b.handleUpdate(ctx, text(42, "hotel guests"))
	texts := sender.texts()
	require.GreaterOrEqual(t, len(texts), 4)
	assert.Equal(t, intake.CompletionMessage, texts[len(texts)-4])
	assert.Equal(t, render.MsgGenerating, texts[len(texts)-3])
	assert.Contains(t, texts[len(texts)-2], "1. How was your stay? *")
	assert.Contains(t, texts[len(texts)-2], "Survey: guest satisfaction")
	assert.Equal(t, render.MsgResultReady, texts[len(texts)-1])
	assert.Equal(t, b.keyboard.ResultKeyboard(), sender.last().ReplyMarkup)
	assert.Positive(t, sender.requests, "typing action sent")
	require.Len(t, sender.docs, 1, "markdown copy sent on completion")

	b.handleUpdate(ctx, button(42, keyboard.EncodeCallback(keyboard.DownloadPrefix, "markdown")))
	require.Len(t, sender.docs, 2)
	file, ok := sender.docs[1].File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "survey-tg-42.md", file.Name)
	assert.Contains(t, string(file.Bytes), "How was your stay?")
}

func TestBot_AnswerWithoutSession(t *testing.T) {
	b, sender := newTestBot(t)

	b.handleUpdate(testCtx(), text(7, "hello"))
	assert.Equal(t, []string{render.ErrNoSession}, sender.texts())
}

func TestBot_AnswerTooLong(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := testCtx()

	b.handleUpdate(ctx, command(7, "start"))
	b.handleUpdate(ctx, text(7, strings.Repeat("a", 51)))
	assert.Equal(t, render.ErrInvalidInput, sender.last().Text)
}

func TestBot_NonTextMessage(t *testing.T) {
	b, sender := newTestBot(t)

	b.handleUpdate(testCtx(), text(7, ""))
	assert.Equal(t, []string{render.ErrUnsupportedMessage}, sender.texts())
}

func TestBot_Cancel(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := testCtx()

	b.handleUpdate(ctx, command(9, "cancel"))
	assert.Equal(t, render.ErrNoSession, sender.last().Text)

	b.handleUpdate(ctx, command(9, "start"))
	b.handleUpdate(ctx, button(9, keyboard.EncodeCallback(keyboard.ActionPrefix, keyboard.ActionCancel)))
	assert.Equal(t, render.MsgSessionFinished, sender.last().Text)

	b.handleUpdate(ctx, text(9, "still there?"))
	assert.Equal(t, render.ErrNoSession, sender.last().Text)
}

func TestBot_Commands(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := testCtx()

	b.handleUpdate(ctx, command(3, "help"))
	assert.Equal(t, render.MsgHelp, sender.last().Text)

	b.handleUpdate(ctx, command(3, "unknown"))
	assert.Equal(t, render.ErrUnknownCommand, sender.last().Text)

	b.handleUpdate(ctx, command(3, "survey"))
	assert.Equal(t, render.ErrNoSession, sender.last().Text)
}

func TestBot_StartButtonBeginsInterview(t *testing.T) {
	b, sender := newTestBot(t)

	b.handleUpdate(testCtx(), button(5, keyboard.EncodeCallback(keyboard.ActionPrefix, keyboard.ActionStart)))
	assert.Equal(t, render.RenderQuestion(testQuestions[0]), sender.last().Text)
	assert.Equal(t, 1, sender.requests, "callback answered")
}

func TestBot_InvalidCallback(t *testing.T) {
	b, sender := newTestBot(t)

	b.handleUpdate(testCtx(), button(5, "garbage"))
	assert.Empty(t, sender.texts())
	assert.Equal(t, 1, sender.requests)
}

func TestSessionID(t *testing.T) {
	assert.Equal(t, "tg-123", SessionID(123))
}
