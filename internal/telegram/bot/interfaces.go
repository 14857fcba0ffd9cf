package bot

import (
	"context"

	"github.com/futig/survey-agent/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the subset of *tgbotapi.BotAPI used to talk to chats
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type SessionUsecase interface {
	StartSession(ctx context.Context, id string) (*entity.Session, string, error)
	SubmitAnswer(ctx context.Context, id, answer string) (string, bool, error)
	GenerateSurvey(ctx context.Context, id string, regenerate bool) (*entity.SurveyDTO, error)
	DeleteSession(ctx context.Context, id string) error
}
