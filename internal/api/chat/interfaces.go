package chat

import (
	"context"

	"github.com/futig/survey-agent/internal/entity"
)

type SessionUsecase interface {
	StartSession(ctx context.Context, id string) (*entity.Session, string, error)
	SubmitAnswer(ctx context.Context, id, answer string) (string, bool, error)
	GenerateSurvey(ctx context.Context, id string, regenerate bool) (*entity.SurveyDTO, error)
}
