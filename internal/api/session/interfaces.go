package session

import (
	"context"

	"github.com/futig/survey-agent/internal/entity"
)

type SessionUsecase interface {
	StartSession(ctx context.Context, id string) (*entity.Session, string, error)
	SubmitAnswer(ctx context.Context, id, answer string) (string, bool, error)
	GenerateSurvey(ctx context.Context, id string, regenerate bool) (*entity.SurveyDTO, error)
	GetHistory(ctx context.Context, id string) ([]entity.Turn, error)
	GetRequirements(ctx context.Context, id string) (entity.Requirements, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type CallbackConnector interface {
	SurveyReady(ctx context.Context, target entity.CallbackTarget, survey *entity.SurveyDTO)
	SurveyFailed(ctx context.Context, target entity.CallbackTarget, cause error)
}
