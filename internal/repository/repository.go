package repository

import (
	"context"

	"github.com/futig/survey-agent/internal/entity"
)

// SessionRepository persists intake sessions by id.
// Get and Delete return entity.ErrSessionNotFound for unknown or expired ids.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, id string) error
}
