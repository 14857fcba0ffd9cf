package session

import (
	"context"

	"github.com/futig/survey-agent/internal/entity"
)

// SessionStore is the persistence the usecase needs
type SessionStore interface {
	Get(ctx context.Context, id string) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, id string) error
}
