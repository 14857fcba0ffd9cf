package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	getSessionQuery = `
SELECT id, state, created_at, updated_at
FROM survey_sessions
WHERE id = $1 AND (expires_at IS NULL OR expires_at > now())`

	upsertSessionQuery = `
INSERT INTO survey_sessions (id, state, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`

	deleteSessionQuery = `DELETE FROM survey_sessions WHERE id = $1`

	purgeExpiredQuery = `DELETE FROM survey_sessions WHERE expires_at IS NOT NULL AND expires_at <= now()`
)

var _ SessionRepository = &SessionPostgres{}

// SessionPostgres stores conversation state as JSONB in PostgreSQL
type SessionPostgres struct {
	db  *pgxpool.Pool
	ttl time.Duration
}

func NewSessionPostgres(db *pgxpool.Pool, ttl time.Duration) *SessionPostgres {
	return &SessionPostgres{
		db:  db,
		ttl: ttl,
	}
}

func (r *SessionPostgres) Get(ctx context.Context, id string) (*entity.Session, error) {
	var (
		session entity.Session
		state   []byte
	)

	err := r.db.QueryRow(ctx, getSessionQuery, id).Scan(&session.ID, &state, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := json.Unmarshal(state, &session.State); err != nil {
		ctxzap.Error(ctx, "failed to decode stored session state", zap.String("session_id", id), zap.Error(err))
		return nil, fmt.Errorf("decode session state: %w", err)
	}

	return &session, nil
}

func (r *SessionPostgres) Save(ctx context.Context, session *entity.Session) error {
	state, err := json.Marshal(session.State)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	var expiresAt *time.Time
	if r.ttl > 0 {
		t := session.UpdatedAt.Add(r.ttl)
		expiresAt = &t
	}

	if _, err := r.db.Exec(ctx, upsertSessionQuery, session.ID, state, session.CreatedAt, session.UpdatedAt, expiresAt); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

func (r *SessionPostgres) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteSessionQuery, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	return nil
}

// PurgeExpired removes sessions past their TTL and returns how many were removed
func (r *SessionPostgres) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, purgeExpiredQuery)
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
