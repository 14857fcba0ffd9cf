package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/redis/go-redis/v9"
)

var _ SessionRepository = &SessionRedis{}

// SessionRedis stores sessions as JSON values under prefix+id with a sliding TTL
type SessionRedis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewSessionRedis(client redis.UniversalClient, prefix string, ttl time.Duration) *SessionRedis {
	return &SessionRedis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *SessionRedis) key(id string) string {
	return r.prefix + id
}

func (r *SessionRedis) Get(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (r *SessionRedis) Save(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	// zero ttl means no expiry
	if err := r.client.Set(ctx, r.key(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRedis) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return entity.ErrSessionNotFound
	}
	return nil
}
