package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/patrickmn/go-cache"
)

var _ SessionRepository = &SessionMemory{}

// SessionMemory keeps sessions in process. Entries are stored serialized so
// callers never share state with the store.
type SessionMemory struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessionMemory creates an in-process store. A ttl of 0 keeps sessions forever.
func NewSessionMemory(ttl, cleanupInterval time.Duration) *SessionMemory {
	expiration := ttl
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	return &SessionMemory{
		cache: cache.New(expiration, cleanupInterval),
		ttl:   expiration,
	}
}

func (r *SessionMemory) Get(_ context.Context, id string) (*entity.Session, error) {
	raw, ok := r.cache.Get(id)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}

	var session entity.Session
	if err := json.Unmarshal(raw.([]byte), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (r *SessionMemory) Save(_ context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	r.cache.Set(session.ID, data, r.ttl)
	return nil
}

func (r *SessionMemory) Delete(_ context.Context, id string) error {
	if _, ok := r.cache.Get(id); !ok {
		return entity.ErrSessionNotFound
	}
	r.cache.Delete(id)
	return nil
}

// Count returns the number of live sessions
func (r *SessionMemory) Count() int {
	return r.cache.ItemCount()
}
