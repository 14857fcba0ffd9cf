package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/survey-agent/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ SessionRepository = &SessionMongo{}

type sessionDocument struct {
	ID        string                    `bson:"_id"`
	State     *entity.ConversationState `bson:"state"`
	CreatedAt time.Time                 `bson:"created_at"`
	UpdatedAt time.Time                 `bson:"updated_at"`
	ExpiresAt *time.Time                `bson:"expires_at,omitempty"`
}

// SessionMongo stores one document per session. Expiry relies on a TTL index
// and is also checked on read since the TTL monitor runs periodically.
type SessionMongo struct {
	collection *mongo.Collection
	ttl        time.Duration
}

func NewSessionMongo(db *mongo.Database, collection string, ttl time.Duration) *SessionMongo {
	return &SessionMongo{
		collection: db.Collection(collection),
		ttl:        ttl,
	}
}

// EnsureIndexes creates the TTL index on expires_at
func (r *SessionMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create ttl index: %w", err)
	}
	return nil
}

func (r *SessionMongo) Get(ctx context.Context, id string) (*entity.Session, error) {
	var doc sessionDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if doc.ExpiresAt != nil && !doc.ExpiresAt.After(time.Now()) {
		return nil, entity.ErrSessionNotFound
	}

	return &entity.Session{
		ID:        doc.ID,
		State:     doc.State,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *SessionMongo) Save(ctx context.Context, session *entity.Session) error {
	doc := sessionDocument{
		ID:        session.ID,
		State:     session.State,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
	if r.ttl > 0 {
		expiresAt := session.UpdatedAt.Add(r.ttl)
		doc.ExpiresAt = &expiresAt
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": session.ID}, doc, opts); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionMongo) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return entity.ErrSessionNotFound
	}
	return nil
}
