package repository

import (
	"context"
	"testing"
	"time"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(id string) *entity.Session {
	state := entity.NewConversationState([]string{"What is the purpose?"})
	state.ConversationHistory = append(state.ConversationHistory, entity.Turn{Role: entity.RoleAssistant, Content: "What is the purpose?"})
	now := time.Now().UTC()
	return &entity.Session{ID: id, State: state, CreatedAt: now, UpdatedAt: now}
}

func TestSessionMemory_SaveGetDelete(t *testing.T) {
	repo := NewSessionMemory(time.Hour, time.Minute)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	session := newTestSession("s1")
	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, session.State.ConversationHistory, got.State.ConversationHistory)
	assert.Equal(t, 1, repo.Count())

	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.ErrorIs(t, repo.Delete(ctx, "s1"), entity.ErrSessionNotFound)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionMemory_ReturnsIndependentCopies(t *testing.T) {
	repo := NewSessionMemory(0, time.Minute)
	ctx := context.Background()

	session := newTestSession("s1")
	require.NoError(t, repo.Save(ctx, session))
	session.State.ConversationHistory[0].Content = "mutated after save"

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	got.State.AdditionalInfo["k"] = "v"

	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "What is the purpose?", again.State.ConversationHistory[0].Content)
	assert.Empty(t, again.State.AdditionalInfo)
}

func TestSessionMemory_Expiry(t *testing.T) {
	repo := NewSessionMemory(20*time.Millisecond, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestSession("s1")))
	time.Sleep(40 * time.Millisecond)

	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}
