package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/futig/survey-agent/internal/usecase/intake"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SessionUsecase runs intake conversations on top of a session store.
// Each call restores the agent from the store, so any number of instances
// can share one backing store.
type SessionUsecase struct {
	store       SessionStore
	machine     *intake.Machine
	synthesizer *intake.Synthesizer
	questions   []string
	locks       *keyedMutex
	now         func() time.Time
}

// NewUsecase creates a new session use case
func NewUsecase(
	store SessionStore,
	machine *intake.Machine,
	synthesizer *intake.Synthesizer,
	questions []string,
) *SessionUsecase {
	return &SessionUsecase{
		store:       store,
		machine:     machine,
		synthesizer: synthesizer,
		questions:   questions,
		locks:       newKeyedMutex(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// StartSession begins or restarts the conversation for id. An empty id gets a generated one.
func (uc *SessionUsecase) StartSession(ctx context.Context, id string) (*entity.Session, string, error) {
	if id == "" {
		id = uuid.New().String()
	}

	unlock := uc.locks.Lock(id)
	defer unlock()

	now := uc.now()
	createdAt := now
	prev, err := uc.store.Get(ctx, id)
	switch {
	case err == nil:
		createdAt = prev.CreatedAt
	case !errors.Is(err, entity.ErrSessionNotFound):
		return nil, "", fmt.Errorf("get session: %w", err)
	}

	agent := uc.newAgent()
	if prev != nil {
		agent.Restore(prev.State)
	}
	question := agent.Start(ctx)

	session := &entity.Session{
		ID:        id,
		State:     agent.State(),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	if err := uc.store.Save(ctx, session); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}

	ctxzap.Info(ctx, "intake session started", zap.String("session_id", id), zap.Bool("restarted", prev != nil))

	return session, question, nil
}

// SubmitAnswer applies one answer and returns the next question and the completion flag
func (uc *SessionUsecase) SubmitAnswer(ctx context.Context, id, answer string) (string, bool, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	session, agent, err := uc.load(ctx, id)
	if err != nil {
		return "", false, err
	}

	question, complete, err := agent.Respond(ctx, answer)
	if err != nil {
		return "", complete, err
	}

	if err := uc.persist(ctx, session, agent); err != nil {
		return "", false, err
	}

	ctxzap.Debug(ctx, "answer applied",
		zap.String("session_id", id),
		zap.String("phase", string(session.State.Phase())),
		zap.Bool("is_complete", complete),
	)

	return question, complete, nil
}

// GenerateSurvey returns the stored survey or synthesizes one. regenerate forces a new synthesis.
func (uc *SessionUsecase) GenerateSurvey(ctx context.Context, id string, regenerate bool) (*entity.SurveyDTO, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	session, agent, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}

	cached := session.State.GeneratedQuestions != nil && !regenerate
	questions, err := agent.Synthesize(ctx, regenerate)
	if err != nil {
		return nil, err
	}

	if !cached {
		if err := uc.persist(ctx, session, agent); err != nil {
			return nil, err
		}
		ctxzap.Info(ctx, "survey synthesized",
			zap.String("session_id", id),
			zap.Int("question_count", len(questions)),
			zap.Bool("regenerated", regenerate),
		)
	}

	return toSurveyDTO(session, questions), nil
}

// GetHistory returns the conversation so far. Unknown ids yield an empty history.
func (uc *SessionUsecase) GetHistory(ctx context.Context, id string) ([]entity.Turn, error) {
	_, agent, err := uc.load(ctx, id)
	if errors.Is(err, entity.ErrNotStarted) {
		return []entity.Turn{}, nil
	}
	if err != nil {
		return nil, err
	}
	return agent.History(), nil
}

// GetRequirements returns the gathered requirements. Unknown ids yield empty requirements.
func (uc *SessionUsecase) GetRequirements(ctx context.Context, id string) (entity.Requirements, error) {
	_, agent, err := uc.load(ctx, id)
	if errors.Is(err, entity.ErrNotStarted) {
		return (*entity.ConversationState)(nil).Requirements(), nil
	}
	if err != nil {
		return entity.Requirements{}, err
	}
	return agent.Requirements(), nil
}

func (uc *SessionUsecase) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (uc *SessionUsecase) DeleteSession(ctx context.Context, id string) error {
	unlock := uc.locks.Lock(id)
	defer unlock()

	if err := uc.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	ctxzap.Info(ctx, "intake session deleted", zap.String("session_id", id))
	return nil
}

func (uc *SessionUsecase) newAgent() *intake.Agent {
	return intake.NewAgent(uc.machine, uc.synthesizer, uc.questions)
}

// load restores the agent for id. A missing session reads as not started.
func (uc *SessionUsecase) load(ctx context.Context, id string) (*entity.Session, *intake.Agent, error) {
	session, err := uc.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			return nil, nil, entity.ErrNotStarted
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	if session.State == nil {
		return nil, nil, entity.ErrNotStarted
	}

	return session, uc.newAgent().Restore(session.State), nil
}

func (uc *SessionUsecase) persist(ctx context.Context, session *entity.Session, agent *intake.Agent) error {
	session.State = agent.State()
	session.UpdatedAt = uc.now()
	if err := uc.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
