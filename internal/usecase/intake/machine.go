package intake

import (
	"context"
	"strings"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const CompletionMessage = "Thank you for providing all the information. I'll now generate survey questions based on your requirements."

// NoFollowUps disables the follow-up sub-loop
type NoFollowUps struct{}

func (NoFollowUps) Generate(context.Context, string, string) []string { return nil }

// Machine drives the intake dialogue. It holds no conversation state:
// every transition takes the previous state and returns the next one.
type Machine struct {
	followUps FollowUpSource
}

func NewMachine(followUps FollowUpSource) *Machine {
	if followUps == nil {
		followUps = NoFollowUps{}
	}
	return &Machine{followUps: followUps}
}

// Start creates a fresh state and emits the first intake question
func (m *Machine) Start(questions []string) (*entity.ConversationState, string) {
	state := entity.NewConversationState(questions)

	if len(state.PredefinedQuestions) == 0 {
		state.IsConversationComplete = true
		return state, emit(state, CompletionMessage)
	}

	return state, emit(state, state.PredefinedQuestions[0])
}

// Turn consumes one answer and returns the next state together with the
// emitted question or completion message. prev is never modified.
// On error no transition happens and the returned state is nil.
func (m *Machine) Turn(ctx context.Context, prev *entity.ConversationState, answer string) (
	*entity.ConversationState, string, error,
) {
	if prev == nil {
		return nil, "", entity.ErrNotStarted
	}
	if strings.TrimSpace(answer) == "" {
		return nil, "", entity.ErrMissingInput
	}
	if prev.IsConversationComplete || prev.CurrentQuestionIndex >= len(prev.PredefinedQuestions) {
		return nil, "", entity.ErrConversationComplete
	}

	next := prev.Clone()
	next.ConversationHistory = append(next.ConversationHistory, entity.Turn{
		Role:    entity.RoleUser,
		Content: answer,
	})

	if next.InFollowUpMode {
		return next, m.followUpTurn(ctx, next, answer), nil
	}
	return next, m.mainTurn(ctx, next, answer), nil
}

func (m *Machine) mainTurn(ctx context.Context, s *entity.ConversationState, answer string) string {
	question := s.PredefinedQuestions[s.CurrentQuestionIndex]
	ExtractMain(question, answer).ApplyTo(s)

	followUps := m.followUps.Generate(ctx, question, answer)
	if len(followUps) > MaxFollowUps {
		followUps = followUps[:MaxFollowUps]
	}

	if len(followUps) == 0 {
		return advance(ctx, s)
	}

	s.InFollowUpMode = true
	s.FollowUpQuestions = followUps
	s.CurrentFollowUpIndex = 0

	ctxzap.Debug(ctx, "entering follow-up mode",
		zap.Int("question_index", s.CurrentQuestionIndex),
		zap.Int("follow_up_count", len(followUps)),
	)
	return emit(s, followUps[0])
}

func (m *Machine) followUpTurn(ctx context.Context, s *entity.ConversationState, answer string) string {
	if s.CurrentFollowUpIndex < len(s.FollowUpQuestions) {
		ExtractFollowUp(s.FollowUpQuestions[s.CurrentFollowUpIndex], answer).ApplyTo(s)
		s.CurrentFollowUpIndex++
	}

	if s.CurrentFollowUpIndex < len(s.FollowUpQuestions) {
		return emit(s, s.FollowUpQuestions[s.CurrentFollowUpIndex])
	}

	s.InFollowUpMode = false
	s.FollowUpQuestions = nil
	s.CurrentFollowUpIndex = 0
	return advance(ctx, s)
}

// advance moves to the next intake question or completes the conversation
func advance(ctx context.Context, s *entity.ConversationState) string {
	s.CurrentQuestionIndex++

	if s.CurrentQuestionIndex >= len(s.PredefinedQuestions) {
		s.CurrentQuestionIndex = len(s.PredefinedQuestions)
		s.IsConversationComplete = true
		ctxzap.Info(ctx, "intake conversation complete",
			zap.Int("turns", len(s.ConversationHistory)),
		)
		return emit(s, CompletionMessage)
	}

	return emit(s, s.PredefinedQuestions[s.CurrentQuestionIndex])
}

func emit(s *entity.ConversationState, question string) string {
	s.ConversationHistory = append(s.ConversationHistory, entity.Turn{
		Role:    entity.RoleAssistant,
		Content: question,
	})
	return question
}
