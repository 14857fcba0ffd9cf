package intake

import (
	"context"
	"slices"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Agent owns exactly one conversation state. It is not safe for
// concurrent use; callers serialize turns per session.
type Agent struct {
	machine     *Machine
	synthesizer *Synthesizer
	questions   []string
	state       *entity.ConversationState
}

func NewAgent(machine *Machine, synthesizer *Synthesizer, questions []string) *Agent {
	return &Agent{
		machine:     machine,
		synthesizer: synthesizer,
		questions:   slices.Clone(questions),
	}
}

// Restore attaches a previously persisted state. A nil state leaves the
// agent in the not-started condition.
func (a *Agent) Restore(state *entity.ConversationState) *Agent {
	a.state = state.Clone()
	return a
}

// Start discards any prior state and emits the first intake question
func (a *Agent) Start(ctx context.Context) string {
	if a.state != nil {
		ctxzap.Info(ctx, "restarting conversation, prior state discarded",
			zap.Int("discarded_turns", len(a.state.ConversationHistory)),
		)
	}

	state, question := a.machine.Start(a.questions)
	a.state = state
	return question
}

// Respond processes one answer and returns the next question or the
// completion message together with the completion flag
func (a *Agent) Respond(ctx context.Context, answer string) (string, bool, error) {
	if a.state == nil {
		return "", false, entity.ErrNotStarted
	}

	next, question, err := a.machine.Turn(ctx, a.state, answer)
	if err != nil {
		return "", a.state.IsConversationComplete, err
	}

	a.state = next
	return question, next.IsConversationComplete, nil
}

// Synthesize returns the survey, generating it on first call. Subsequent
// calls return the stored survey unless regenerate is set.
func (a *Agent) Synthesize(ctx context.Context, regenerate bool) ([]entity.SurveyQuestion, error) {
	if a.state == nil {
		return nil, entity.ErrNotStarted
	}

	if a.state.GeneratedQuestions != nil && !regenerate {
		return cloneQuestions(a.state.GeneratedQuestions), nil
	}

	questions := a.synthesizer.Synthesize(ctx, a.state)

	next := a.state.Clone()
	next.GeneratedQuestions = questions
	a.state = next

	return cloneQuestions(questions), nil
}

// History returns a copy of the conversation so far, empty if not started
func (a *Agent) History() []entity.Turn {
	if a.state == nil || len(a.state.ConversationHistory) == 0 {
		return []entity.Turn{}
	}
	return slices.Clone(a.state.ConversationHistory)
}

// Requirements returns a snapshot of the gathered requirements
func (a *Agent) Requirements() entity.Requirements {
	return a.state.Requirements()
}

func (a *Agent) Started() bool {
	return a.state != nil
}

// State returns a copy of the current state for persistence
func (a *Agent) State() *entity.ConversationState {
	return a.state.Clone()
}

func cloneQuestions(questions []entity.SurveyQuestion) []entity.SurveyQuestion {
	out := make([]entity.SurveyQuestion, len(questions))
	for i, q := range questions {
		q.Options = slices.Clone(q.Options)
		out[i] = q
	}
	return out
}
