package intake

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	ElaborationPrompt = "Could you please elaborate a bit more?"
	GenericFollowUp   = "Could you please provide more details about your answer?"

	MaxFollowUps = 2

	// answers shorter than this are treated as terse
	minAnswerLength = 5
)

var terseAnswers = map[string]struct{}{
	"no":           {},
	"nope":         {},
	"n/a":          {},
	"none":         {},
	"i don't know": {},
	"idk":          {},
	"not sure":     {},
	"nothing":      {},
}

// IsTerse reports whether an answer is too short or negative to be worth
// a generation call
func IsTerse(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	if _, ok := terseAnswers[a]; ok {
		return true
	}
	return utf8.RuneCountInString(a) < minAnswerLength
}

// FollowUpGenerator produces clarifying questions for intake answers.
// It always returns a usable list and never an error.
type FollowUpGenerator struct {
	generator Generator
	timeout   time.Duration
}

func NewFollowUpGenerator(generator Generator, timeout time.Duration) *FollowUpGenerator {
	return &FollowUpGenerator{
		generator: generator,
		timeout:   timeout,
	}
}

// Generate returns up to MaxFollowUps follow-up questions for the answer
func (g *FollowUpGenerator) Generate(ctx context.Context, mainQuestion, answer string) []string {
	if IsTerse(answer) {
		ctxzap.Debug(ctx, "terse answer, asking for elaboration")
		return []string{ElaborationPrompt}
	}

	text, err := generate(ctx, g.generator, g.timeout, buildFollowUpPrompt(mainQuestion, answer))
	if err != nil {
		ctxzap.Warn(ctx, "follow-up generation failed, using fallback",
			zap.Error(err),
			zap.String("stage", "generate"),
		)
		return []string{GenericFollowUp}
	}

	outcome := ParseList[string](text)
	if !outcome.OK() {
		ctxzap.Warn(ctx, "follow-up output unparseable, using fallback",
			zap.Error(outcome.Err),
			zap.String("stage", string(outcome.Stage)),
		)
		return []string{GenericFollowUp}
	}

	questions := make([]string, 0, MaxFollowUps)
	for _, q := range outcome.Items {
		if q = strings.TrimSpace(q); q == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) == MaxFollowUps {
			break
		}
	}

	if len(questions) == 0 {
		ctxzap.Warn(ctx, "follow-up output empty, using fallback",
			zap.String("stage", string(outcome.Stage)),
		)
		return []string{GenericFollowUp}
	}

	ctxzap.Debug(ctx, "follow-up questions generated",
		zap.Int("count", len(questions)),
		zap.String("stage", string(outcome.Stage)),
	)
	return questions
}
