package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	DefaultPurpose            = "general feedback"
	DefaultSurveySize         = 5
	DefaultMaxSurveyQuestions = 50
)

// FallbackQuestions is the fixed survey used when generation fails
func FallbackQuestions(purpose string) []entity.SurveyQuestion {
	return []entity.SurveyQuestion{
		{
			Text:     fmt.Sprintf("How would you rate your experience with %s?", purpose),
			Type:     entity.QuestionTypeRating,
			Required: true,
		},
		{
			Text:     "What could be improved?",
			Type:     entity.QuestionTypeText,
			Required: false,
		},
	}
}

// Synthesizer turns gathered requirements into survey questions.
// It never fails and never returns an empty list.
type Synthesizer struct {
	generator    Generator
	timeout      time.Duration
	maxQuestions int
}

func NewSynthesizer(generator Generator, timeout time.Duration, maxQuestions int) *Synthesizer {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxSurveyQuestions
	}
	return &Synthesizer{
		generator:    generator,
		timeout:      timeout,
		maxQuestions: maxQuestions,
	}
}

// Synthesize generates survey questions for state. state is not modified.
func (s *Synthesizer) Synthesize(ctx context.Context, state *entity.ConversationState) []entity.SurveyQuestion {
	brief := s.brief(state)
	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(
		zap.Int("question_count", brief.Count),
	))

	if !state.IsConversationComplete {
		ctxzap.Warn(ctx, "synthesizing survey before intake is complete")
	}

	text, err := generate(ctx, s.generator, s.timeout, buildSurveyPrompt(brief))
	if err != nil {
		ctxzap.Warn(ctx, "survey generation failed, using fallback",
			zap.Error(err),
			zap.String("stage", "generate"),
		)
		return FallbackQuestions(brief.Purpose)
	}

	outcome := ParseList[entity.SurveyQuestion](text)
	if !outcome.OK() {
		ctxzap.Warn(ctx, "survey output unparseable, using fallback",
			zap.Error(outcome.Err),
			zap.String("stage", string(outcome.Stage)),
		)
		return FallbackQuestions(brief.Purpose)
	}

	questions := normalizeQuestions(outcome.Items, brief.Count)
	if len(questions) == 0 {
		ctxzap.Warn(ctx, "survey output has no valid questions, using fallback",
			zap.Int("parsed", len(outcome.Items)),
			zap.String("stage", string(outcome.Stage)),
		)
		return FallbackQuestions(brief.Purpose)
	}

	ctxzap.Info(ctx, "survey generated",
		zap.Int("parsed", len(outcome.Items)),
		zap.Int("accepted", len(questions)),
		zap.String("stage", string(outcome.Stage)),
	)
	return questions
}

// brief resolves defaults without touching the stored requirement fields
func (s *Synthesizer) brief(state *entity.ConversationState) surveyBrief {
	b := surveyBrief{
		Purpose:        DefaultPurpose,
		Count:          DefaultSurveySize,
		Topics:         state.Topics,
		Types:          state.QuestionTypes,
		AdditionalInfo: state.AdditionalInfo,
	}
	if state.Purpose != nil && strings.TrimSpace(*state.Purpose) != "" {
		b.Purpose = *state.Purpose
	}
	if state.Audience != nil {
		b.Audience = *state.Audience
	}
	if state.QuestionCount != nil && *state.QuestionCount > 0 {
		b.Count = *state.QuestionCount
	}
	if b.Count > s.maxQuestions {
		b.Count = s.maxQuestions
	}
	return b
}

// normalizeQuestions drops malformed items and enforces the options rule:
// options are present and non-empty iff the type is multiple_choice.
func normalizeQuestions(items []entity.SurveyQuestion, limit int) []entity.SurveyQuestion {
	result := make([]entity.SurveyQuestion, 0, min(len(items), limit))

	for _, q := range items {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			continue
		}

		q.Type = normalizeType(q.Type)
		if !q.Type.IsValid() {
			continue
		}

		if q.Type == entity.QuestionTypeMultipleChoice {
			options := make([]string, 0, len(q.Options))
			for _, o := range q.Options {
				if o = strings.TrimSpace(o); o != "" {
					options = append(options, o)
				}
			}
			if len(options) == 0 {
				continue
			}
			q.Options = options
		} else {
			q.Options = nil
		}

		result = append(result, q)
		if len(result) == limit {
			break
		}
	}

	return result
}

func normalizeType(t entity.QuestionType) entity.QuestionType {
	s := strings.ToLower(strings.TrimSpace(string(t)))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return entity.QuestionType(s)
}
