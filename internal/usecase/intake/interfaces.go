package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/survey-agent/internal/entity"
)

// Generator produces free text from a prompt. It may fail or return text
// in a format other than the one requested.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// FollowUpSource yields 0..2 clarifying questions for a main answer
type FollowUpSource interface {
	Generate(ctx context.Context, mainQuestion, answer string) []string
}

// generate calls gen under timeout. A generator that ignores ctx does not
// block the turn past the deadline.
func generate(ctx context.Context, gen Generator, timeout time.Duration, prompt string) (string, error) {
	if gen == nil {
		return "", fmt.Errorf("%w: no generator configured", entity.ErrGeneration)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := gen.Generate(ctx, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", entity.ErrGeneration, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %w", entity.ErrGeneration, res.err)
		}
		return res.text, nil
	}
}
