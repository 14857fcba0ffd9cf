package intake

import (
	"context"
	"errors"
	"sync"
)

var errProviderDown = errors.New("provider unavailable")

// mockGenerator returns response or err and records every prompt.
type mockGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockGenerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// staticFollowUps returns the same follow-ups for every answer.
type staticFollowUps []string

func (s staticFollowUps) Generate(context.Context, string, string) []string {
	return []string(s)
}

var testQuestions = []string{
	"What is the primary purpose of your survey?",
	"Who is your target audience for this survey?",
	"How many questions would you like the survey to include?",
}
