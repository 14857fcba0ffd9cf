package intake

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/survey-agent/internal/entity"
)

type ParseStage string

const (
	StageBracketed ParseStage = "bracketed"
	StageWholeText ParseStage = "whole_text"
	StageFailed    ParseStage = "failed"
)

// ParseOutcome is the result of ParseList. Err is set only when Stage is StageFailed.
type ParseOutcome[T any] struct {
	Items []T
	Stage ParseStage
	Err   error
}

func (o ParseOutcome[T]) OK() bool {
	return o.Stage != StageFailed
}

// ParseList extracts a JSON list of T from raw generation output.
// It first tries every balanced [...] block in order, then the whole text.
// It never panics and never returns an error outside the outcome.
func ParseList[T any](raw string) ParseOutcome[T] {
	cleaned := stripCodeFences(raw)

	var lastErr error
	for _, block := range bracketBlocks(cleaned) {
		var items []T
		if err := json.Unmarshal([]byte(block), &items); err != nil {
			lastErr = err
			continue
		}
		return ParseOutcome[T]{Items: items, Stage: StageBracketed}
	}

	whole := strings.TrimSpace(cleaned)
	var items []T
	if err := json.Unmarshal([]byte(whole), &items); err == nil {
		return ParseOutcome[T]{Items: items, Stage: StageWholeText}
	} else if lastErr == nil {
		lastErr = err
	}

	return ParseOutcome[T]{
		Stage: StageFailed,
		Err:   fmt.Errorf("%w: %v", entity.ErrInvalidOutput, lastErr),
	}
}

// stripCodeFences removes markdown fence lines (```json, ```), keeping their content
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}

// bracketBlocks returns every top-level balanced [...] block, skipping
// brackets inside JSON strings.
func bracketBlocks(s string) []string {
	var blocks []string

	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' && depth > 0 {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '[':
			if depth == 0 {
				start = i
			}
			depth++
		case ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				blocks = append(blocks, s[start:i+1])
				start = -1
			}
		}
	}

	return blocks
}
