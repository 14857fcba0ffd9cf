package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var (
	mockCountRe    = regexp.MustCompile(`Generate exactly (\d+) survey questions`)
	mockPurposeRe  = regexp.MustCompile(`Survey Purpose: (.+)`)
	mockTypesRe    = regexp.MustCompile(`Include a mix of the following question types: (.+)\.`)
	mockFollowUpRe = regexp.MustCompile(`(?s)They were asked:\s*"(.*?)"`)
)

// MockGenerator answers prompts with canned, well-formed JSON without calling a provider
type MockGenerator struct {
	logger *zap.Logger
}

func NewMockGenerator(logger *zap.Logger) *MockGenerator {
	return &MockGenerator{
		logger: logger,
	}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if match := mockCountRe.FindStringSubmatch(prompt); match != nil {
		ctxzap.Info(ctx, "[MOCK] generating survey")
		count, _ := strconv.Atoi(match[1])
		return mockSurvey(count, capture(mockPurposeRe, prompt), mockTypes(prompt))
	}

	ctxzap.Info(ctx, "[MOCK] generating follow-up questions")
	question := strings.ToLower(capture(mockFollowUpRe, prompt))
	var followUps []string
	switch {
	case strings.Contains(question, "purpose"):
		followUps = []string{"What decision will the survey results inform?"}
	case strings.Contains(question, "audience"):
		followUps = []string{"Which age range or role best describes them?", "How will you reach them?"}
	default:
		followUps = []string{}
	}

	out, err := json.Marshal(followUps)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func mockSurvey(count int, purpose string, types []entity.QuestionType) (string, error) {
	if purpose == "" || purpose == "Not specified" {
		purpose = "our service"
	}

	questions := make([]entity.SurveyQuestion, 0, count)
	for i := range count {
		q := entity.SurveyQuestion{Type: types[i%len(types)], Required: i%3 != 2}
		switch q.Type {
		case entity.QuestionTypeMultipleChoice:
			q.Text = fmt.Sprintf("How often do you engage with %s?", purpose)
			q.Options = []string{"Daily", "Weekly", "Monthly", "Rarely"}
		case entity.QuestionTypeRating:
			q.Text = fmt.Sprintf("On a scale of 1 to 5, how satisfied are you with %s?", purpose)
		case entity.QuestionTypeBoolean:
			q.Text = fmt.Sprintf("Would you recommend %s to others?", purpose)
		default:
			q.Text = fmt.Sprintf("What is one thing we could improve about %s?", purpose)
		}
		questions = append(questions, q)
	}

	out, err := json.Marshal(questions)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func mockTypes(prompt string) []entity.QuestionType {
	var types []entity.QuestionType
	for _, raw := range strings.Split(capture(mockTypesRe, prompt), ",") {
		if qt := entity.QuestionType(strings.TrimSpace(raw)); qt.IsValid() {
			types = append(types, qt)
		}
	}
	if len(types) == 0 {
		return entity.AllQuestionTypes()
	}
	return types
}

func capture(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
