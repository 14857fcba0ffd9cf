package intake

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/futig/survey-agent/internal/entity"
)

const (
	// accumulated text fields are joined with this separator
	appendSeparator = " - "

	maxInfoKeyLength = 50

	defaultQuestionCount = 10
	fewQuestionCount     = 5
	mediumQuestionCount  = 10
	manyQuestionCount    = 15
)

var (
	digitsRe      = regexp.MustCompile(`\d+`)
	topicsSplitRe = regexp.MustCompile(`(?i),|;|\s+and\s+`)
)

// RequirementUpdate is a partial change to the requirement fields produced
// from one answer. Zero values mean "no change".
type RequirementUpdate struct {
	Purpose       string
	Audience      string
	QuestionCount *int
	Topics        []string
	QuestionTypes []entity.QuestionType
	Info          map[string]string
}

// ExtractMain maps an answer to an intake question onto requirement fields.
// Dispatch is by keyword in the question text in a fixed precedence order.
// Answers to questions that match no keyword are kept as additional info.
func ExtractMain(question, answer string) RequirementUpdate {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "purpose"):
		return RequirementUpdate{Purpose: answer}
	case strings.Contains(q, "audience"):
		return RequirementUpdate{Audience: answer}
	case strings.Contains(q, "how many questions"):
		count := ParseQuestionCount(answer)
		return RequirementUpdate{QuestionCount: &count}
	case strings.Contains(q, "topics"), strings.Contains(q, "areas"):
		return RequirementUpdate{Topics: SplitTopics(answer)}
	case strings.Contains(q, "type of questions"):
		return RequirementUpdate{QuestionTypes: DetectQuestionTypes(answer)}
	default:
		return RequirementUpdate{Info: map[string]string{InfoKey(question): answer}}
	}
}

// ExtractFollowUp records a follow-up answer as additional info and
// appends it to purpose, audience or topics when the follow-up mentions them.
func ExtractFollowUp(question, answer string) RequirementUpdate {
	u := RequirementUpdate{Info: map[string]string{InfoKey(question): answer}}

	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "purpose"):
		u.Purpose = answer
	case strings.Contains(q, "audience"):
		u.Audience = answer
	case strings.Contains(q, "topics"):
		u.Topics = SplitTopics(answer)
	}

	return u
}

// ApplyTo merges the update into state. Text fields are appended to, not
// overwritten, when already set.
func (u RequirementUpdate) ApplyTo(s *entity.ConversationState) {
	if u.Purpose != "" {
		s.Purpose = appendText(s.Purpose, u.Purpose)
	}
	if u.Audience != "" {
		s.Audience = appendText(s.Audience, u.Audience)
	}
	if u.QuestionCount != nil {
		count := *u.QuestionCount
		s.QuestionCount = &count
	}
	if len(u.Topics) > 0 {
		s.Topics = append(s.Topics, u.Topics...)
	}
	if len(u.QuestionTypes) > 0 {
		s.QuestionTypes = append([]entity.QuestionType(nil), u.QuestionTypes...)
	}
	if len(u.Info) > 0 {
		if s.AdditionalInfo == nil {
			s.AdditionalInfo = make(map[string]string, len(u.Info))
		}
		for k, v := range u.Info {
			s.AdditionalInfo[k] = v
		}
	}
}

func appendText(current *string, addition string) *string {
	if current == nil || *current == "" {
		v := addition
		return &v
	}
	v := *current + appendSeparator + addition
	return &v
}

// ParseQuestionCount reads the desired number of questions from free text.
// It never fails: unparseable input resolves to the default.
func ParseQuestionCount(answer string) int {
	if digits := digitsRe.FindString(answer); digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return defaultQuestionCount
		}
		return n
	}

	a := strings.ToLower(answer)
	switch {
	case strings.Contains(a, "few"), strings.Contains(a, "short"):
		return fewQuestionCount
	case strings.Contains(a, "medium"):
		return mediumQuestionCount
	case strings.Contains(a, "many"), strings.Contains(a, "comprehensive"):
		return manyQuestionCount
	default:
		return defaultQuestionCount
	}
}

// SplitTopics splits on commas, semicolons and the word "and"
func SplitTopics(answer string) []string {
	parts := topicsSplitRe.Split(answer, -1)
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			topics = append(topics, p)
		}
	}
	return topics
}

// DetectQuestionTypes returns the types mentioned in the answer,
// or every type when none is mentioned.
func DetectQuestionTypes(answer string) []entity.QuestionType {
	a := strings.ToLower(answer)

	var types []entity.QuestionType
	if containsAny(a, "multiple choice", "multiple-choice") {
		types = append(types, entity.QuestionTypeMultipleChoice)
	}
	if containsAny(a, "rating", "scale") {
		types = append(types, entity.QuestionTypeRating)
	}
	if containsAny(a, "open", "text") {
		types = append(types, entity.QuestionTypeText)
	}
	if containsAny(a, "yes/no", "yes-no", "yes or no", "boolean") {
		types = append(types, entity.QuestionTypeBoolean)
	}

	if len(types) == 0 {
		return entity.AllQuestionTypes()
	}
	return types
}

// InfoKey normalizes a question into an additional info key
func InfoKey(question string) string {
	key := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(question), "?", ""))
	if utf8.RuneCountInString(key) > maxInfoKeyLength {
		key = string([]rune(key)[:maxInfoKeyLength]) + "..."
	}
	return key
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
