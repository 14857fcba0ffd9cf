package intake

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/futig/survey-agent/internal/entity"
)

const followUpPromptTemplate = `The user is designing a survey. They were asked:
"%s"

And they responded:
"%s"

Generate 1-2 specific follow-up questions that would help clarify or expand on their answer.
These questions should gather more specific information for creating a targeted survey.
Always generate at least one follow-up question unless the response is already detailed and complete.

Respond with a JSON array of strings containing only the questions.
Example: ["Question 1?", "Question 2?"]`

const surveyPromptTemplate = `Generate a professional survey based on the following requirements:

%s
Generate exactly %d survey questions that address the specified purpose, target audience and topics.
Include a mix of the following question types: %s.

For each question specify:
1. The question text
2. The question type (multiple_choice, text, rating, boolean)
3. Options (only for multiple_choice questions)
4. Whether the question is required

Respond with a JSON array of question objects:
[
  {
    "question_text": "Question here?",
    "question_type": "multiple_choice|text|rating|boolean",
    "options": ["Option 1", "Option 2"],
    "required": true
  }
]`

func buildFollowUpPrompt(mainQuestion, answer string) string {
	return fmt.Sprintf(followUpPromptTemplate, mainQuestion, answer)
}

// surveyBrief is the resolved input of survey synthesis, defaults applied
type surveyBrief struct {
	Purpose        string
	Audience       string
	Count          int
	Topics         []string
	Types          []entity.QuestionType
	AdditionalInfo map[string]string
}

func buildSurveyPrompt(b surveyBrief) string {
	typesList := joinTypes(b.Types)
	if typesList == "" {
		typesList = joinTypes(entity.AllQuestionTypes())
	}
	return fmt.Sprintf(surveyPromptTemplate, requirementsSummary(b), b.Count, typesList)
}

// requirementsSummary renders the brief. Additional info is sorted by key
// so identical requirements always produce the same prompt.
func requirementsSummary(b surveyBrief) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Survey Purpose: %s\n", orNotSpecified(b.Purpose))
	fmt.Fprintf(&sb, "Target Audience: %s\n", orNotSpecified(b.Audience))
	fmt.Fprintf(&sb, "Number of Questions: %d\n", b.Count)
	fmt.Fprintf(&sb, "Topics to Cover: %s\n", orNotSpecified(strings.Join(b.Topics, ", ")))

	types := joinTypes(b.Types)
	if types == "" {
		types = "All types"
	}
	fmt.Fprintf(&sb, "Question Types to Include: %s\n", types)

	sb.WriteString("\nAdditional Information:\n")
	for _, key := range slices.Sorted(maps.Keys(b.AdditionalInfo)) {
		fmt.Fprintf(&sb, "- %s: %s\n", key, b.AdditionalInfo[key])
	}

	return sb.String()
}

func joinTypes(types []entity.QuestionType) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
