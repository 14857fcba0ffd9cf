package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/survey-agent/internal/entity"
)

const defaultTitle = "Survey"

type Formatter interface {
	Format(survey *entity.SurveyDTO) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatJSON:
		return NewJSONFormatter(), nil
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrInvalidFormat, format)
	}
}

func title(survey *entity.SurveyDTO) string {
	if t := strings.TrimSpace(survey.Title); t != "" {
		return t
	}
	return defaultTitle
}

// annotation renders "(rating, required)" style hints
func annotation(q entity.SurveyQuestion) string {
	kind := strings.ReplaceAll(string(q.Type), "_", " ")
	if q.Required {
		return fmt.Sprintf("(%s, required)", kind)
	}
	return fmt.Sprintf("(%s, optional)", kind)
}

// answerLines lists what a respondent picks from, if anything
func answerLines(q entity.SurveyQuestion) []string {
	switch q.Type {
	case entity.QuestionTypeMultipleChoice:
		return q.Options
	case entity.QuestionTypeBoolean:
		return []string{"Yes", "No"}
	case entity.QuestionTypeRating:
		return []string{"1 (lowest) to 5 (highest)"}
	default:
		return nil
	}
}
