package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/survey-agent/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(survey *entity.SurveyDTO) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", title(survey))

	for i, q := range survey.Questions {
		fmt.Fprintf(&buf, "%d. **%s** _%s_\n", i+1, q.Text, annotation(q))
		for _, line := range answerLines(q) {
			fmt.Fprintf(&buf, "   - %s\n", line)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
