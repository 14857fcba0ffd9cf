package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
	docxCheckbox      = "☐"
)

// DOCXFormatter renders a survey as a Word document: a Heading1 title, then
// one bold numbered paragraph per question followed by checkbox lines for its choices.
type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(survey *entity.SurveyDTO) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	heading := doc.AddParagraph()
	heading.SetStyle("Heading1")
	heading.AddRun().AddText(title(survey))

	for i, q := range survey.Questions {
		writeDOCXQuestion(doc, i+1, q)
	}

	var out bytes.Buffer
	if err := doc.Save(&out); err != nil {
		return nil, fmt.Errorf("save docx: %w", err)
	}
	return out.Bytes(), nil
}

func writeDOCXQuestion(doc *document.Document, n int, q entity.SurveyQuestion) {
	p := doc.AddParagraph()

	text := p.AddRun()
	text.Properties().SetBold(true)
	text.AddText(fmt.Sprintf("%d. %s", n, q.Text))

	hint := p.AddRun()
	hint.Properties().SetItalic(true)
	hint.AddText(" " + annotation(q))

	for _, choice := range answerLines(q) {
		doc.AddParagraph().AddRun().AddText(fmt.Sprintf("    %s %s", docxCheckbox, choice))
	}
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
