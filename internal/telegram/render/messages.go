package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/futig/survey-agent/internal/entity"
)

const (
	MsgWelcome = `👋 Hi! I help you design a survey.

I will ask a few short questions about what you want to learn and who will answer, then draft the survey for you.`

	MsgHelp = `🤖 Bot commands:

/start - Start a new interview
/survey - Generate a fresh version of your survey
/cancel - Discard the current interview
/help - Show this help

How it works:
1. Answer the intake questions
2. I may ask a follow-up or two
3. Get the drafted survey and download it`

	MsgQuestion = `❓ %s`

	MsgGenerating = `⏳ Drafting your survey...`

	MsgResultReady = `✅ Your survey is ready. Download it in the format you need:`

	MsgSessionFinished = `👋 Interview closed.

Press /start to begin a new one.`

	MsgAlreadyComplete = `✅ The interview is complete. Use /survey for a new version or /start to begin again.`

	ErrGeneric            = `❌ Something went wrong. Try again or press /start`
	ErrNoSession          = `❌ No active interview. Press /start`
	ErrUnknownCommand     = `❌ Unknown command. Press /help`
	ErrUnsupportedMessage = `❌ Please answer with a text message.`
	ErrInvalidInput       = `❌ That answer could not be accepted. Please rephrase it.`
	ErrNetworkIssue       = `❌ Connection problem. Try again a bit later.`
	ErrTimeout            = `❌ That took too long. Please try again.`
)

func RenderQuestion(question string) string {
	return fmt.Sprintf(MsgQuestion, question)
}

// RenderSurvey renders a survey as plain chat text
func RenderSurvey(survey *entity.SurveyDTO) string {
	var sb strings.Builder

	title := strings.TrimSpace(survey.Title)
	if title == "" {
		title = "Survey"
	}
	sb.WriteString("📋 " + title + "\n")

	for i, q := range survey.Questions {
		marker := ""
		if q.Required {
			marker = " *"
		}
		fmt.Fprintf(&sb, "\n%d. %s%s\n", i+1, q.Text, marker)

		switch q.Type {
		case entity.QuestionTypeMultipleChoice:
			for _, opt := range q.Options {
				sb.WriteString("   • " + opt + "\n")
			}
		case entity.QuestionTypeRating:
			sb.WriteString("   ⭐ 1 to 5\n")
		case entity.QuestionTypeBoolean:
			sb.WriteString("   Yes / No\n")
		}
	}

	return sb.String()
}

// ClassifyError maps an error to a user-facing message
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ErrGeneric
	case errors.Is(err, entity.ErrNotStarted), errors.Is(err, entity.ErrSessionNotFound):
		return ErrNoSession
	case errors.Is(err, entity.ErrConversationComplete):
		return MsgAlreadyComplete
	case errors.Is(err, entity.ErrMissingInput),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter):
		return ErrInvalidInput
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	return ErrGeneric
}
