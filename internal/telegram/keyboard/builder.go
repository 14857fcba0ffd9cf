package keyboard

import (
	"github.com/futig/survey-agent/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Builder creates inline keyboards
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard offers to begin the intake interview
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Start interview", EncodeCallback(ActionPrefix, ActionStart)),
		),
	)
}

// InterviewKeyboard is attached to every intake question
func (b *Builder) InterviewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛑 Cancel", EncodeCallback(ActionPrefix, ActionCancel)),
		),
	)
}

// ResultKeyboard offers downloads and regeneration of a finished survey
func (b *Builder) ResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 .md", EncodeCallback(DownloadPrefix, string(entity.FormatMarkdown))),
			tgbotapi.NewInlineKeyboardButtonData("📕 .pdf", EncodeCallback(DownloadPrefix, string(entity.FormatPDF))),
			tgbotapi.NewInlineKeyboardButtonData("📘 .docx", EncodeCallback(DownloadPrefix, string(entity.FormatDOCX))),
			tgbotapi.NewInlineKeyboardButtonData("🧾 .json", EncodeCallback(DownloadPrefix, string(entity.FormatJSON))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Regenerate", EncodeCallback(ActionPrefix, ActionRegenerate)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Finish", EncodeCallback(ActionPrefix, ActionCancel)),
		),
	)
}
