package validator

import (
	"strings"
	"testing"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	return NewValidator(config.IntakeConfig{MaxAnswerLength: 20})
}

func TestValidateSubmitAnswer(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		req     entity.SubmitAnswerRequest
		wantErr error
	}{
		{"valid", entity.SubmitAnswerRequest{Answer: "market research"}, nil},
		{"valid with callback", entity.SubmitAnswerRequest{Answer: "yes", CallbackURL: "https://example.com/hook"}, nil},
		{"blank", entity.SubmitAnswerRequest{Answer: "   "}, entity.ErrMissingField},
		{"too long", entity.SubmitAnswerRequest{Answer: strings.Repeat("a", 21)}, entity.ErrInvalidParameter},
		{"relative callback", entity.SubmitAnswerRequest{Answer: "yes", CallbackURL: "/hook"}, entity.ErrInvalidParameter},
		{"ftp callback", entity.SubmitAnswerRequest{Answer: "yes", CallbackURL: "ftp://example.com"}, entity.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSubmitAnswer(&tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateSessionID("tg-123456"))
	assert.NoError(t, v.ValidateSessionID("5f1b0c2e-8a53-4a8e-9d2c-0c6f6b7b1a11"))
	assert.ErrorIs(t, v.ValidateSessionID(""), entity.ErrMissingField)
	assert.ErrorIs(t, v.ValidateSessionID("has space"), entity.ErrInvalidParameter)
	assert.ErrorIs(t, v.ValidateSessionID(strings.Repeat("x", 129)), entity.ErrInvalidParameter)
}

func TestValidateFormat(t *testing.T) {
	v := newTestValidator()

	format, err := v.ValidateFormat("")
	require.NoError(t, err)
	assert.Equal(t, entity.FormatJSON, format)

	format, err = v.ValidateFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, entity.FormatPDF, format)

	_, err = v.ValidateFormat("xlsx")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}
