package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/futig/survey-agent/internal/config"
	"github.com/futig/survey-agent/internal/entity"
)

const maxSessionIDLength = 128

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// Validator checks inbound requests before they reach the intake flow
type Validator struct {
	maxAnswerLength int
}

func NewValidator(cfg config.IntakeConfig) *Validator {
	return &Validator{maxAnswerLength: cfg.MaxAnswerLength}
}

// ValidateSessionID accepts client supplied ids such as UUIDs or "tg-12345"
func (v *Validator) ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: session_id", entity.ErrMissingField)
	}
	if len(id) > maxSessionIDLength || !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: session_id must be at most %d characters of letters, digits, '.', '_', ':' or '-'", entity.ErrInvalidParameter, maxSessionIDLength)
	}
	return nil
}

// ValidateSubmitAnswer validates answer submission
func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if strings.TrimSpace(req.Answer) == "" {
		return fmt.Errorf("%w: answer", entity.ErrMissingField)
	}

	if v.maxAnswerLength > 0 && utf8.RuneCountInString(req.Answer) > v.maxAnswerLength {
		return fmt.Errorf("%w: answer exceeds %d characters", entity.ErrInvalidParameter, v.maxAnswerLength)
	}

	if req.CallbackURL != "" {
		return validateCallbackURL(req.CallbackURL)
	}

	return nil
}

// ValidateFormat parses the survey export format, defaulting to JSON
func (v *Validator) ValidateFormat(raw string) (entity.ResultFormat, error) {
	if raw == "" {
		return entity.FormatJSON, nil
	}

	format := entity.ResultFormat(strings.ToLower(raw))
	if !format.IsValid() {
		return "", fmt.Errorf("%w: %s", entity.ErrInvalidFormat, raw)
	}
	return format, nil
}

func validateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: callback_url must be an absolute http(s) URL", entity.ErrInvalidParameter)
	}
	return nil
}
