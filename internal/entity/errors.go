package entity

import "errors"

// Domain errors
var (
	// Intake errors
	ErrMissingInput         = errors.New("answer is empty")
	ErrNotStarted           = errors.New("conversation is not started")
	ErrConversationComplete = errors.New("conversation is already complete")

	// Generation errors. Never surfaced by the intake core, only logged.
	ErrGeneration    = errors.New("text generation failed")
	ErrInvalidOutput = errors.New("generation output is not in the requested format")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
