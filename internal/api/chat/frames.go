package chat

import "github.com/futig/survey-agent/internal/entity"

type FrameType string

const (
	// client to server
	FrameStart      FrameType = "start"
	FrameAnswer     FrameType = "answer"
	FrameSurvey     FrameType = "survey"
	FrameRegenerate FrameType = "regenerate"

	// server to client
	FrameQuestion FrameType = "question"
	FrameComplete FrameType = "complete"
	FrameError    FrameType = "error"
)

// ClientFrame is a message received from the browser
type ClientFrame struct {
	Type   FrameType `json:"type"`
	Answer string    `json:"answer,omitempty"`
}

// ServerFrame is a message sent to the browser
type ServerFrame struct {
	Type      FrameType         `json:"type"`
	SessionID string            `json:"session_id"`
	Question  string            `json:"question,omitempty"`
	Survey    *entity.SurveyDTO `json:"survey,omitempty"`
	Error     string            `json:"error,omitempty"`
}
