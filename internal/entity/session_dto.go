package entity

import "time"

type SubmitAnswerRequest struct {
	Answer      string `json:"answer"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type SubmitAnswerResponse struct {
	SessionID  string `json:"session_id"`
	Question   string `json:"question"`
	IsComplete bool   `json:"is_complete"`
}

type HistoryResponse struct {
	SessionID string `json:"session_id"`
	History   []Turn `json:"history"`
}

type RequirementsResponse struct {
	SessionID string `json:"session_id"`
	Requirements
}

type SurveyDTO struct {
	SessionID              string           `json:"session_id"`
	Title                  string           `json:"title"`
	IsConversationComplete bool             `json:"is_conversation_complete"`
	Questions              []SurveyQuestion `json:"questions"`
}

type SessionDTO struct {
	ID                     string            `json:"session_id"`
	Phase                  ConversationPhase `json:"phase"`
	IsConversationComplete bool              `json:"is_conversation_complete"`
	TurnCount              int               `json:"turn_count"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}
