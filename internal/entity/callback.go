package entity

import "time"

type CallbackEventType string

const (
	CallbackEventSurveyReady  CallbackEventType = "finalSurvey"
	CallbackEventSurveyFailed CallbackEventType = "error"
)

// CallbackTarget says where an asynchronous result is delivered
type CallbackTarget struct {
	URL       string
	RequestID string
	SessionID string
}

// CallbackEvent is the body POSTed to a callback URL
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Data      any               `json:"data"`
}

type CallbackFailure struct {
	Error string `json:"error"`
}
