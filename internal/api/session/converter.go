package session

import (
	"github.com/futig/survey-agent/internal/entity"
	sessionuc "github.com/futig/survey-agent/internal/usecase/session"
)

func toSessionDTO(session *entity.Session) *entity.SessionDTO {
	return sessionuc.ToSessionDTO(session)
}

func toHistoryResponse(sessionID string, history []entity.Turn) *entity.HistoryResponse {
	return &entity.HistoryResponse{
		SessionID: sessionID,
		History:   history,
	}
}

func toRequirementsResponse(sessionID string, req entity.Requirements) *entity.RequirementsResponse {
	return &entity.RequirementsResponse{
		SessionID:    sessionID,
		Requirements: req,
	}
}
