package session

import (
	"github.com/futig/survey-agent/internal/entity"
)

func toSurveyDTO(session *entity.Session, questions []entity.SurveyQuestion) *entity.SurveyDTO {
	title := "Survey"
	if p := session.State.Purpose; p != nil && *p != "" {
		title = "Survey: " + *p
	}

	return &entity.SurveyDTO{
		SessionID:              session.ID,
		Title:                  title,
		IsConversationComplete: session.State.IsConversationComplete,
		Questions:              questions,
	}
}

// ToSessionDTO summarizes a stored session without its full state
func ToSessionDTO(session *entity.Session) *entity.SessionDTO {
	dto := &entity.SessionDTO{
		ID:        session.ID,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
	if session.State != nil {
		dto.Phase = session.State.Phase()
		dto.IsConversationComplete = session.State.IsConversationComplete
		dto.TurnCount = len(session.State.ConversationHistory)
	}
	return dto
}
