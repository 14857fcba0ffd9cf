package entity

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Turn is a single conversation history entry
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeText           QuestionType = "text"
	QuestionTypeRating         QuestionType = "rating"
	QuestionTypeBoolean        QuestionType = "boolean"
)

// AllQuestionTypes returns every supported question type in display order
func AllQuestionTypes() []QuestionType {
	return []QuestionType{
		QuestionTypeMultipleChoice,
		QuestionTypeRating,
		QuestionTypeText,
		QuestionTypeBoolean,
	}
}

func (qt QuestionType) IsValid() bool {
	switch qt {
	case QuestionTypeMultipleChoice, QuestionTypeText, QuestionTypeRating, QuestionTypeBoolean:
		return true
	default:
		return false
	}
}

// SurveyQuestion is one question of a synthesized survey.
// Options are present only for multiple_choice questions.
type SurveyQuestion struct {
	Text     string       `json:"question_text"`
	Type     QuestionType `json:"question_type"`
	Options  []string     `json:"options,omitempty"`
	Required bool         `json:"required"`
}

// UnmarshalJSON defaults Required to true when the field is absent
func (q *SurveyQuestion) UnmarshalJSON(data []byte) error {
	type alias SurveyQuestion
	raw := struct {
		alias
		Required *bool `json:"required"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*q = SurveyQuestion(raw.alias)
	q.Required = raw.Required == nil || *raw.Required
	return nil
}

type ConversationPhase string

const (
	PhaseAwaitingMainAnswer     ConversationPhase = "AWAITING_MAIN_ANSWER"
	PhaseAwaitingFollowUpAnswer ConversationPhase = "AWAITING_FOLLOW_UP_ANSWER"
	PhaseComplete               ConversationPhase = "COMPLETE"
)

// ConversationState is the full state of one intake conversation.
// It is serializable so any session store can persist and reload it.
type ConversationState struct {
	PredefinedQuestions  []string `json:"predefined_questions"`
	CurrentQuestionIndex int      `json:"current_question_index"`

	InFollowUpMode       bool     `json:"in_follow_up_mode"`
	FollowUpQuestions    []string `json:"follow_up_questions,omitempty"`
	CurrentFollowUpIndex int      `json:"current_follow_up_index"`
	ConversationHistory  []Turn   `json:"conversation_history"`

	Purpose        *string           `json:"purpose,omitempty"`
	Audience       *string           `json:"audience,omitempty"`
	QuestionCount  *int              `json:"question_count,omitempty"`
	Topics         []string          `json:"topics,omitempty"`
	QuestionTypes  []QuestionType    `json:"question_types,omitempty"`
	AdditionalInfo map[string]string `json:"additional_info"`

	GeneratedQuestions     []SurveyQuestion `json:"generated_questions,omitempty"`
	IsConversationComplete bool             `json:"is_conversation_complete"`
}

// NewConversationState creates a fresh state for the given intake questions
func NewConversationState(questions []string) *ConversationState {
	return &ConversationState{
		PredefinedQuestions: slices.Clone(questions),
		ConversationHistory: []Turn{},
		AdditionalInfo:      map[string]string{},
	}
}

// Phase reports which state of the intake flow the conversation is in
func (s *ConversationState) Phase() ConversationPhase {
	switch {
	case s.IsConversationComplete:
		return PhaseComplete
	case s.InFollowUpMode:
		return PhaseAwaitingFollowUpAnswer
	default:
		return PhaseAwaitingMainAnswer
	}
}

// Clone returns a deep copy so transitions never mutate a previous state
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}

	c := *s
	c.PredefinedQuestions = slices.Clone(s.PredefinedQuestions)
	c.FollowUpQuestions = slices.Clone(s.FollowUpQuestions)
	c.ConversationHistory = slices.Clone(s.ConversationHistory)
	c.Purpose = clonePtr(s.Purpose)
	c.Audience = clonePtr(s.Audience)
	c.QuestionCount = clonePtr(s.QuestionCount)
	c.Topics = slices.Clone(s.Topics)
	c.QuestionTypes = slices.Clone(s.QuestionTypes)
	c.AdditionalInfo = maps.Clone(s.AdditionalInfo)
	if c.AdditionalInfo == nil {
		c.AdditionalInfo = map[string]string{}
	}
	if s.GeneratedQuestions != nil {
		c.GeneratedQuestions = make([]SurveyQuestion, len(s.GeneratedQuestions))
		for i, q := range s.GeneratedQuestions {
			q.Options = slices.Clone(q.Options)
			c.GeneratedQuestions[i] = q
		}
	}
	return &c
}

// Requirements returns a read-only snapshot of the accumulated requirement fields
func (s *ConversationState) Requirements() Requirements {
	if s == nil {
		return Requirements{
			Topics:         []string{},
			QuestionTypes:  []QuestionType{},
			AdditionalInfo: map[string]string{},
		}
	}

	r := Requirements{
		Purpose:        clonePtr(s.Purpose),
		Audience:       clonePtr(s.Audience),
		QuestionCount:  clonePtr(s.QuestionCount),
		Topics:         slices.Clone(s.Topics),
		QuestionTypes:  slices.Clone(s.QuestionTypes),
		AdditionalInfo: maps.Clone(s.AdditionalInfo),
	}
	if r.Topics == nil {
		r.Topics = []string{}
	}
	if r.QuestionTypes == nil {
		r.QuestionTypes = []QuestionType{}
	}
	if r.AdditionalInfo == nil {
		r.AdditionalInfo = map[string]string{}
	}
	return r
}

// Requirements is a snapshot of the structured survey requirements
type Requirements struct {
	Purpose        *string           `json:"purpose"`
	Audience       *string           `json:"audience"`
	QuestionCount  *int              `json:"question_count"`
	Topics         []string          `json:"topics"`
	QuestionTypes  []QuestionType    `json:"question_types"`
	AdditionalInfo map[string]string `json:"additional_info"`
}

// Session is the stored record of one intake conversation
type Session struct {
	ID        string             `json:"session_id"`
	State     *ConversationState `json:"state"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type ResultFormat string

const (
	FormatJSON     ResultFormat = "json"
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatJSON, FormatMarkdown, FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
