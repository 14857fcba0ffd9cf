package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/futig/survey-agent/internal/pkg/formatter"
	"github.com/futig/survey-agent/internal/pkg/logger"
	"github.com/futig/survey-agent/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const SessionIDHeader = "X-Session-ID"

type Handler struct {
	usecase      SessionUsecase
	callbackConn CallbackConnector
	validator    *validator.Validator
	formatters   *formatter.Factory
}

func NewHandler(
	usecase SessionUsecase,
	validator *validator.Validator,
	callbackConn CallbackConnector,
) *Handler {
	return &Handler{
		usecase:      usecase,
		validator:    validator,
		callbackConn: callbackConn,
		formatters:   formatter.NewFactory(),
	}
}

// StartSession handles POST /survey-session - Start new session
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	sessionID := r.Header.Get(SessionIDHeader)
	if sessionID != "" {
		if err := h.validator.ValidateSessionID(sessionID); err != nil {
			h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
			return
		}
	}

	h.start(ctx, w, sessionID)
}

// RestartSession handles POST /survey-session/{id}/start - Restart session, discarding prior state
func (h *Handler) RestartSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "RestartSession"),
	)

	if err := h.validator.ValidateSessionID(sessionID); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	h.start(ctx, w, sessionID)
}

func (h *Handler) start(ctx context.Context, w http.ResponseWriter, sessionID string) {
	session, question, err := h.usecase.StartSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "survey session started", zap.String("session_id", session.ID))

	w.Header().Set(SessionIDHeader, session.ID)
	h.respondJSON(w, http.StatusCreated, entity.StartSessionResponse{
		SessionID: session.ID,
		Question:  question,
	})
}

// GetSession handles GET /survey-session/{id} - Get session summary
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetSession"),
	)

	ctxzap.Debug(ctx, "fetching session")

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// SubmitAnswer handles POST /survey-session/{id}/answer - Submit one answer
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	requestID := r.Header.Get("X-Request-ID")

	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "SubmitAnswer"),
	)

	var req entity.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitAnswer(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	question, complete, err := h.usecase.SubmitAnswer(ctx, sessionID, req.Answer)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "answer submitted", zap.Bool("is_complete", complete))

	if complete && req.CallbackURL != "" {
		h.deliverSurvey(ctx, entity.CallbackTarget{URL: req.CallbackURL, RequestID: requestID, SessionID: sessionID})
	}

	h.respondJSON(w, http.StatusOK, entity.SubmitAnswerResponse{
		SessionID:  sessionID,
		Question:   question,
		IsComplete: complete,
	})
}

// deliverSurvey synthesizes in the background and posts the result to target
func (h *Handler) deliverSurvey(ctx context.Context, target entity.CallbackTarget) {
	go func() {
		bgCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
			zap.String("request_id", target.RequestID),
			zap.String("action", "DeliverSurvey-async"),
		)

		survey, err := h.usecase.GenerateSurvey(bgCtx, target.SessionID, false)
		if err != nil {
			ctxzap.Error(bgCtx, "failed to synthesize survey", zap.Error(err))
			h.callbackConn.SurveyFailed(bgCtx, target, err)
			return
		}

		h.callbackConn.SurveyReady(bgCtx, target, survey)
	}()
}

// GetHistory handles GET /survey-session/{id}/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetHistory"),
	)

	history, err := h.usecase.GetHistory(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toHistoryResponse(sessionID, history))
}

// GetRequirements handles GET /survey-session/{id}/requirements
func (h *Handler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetRequirements"),
	)

	req, err := h.usecase.GetRequirements(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toRequirementsResponse(sessionID, req))
}

// GetSurvey handles GET /survey-session/{id}/survey?format=json|markdown|pdf|docx
func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	h.survey(w, r, false, "GetSurvey")
}

// RegenerateSurvey handles POST /survey-session/{id}/survey/regenerate
func (h *Handler) RegenerateSurvey(w http.ResponseWriter, r *http.Request) {
	h.survey(w, r, true, "RegenerateSurvey")
}

func (h *Handler) survey(w http.ResponseWriter, r *http.Request, regenerate bool, action string) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", action),
	)

	format, err := h.validator.ValidateFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid format parameter", err)
		return
	}

	fmtr, err := h.formatters.Create(format)
	if err != nil {
		h.respondError(ctx, w, http.StatusNotImplemented, "format not implemented", err)
		return
	}

	survey, err := h.usecase.GenerateSurvey(ctx, sessionID, regenerate)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if format == entity.FormatJSON {
		h.respondJSON(w, http.StatusOK, survey)
		return
	}

	body, err := fmtr.Format(survey)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to format survey", err)
		return
	}

	ctxzap.Info(ctx, "survey exported", zap.String("format", string(format)))
	w.Header().Set("Content-Type", fmtr.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"survey-%s%s\"", sessionID, fmtr.FileExtension()))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// DeleteSession handles DELETE /survey-session/{id} - End session
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "DeleteSession"),
	)

	if err := h.usecase.DeleteSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session deleted")
	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "session ended",
	})
}

// Helper methods

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}

	detail := message
	if status < http.StatusInternalServerError && err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: detail,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	case errors.Is(err, entity.ErrMissingInput), errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat), errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrNotStarted), errors.Is(err, entity.ErrConversationComplete):
		h.respondError(ctx, w, http.StatusConflict, "invalid session state", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
