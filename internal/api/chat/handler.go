package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/futig/survey-agent/internal/entity"
	"github.com/futig/survey-agent/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// any origin may connect; the chat socket carries no credentials beyond the session id
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves the intake conversation over a WebSocket, one session per connection
type Handler struct {
	usecase SessionUsecase
}

func NewHandler(usecase SessionUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Serve handles GET /survey-session/{id}/ws
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(r.Context())),
		zap.String("session_id", sessionID),
		zap.String("action", "ChatWS"),
	)

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctxzap.Warn(ctx, "websocket upgrade failed", zap.Error(err))
		return
	}

	ctxzap.Info(ctx, "chat connected", zap.String("remote_addr", r.RemoteAddr))

	send := make(chan ServerFrame, sendBuffer)
	done := make(chan struct{})
	go h.writePump(ctx, wsConn, send, done)
	go h.readPump(ctx, wsConn, sessionID, send, done)
}

// readPump handles frames one at a time, so turns of one connection never race
func (h *Handler) readPump(ctx context.Context, wsConn *websocket.Conn, sessionID string, send chan<- ServerFrame, done <-chan struct{}) {
	defer func() {
		close(send)
		wsConn.Close()
		ctxzap.Info(ctx, "chat disconnected")
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ctxzap.Warn(ctx, "websocket read error", zap.Error(err))
			}
			return
		}

		reply := ServerFrame{Type: FrameError, SessionID: sessionID, Error: "malformed frame"}
		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err == nil {
			reply = h.handleFrame(ctx, sessionID, frame)
		}

		select {
		case send <- reply:
		case <-done:
			return
		}
	}
}

func (h *Handler) handleFrame(ctx context.Context, sessionID string, frame ClientFrame) ServerFrame {
	out := ServerFrame{SessionID: sessionID}

	switch frame.Type {
	case FrameStart:
		_, question, err := h.usecase.StartSession(ctx, sessionID)
		if err != nil {
			return errorFrame(ctx, out, err)
		}
		out.Type, out.Question = FrameQuestion, question

	case FrameAnswer:
		question, complete, err := h.usecase.SubmitAnswer(ctx, sessionID, frame.Answer)
		if err != nil {
			return errorFrame(ctx, out, err)
		}
		out.Type, out.Question = FrameQuestion, question
		if complete {
			out.Type = FrameComplete
		}

	case FrameSurvey, FrameRegenerate:
		survey, err := h.usecase.GenerateSurvey(ctx, sessionID, frame.Type == FrameRegenerate)
		if err != nil {
			return errorFrame(ctx, out, err)
		}
		out.Type, out.Survey = FrameSurvey, survey

	default:
		out.Type, out.Error = FrameError, "unknown frame type: "+string(frame.Type)
	}

	return out
}

func errorFrame(ctx context.Context, out ServerFrame, err error) ServerFrame {
	out.Type = FrameError
	switch {
	case errors.Is(err, entity.ErrMissingInput):
		out.Error = "answer must not be empty"
	case errors.Is(err, entity.ErrNotStarted):
		out.Error = "conversation not started"
	case errors.Is(err, entity.ErrConversationComplete):
		out.Error = "conversation already complete"
	default:
		ctxzap.Error(ctx, "chat frame failed", zap.Error(err))
		out.Error = "internal error"
	}
	return out
}

func (h *Handler) writePump(ctx context.Context, wsConn *websocket.Conn, send <-chan ServerFrame, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		close(done)
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case frame, ok := <-send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := wsConn.WriteJSON(frame); err != nil {
				ctxzap.Debug(ctx, "websocket write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
