package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/soundroomhq/soundroom/internal/application/config"
	"github.com/soundroomhq/soundroom/internal/application/constant"
	"github.com/soundroomhq/soundroom/internal/domain/events"
	"github.com/soundroomhq/soundroom/internal/infra/appctx"
	"github.com/soundroomhq/soundroom/internal/usecase"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = time.Second
)

// SessionHandler upgrades a member's connection into a live room session
// and runs its dispatch loop.
type SessionHandler struct {
	upgrader *websocket.Upgrader

	sessionUsecase usecase.SessionUsecase
}

func NewSessionHandler(cfg *config.Config, sessionUsecase usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		sessionUsecase: sessionUsecase,
	}
}

func (h *SessionHandler) Handle(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room id"})
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("WebSocket upgrade error", slog.Any(constant.Error, err))
		return err
	}
	defer ws.Close()

	membership, err := h.sessionUsecase.Connect(c.Request().Context(), userID, roomID, ws)
	if err != nil {
		writeClose(ws, websocket.ClosePolicyViolation, "cannot join room session")
		return nil
	}

	// Cleanup must run exactly once, whether the client disconnects, the
	// room dies under us or the loop exits on a leave action.
	var cleanup sync.Once
	disconnect := func() {
		cleanup.Do(func() {
			h.sessionUsecase.Disconnect(context.WithoutCancel(c.Request().Context()), membership)
		})
	}
	defer disconnect()

	if err = ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				// Control frames are the only write safe to interleave
				// with the registry's broadcasts on this connection.
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			h.logReadError(err, membership.ID)
			return nil
		}

		var env events.Envelope
		if err = json.Unmarshal(msg, &env); err != nil {
			slog.Warn("unmarshal session frame",
				slog.Any(constant.Error, err),
				slog.Any(constant.MembershipID, membership.ID),
			)
			continue
		}

		if quit := h.sessionUsecase.HandleEnvelope(c.Request().Context(), membership, env); quit {
			return nil
		}
	}
}

func (h *SessionHandler) logReadError(err error, membershipID uuid.UUID) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("member disconnected from session", slog.Any(constant.MembershipID, membershipID))
		default:
			slog.Error("session close error", slog.Any(constant.Error, err))
		}
	} else {
		slog.Error("session read", slog.Any(constant.Error, err))
	}
}

func writeClose(ws *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
