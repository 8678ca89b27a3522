package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/application/config"
	"github.com/soundroomhq/soundroom/internal/application/constant"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/memory"
	"github.com/soundroomhq/soundroom/internal/infra/appctx"
	"github.com/soundroomhq/soundroom/internal/usecase"
)

// JoinNotifyHandler serves the short-lived connection a user holds while
// waiting for a join request to be approved or rejected. Opening it files
// the request; the resolution arrives as a single frame and the connection
// closes.
type JoinNotifyHandler struct {
	upgrader *websocket.Upgrader

	joinRequestUsecase usecase.JoinRequestUsecase
	notifier           memory.JoinNotifier
}

func NewJoinNotifyHandler(
	cfg *config.Config,
	joinRequestUsecase usecase.JoinRequestUsecase,
	notifier memory.JoinNotifier,
) *JoinNotifyHandler {
	return &JoinNotifyHandler{
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
		joinRequestUsecase: joinRequestUsecase,
		notifier:           notifier,
	}
}

func (h *JoinNotifyHandler) Handle(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room id"})
	}

	request, err := h.joinRequestUsecase.RequestToJoin(c.Request().Context(), userID, roomID)
	if err != nil {
		// Reconnecting while a request is still pending resumes the wait.
		if !apperr.Is(err, apperr.KindConflict) {
			return fail(c, err)
		}

		request, err = h.joinRequestUsecase.OpenRequest(c.Request().Context(), userID, roomID)
		if err != nil || request.Status != models.JoinRequestPending {
			return fail(c, apperr.Conflict("no pending join request to wait on"))
		}
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("WebSocket upgrade error", slog.Any(constant.Error, err))
		return err
	}
	defer ws.Close()

	h.notifier.Watch(request.ID, ws)
	defer h.notifier.Unwatch(request.ID)

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
				// Keep ping writes off the message-write path shared with
				// the notifier.
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	// Drain until the notifier closes the socket or the client gives up.
	for {
		if _, _, err = ws.ReadMessage(); err != nil {
			return nil
		}
	}
}
