package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/appctx"
	"github.com/soundroomhq/soundroom/internal/infra/ports/http/dto"
	"github.com/soundroomhq/soundroom/internal/usecase"
)

type RoomHandler struct {
	roomUsecase        usecase.RoomUsecase
	membershipUsecase  usecase.MembershipUsecase
	playlistUsecase    usecase.PlaylistUsecase
	joinRequestUsecase usecase.JoinRequestUsecase
	chatUsecase        usecase.ChatUsecase
}

func NewRoomHandler(
	roomUsecase usecase.RoomUsecase,
	membershipUsecase usecase.MembershipUsecase,
	playlistUsecase usecase.PlaylistUsecase,
	joinRequestUsecase usecase.JoinRequestUsecase,
	chatUsecase usecase.ChatUsecase,
) *RoomHandler {
	return &RoomHandler{
		roomUsecase:        roomUsecase,
		membershipUsecase:  membershipUsecase,
		playlistUsecase:    playlistUsecase,
		joinRequestUsecase: joinRequestUsecase,
		chatUsecase:        chatUsecase,
	}
}

func (h *RoomHandler) Create(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	var req dto.CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	room, err := h.roomUsecase.CreateRoom(c.Request().Context(), userID, req.Name, req.SourcePlaylistID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) List(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	rooms, err := h.roomUsecase.ListRooms(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) Get(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	room, err := h.roomUsecase.GetRoom(c.Request().Context(), userID, roomID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) Update(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	var req dto.UpdateRoomRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	room, err := h.roomUsecase.UpdateRoom(c.Request().Context(), userID, roomID, req.Name)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) Delete(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	if err = h.roomUsecase.DeleteRoom(c.Request().Context(), userID, roomID); err != nil {
		return fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *RoomHandler) Roster(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	roster, err := h.membershipUsecase.Roster(c.Request().Context(), userID, roomID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, roster)
}

// Playlist returns the room playlist's tracks in play order.
func (h *RoomHandler) Playlist(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	room, err := h.roomUsecase.GetRoom(c.Request().Context(), userID, roomID)
	if err != nil {
		return fail(c, err)
	}

	tracks, err := h.playlistUsecase.Tracks(c.Request().Context(), room.PlaylistID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, tracks)
}

func (h *RoomHandler) RequestToJoin(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	request, err := h.joinRequestUsecase.RequestToJoin(c.Request().Context(), userID, roomID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, request)
}

func (h *RoomHandler) ListJoinRequests(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	requests, err := h.joinRequestUsecase.ListPending(c.Request().Context(), userID, roomID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, requests)
}

func (h *RoomHandler) ResolveJoinRequest(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request id"})
	}

	var req dto.ResolveJoinRequestRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	request, _, err := h.joinRequestUsecase.Resolve(c.Request().Context(), userID, requestID, req.Accept)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

func (h *RoomHandler) Messages(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	var before time.Time
	if raw := c.QueryParam("before"); raw != "" {
		before, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid before timestamp"})
		}
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	messages, err := h.chatUsecase.History(c.Request().Context(), userID, roomID, before, limit)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, messages)
}

func (h *RoomHandler) SearchMessages(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	messages, err := h.chatUsecase.Search(c.Request().Context(), userID, roomID, c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, messages)
}

// Leave removes the caller from the room, running the ownership-transfer
// protocol when the owner departs.
func (h *RoomHandler) Leave(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	membership, err := h.membershipUsecase.GetMembershipByRoomAndUser(c.Request().Context(), roomID, userID)
	if err != nil {
		return fail(c, err)
	}

	outcome, err := h.membershipUsecase.Leave(c.Request().Context(), membership.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, outcome)
}

func (h *RoomHandler) ChangeMemberRole(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	targetID, err := uuid.Parse(c.Param("memberID"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid membership id"})
	}

	var req dto.ChangeRoleRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	actor, err := h.membershipUsecase.GetMembershipByRoomAndUser(c.Request().Context(), roomID, userID)
	if err != nil {
		return fail(c, err)
	}

	if err = h.membershipUsecase.ChangeRole(c.Request().Context(), actor.ID, targetID, models.MemberRole(req.Role)); err != nil {
		return fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *RoomHandler) RemoveMember(c echo.Context) error {
	userID, roomID, err := h.params(c)
	if err != nil {
		return err
	}

	targetID, err := uuid.Parse(c.Param("memberID"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid membership id"})
	}

	actor, err := h.membershipUsecase.GetMembershipByRoomAndUser(c.Request().Context(), roomID, userID)
	if err != nil {
		return fail(c, err)
	}

	if _, err = h.membershipUsecase.RemoveMember(c.Request().Context(), actor.ID, targetID); err != nil {
		return fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *RoomHandler) params(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user ID in context")
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}

	return userID, roomID, nil
}
