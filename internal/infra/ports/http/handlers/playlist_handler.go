package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/appctx"
	"github.com/soundroomhq/soundroom/internal/infra/ports/http/dto"
	"github.com/soundroomhq/soundroom/internal/usecase"
)

type PlaylistHandler struct {
	playlistUsecase usecase.PlaylistUsecase
}

func NewPlaylistHandler(playlistUsecase usecase.PlaylistUsecase) *PlaylistHandler {
	return &PlaylistHandler{
		playlistUsecase: playlistUsecase,
	}
}

func (h *PlaylistHandler) Create(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	var req dto.CreatePlaylistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	playlist, err := h.playlistUsecase.CreatePlaylist(c.Request().Context(), userID, req.Name, req.Kind)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, playlist)
}

func (h *PlaylistHandler) List(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	playlists, err := h.playlistUsecase.SearchPlaylists(c.Request().Context(), userID, c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}

	if kind := models.PlaylistKind(c.QueryParam("kind")); kind != "" {
		filtered := playlists[:0]
		for _, playlist := range playlists {
			if playlist.Kind == kind {
				filtered = append(filtered, playlist)
			}
		}
		playlists = filtered
	}

	return c.JSON(http.StatusOK, playlists)
}

func (h *PlaylistHandler) Get(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	playlist, err := h.ownedPlaylist(c, userID)
	if err != nil {
		return fail(c, err)
	}

	tracks, err := h.playlistUsecase.Tracks(c.Request().Context(), playlist.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, dto.PlaylistResponse{Playlist: *playlist, Tracks: tracks})
}

func (h *PlaylistHandler) Update(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	playlistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid playlist id"})
	}

	var req dto.UpdatePlaylistRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	playlist, err := h.playlistUsecase.UpdatePlaylist(c.Request().Context(), userID, playlistID, req.Name, req.CoverURL)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, playlist)
}

func (h *PlaylistHandler) Delete(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	playlistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid playlist id"})
	}

	if err = h.playlistUsecase.DeletePlaylist(c.Request().Context(), userID, playlistID); err != nil {
		return fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PlaylistHandler) AddTrack(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	playlist, err := h.ownedPlaylist(c, userID)
	if err != nil {
		return fail(c, err)
	}

	var req dto.AddPlaylistTrackRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err = h.playlistUsecase.AppendTrack(c.Request().Context(), playlist.ID, req.TrackID); err != nil {
		return fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PlaylistHandler) RemoveTrack(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	playlist, err := h.ownedPlaylist(c, userID)
	if err != nil {
		return fail(c, err)
	}

	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid position"})
	}

	if err = h.playlistUsecase.RemoveTrackAt(c.Request().Context(), playlist.ID, position); err != nil {
		return fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PlaylistHandler) MoveTrack(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	playlist, err := h.ownedPlaylist(c, userID)
	if err != nil {
		return fail(c, err)
	}

	var req dto.MovePlaylistTrackRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	err = h.playlistUsecase.MoveTrack(c.Request().Context(), playlist.ID, req.TrackID, req.FromPosition, req.ToPosition)
	if err != nil {
		return fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ownedPlaylist resolves :id and checks the caller owns it. Room playlists
// have no owner and are only editable through the room session.
func (h *PlaylistHandler) ownedPlaylist(c echo.Context, userID uuid.UUID) (*models.Playlist, error) {
	playlistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, apperr.Validation("invalid playlist id")
	}

	playlist, err := h.playlistUsecase.GetPlaylist(c.Request().Context(), playlistID)
	if err != nil {
		return nil, err
	}

	if playlist.OwnerID == nil || *playlist.OwnerID != userID {
		return nil, apperr.Forbidden("not the playlist owner")
	}

	return playlist, nil
}
