package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/appctx"
	"github.com/soundroomhq/soundroom/internal/infra/ports/http/dto"
	"github.com/soundroomhq/soundroom/internal/usecase"
)

const maxUploadBytes = 64 << 20

type TrackHandler struct {
	trackUsecase usecase.TrackUsecase
}

func NewTrackHandler(trackUsecase usecase.TrackUsecase) *TrackHandler {
	return &TrackHandler{
		trackUsecase: trackUsecase,
	}
}

// Upload accepts a multipart form: the audio file plus metadata fields.
func (h *TrackHandler) Upload(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "audio file is required"})
	}

	if fileHeader.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "audio file is too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read audio file"})
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read audio file"})
	}

	duration, _ := strconv.Atoi(c.FormValue("duration_seconds"))

	input := usecase.UploadInput{
		Title:           c.FormValue("title"),
		Artist:          c.FormValue("artist"),
		Genre:           c.FormValue("genre"),
		Description:     c.FormValue("description"),
		DurationSeconds: duration,
		Visibility:      models.TrackVisibility(c.FormValue("visibility")),
		Filename:        fileHeader.Filename,
		ContentType:     fileHeader.Header.Get("Content-Type"),
		Audio:           audio,
	}

	track, err := h.trackUsecase.Upload(c.Request().Context(), userID, input)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, track)
}

func (h *TrackHandler) List(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	tracks, err := h.trackUsecase.SearchTracks(c.Request().Context(), userID, c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, tracks)
}

func (h *TrackHandler) Get(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	trackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid track id"})
	}

	track, err := h.trackUsecase.GetTrack(c.Request().Context(), userID, trackID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, track)
}

func (h *TrackHandler) Update(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	trackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid track id"})
	}

	var req dto.UpdateTrackRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	track := &models.Track{
		ID:          trackID,
		Title:       req.Title,
		Artist:      req.Artist,
		Genre:       req.Genre,
		Description: req.Description,
		ArtworkURL:  req.ArtworkURL,
		Visibility:  req.Visibility,
	}

	if err = h.trackUsecase.UpdateTrack(c.Request().Context(), userID, track); err != nil {
		return fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *TrackHandler) Delete(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	trackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid track id"})
	}

	if err = h.trackUsecase.RemoveTrack(c.Request().Context(), userID, trackID); err != nil {
		return fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
