package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/application/constant"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/openai"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres/repository"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/s3"
)

// UploadInput carries the metadata and raw audio of a track upload.
type UploadInput struct {
	Title           string
	Artist          string
	Genre           string
	Description     string
	DurationSeconds int
	Visibility      models.TrackVisibility
	Filename        string
	ContentType     string
	Audio           []byte
}

type TrackUsecase interface {
	// Upload runs the publication pipeline: transcribe, moderate, persist,
	// store media. Moderation rejections block the upload; an unreachable
	// transcription or moderation backend does not.
	Upload(ctx context.Context, uploaderID uuid.UUID, input UploadInput) (*models.Track, error)
	GetTrack(ctx context.Context, userID, trackID uuid.UUID) (*models.Track, error)
	ListTracks(ctx context.Context, userID uuid.UUID) ([]models.Track, error)
	SearchTracks(ctx context.Context, userID uuid.UUID, term string) ([]models.Track, error)
	UpdateTrack(ctx context.Context, userID uuid.UUID, track *models.Track) error
	// RemoveTrack marks the uploader's track removed; playlist entries
	// referencing it stay but the track stops being listable.
	RemoveTrack(ctx context.Context, userID, trackID uuid.UUID) error
}

type trackUsecase struct {
	trackRepo    repository.TrackRepository
	storage      s3.Storage
	intelligence openai.Intelligence
}

func NewTrackUsecase(
	trackRepo repository.TrackRepository,
	storage s3.Storage,
	intelligence openai.Intelligence,
) TrackUsecase {
	return &trackUsecase{
		trackRepo:    trackRepo,
		storage:      storage,
		intelligence: intelligence,
	}
}

func (uc *trackUsecase) Upload(ctx context.Context, uploaderID uuid.UUID, input UploadInput) (*models.Track, error) {
	if input.Title == "" {
		return nil, apperr.Validation("track title is required")
	}

	if len(input.Audio) == 0 {
		return nil, apperr.Validation("audio file is required")
	}

	lyrics := uc.transcribe(ctx, input)

	if lyrics != "" {
		verdict, err := uc.intelligence.Moderate(ctx, lyrics)
		if err != nil {
			// Moderation being down must not block publication.
			slog.Warn("lyrics moderation unavailable", slog.Any(constant.Error, err))
		} else if !verdict.Appropriate {
			return nil, apperr.Validation(fmt.Sprintf("track rejected by moderation: %s", verdict.Reason))
		}
	}

	now := time.Now()

	track := &models.Track{
		ID:              uuid.New(),
		Title:           input.Title,
		Artist:          input.Artist,
		Genre:           input.Genre,
		Description:     input.Description,
		Lyrics:          lyrics,
		DurationSeconds: input.DurationSeconds,
		Status:          models.TrackActive,
		Visibility:      input.Visibility,
		UploaderID:      &uploaderID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if track.Visibility == "" {
		track.Visibility = models.TrackPublic
	}

	if err := uc.trackRepo.CreateTrack(ctx, track); err != nil {
		return nil, apperr.Internal("create track", err)
	}

	key := fmt.Sprintf("tracks/%s%s", track.ID, path.Ext(input.Filename))

	url, err := uc.storage.Put(ctx, key, input.ContentType, input.Audio)
	if err != nil {
		// No media means no track: roll the row back.
		if delErr := uc.trackRepo.DeleteTrack(ctx, track.ID); delErr != nil {
			slog.Error("rollback track after storage failure",
				slog.Any(constant.Error, delErr),
				slog.Any(constant.TrackID, track.ID),
			)
		}

		return nil, apperr.DependencyUnavailable("media storage is unavailable", err)
	}

	if err = uc.trackRepo.SetMediaURL(ctx, track.ID, url); err != nil {
		return nil, apperr.Internal("set track media url", err)
	}

	track.MediaURL = url

	return track, nil
}

// transcribe returns the lyrics or an empty string when transcription is
// unavailable; the upload continues either way.
func (uc *trackUsecase) transcribe(ctx context.Context, input UploadInput) string {
	lyrics, err := uc.intelligence.Transcribe(ctx, input.Filename, input.Audio)
	if err != nil {
		slog.Warn("transcription unavailable", slog.Any(constant.Error, err))
		return ""
	}

	return lyrics
}

func (uc *trackUsecase) GetTrack(ctx context.Context, userID, trackID uuid.UUID) (*models.Track, error) {
	track, err := uc.trackRepo.GetTrackByID(ctx, trackID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("track not found")
		}
		return nil, apperr.Internal("lookup track", err)
	}

	if track.Visibility == models.TrackPrivate && (track.UploaderID == nil || *track.UploaderID != userID) {
		return nil, apperr.NotFound("track not found")
	}

	return track, nil
}

func (uc *trackUsecase) ListTracks(ctx context.Context, userID uuid.UUID) ([]models.Track, error) {
	tracks, err := uc.trackRepo.ListVisibleTracks(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list tracks", err)
	}

	return tracks, nil
}

func (uc *trackUsecase) SearchTracks(ctx context.Context, userID uuid.UUID, term string) ([]models.Track, error) {
	if term == "" {
		return uc.ListTracks(ctx, userID)
	}

	tracks, err := uc.trackRepo.SearchTracks(ctx, userID, term)
	if err != nil {
		return nil, apperr.Internal("search tracks", err)
	}

	return tracks, nil
}

func (uc *trackUsecase) UpdateTrack(ctx context.Context, userID uuid.UUID, track *models.Track) error {
	existing, err := uc.requireUploaded(ctx, userID, track.ID)
	if err != nil {
		return err
	}

	existing.Title = track.Title
	existing.Artist = track.Artist
	existing.Genre = track.Genre
	existing.Description = track.Description
	existing.ArtworkURL = track.ArtworkURL
	existing.Visibility = track.Visibility

	if err = uc.trackRepo.UpdateTrack(ctx, existing); err != nil {
		return apperr.Internal("update track", err)
	}

	return nil
}

func (uc *trackUsecase) RemoveTrack(ctx context.Context, userID, trackID uuid.UUID) error {
	if _, err := uc.requireUploaded(ctx, userID, trackID); err != nil {
		return err
	}

	if err := uc.trackRepo.RemoveTrack(ctx, trackID); err != nil {
		return apperr.Internal("remove track", err)
	}

	return nil
}

func (uc *trackUsecase) requireUploaded(ctx context.Context, userID, trackID uuid.UUID) (*models.Track, error) {
	track, err := uc.GetTrack(ctx, userID, trackID)
	if err != nil {
		return nil, err
	}

	if track.UploaderID == nil || *track.UploaderID != userID {
		return nil, apperr.Forbidden("not the uploader of this track")
	}

	return track, nil
}
