package usecase

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres/repository"
)

type PlaylistUsecase interface {
	CreatePlaylist(ctx context.Context, ownerID uuid.UUID, name string, kind models.PlaylistKind) (*models.Playlist, error)
	GetPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	ListMyPlaylists(ctx context.Context, ownerID uuid.UUID) ([]models.Playlist, error)
	// SearchPlaylists filters the caller's playlists by name. An empty term
	// lists everything.
	SearchPlaylists(ctx context.Context, ownerID uuid.UUID, term string) ([]models.Playlist, error)
	UpdatePlaylist(ctx context.Context, ownerID, id uuid.UUID, name, coverURL string) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, ownerID, id uuid.UUID) error

	// Tracks returns the playlist's tracks ordered by position.
	Tracks(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistTrack, error)

	// AppendTrack places the track at the tail. Adding a track twice is a
	// conflict.
	AppendTrack(ctx context.Context, playlistID, trackID uuid.UUID) error
	RemoveTrackAt(ctx context.Context, playlistID uuid.UUID, position int) error
	// MoveTrack relocates the track from one 1-based position to another;
	// everything in between shifts by one. Both positions must be within
	// 1..N and the track must actually sit at from.
	MoveTrack(ctx context.Context, playlistID, trackID uuid.UUID, from, to int) error
}

type playlistUsecase struct {
	playlistRepo repository.PlaylistRepository
	trackRepo    repository.TrackRepository
}

func NewPlaylistUsecase(
	playlistRepo repository.PlaylistRepository,
	trackRepo repository.TrackRepository,
) PlaylistUsecase {
	return &playlistUsecase{
		playlistRepo: playlistRepo,
		trackRepo:    trackRepo,
	}
}

func (uc *playlistUsecase) CreatePlaylist(ctx context.Context, ownerID uuid.UUID, name string, kind models.PlaylistKind) (*models.Playlist, error) {
	if name == "" {
		return nil, apperr.Validation("playlist name is required")
	}

	if kind != models.PlaylistFavorites && kind != models.PlaylistAlbum {
		return nil, apperr.Validation("playlist kind must be favorites or album")
	}

	playlist := models.NewPlaylist(name, kind, &ownerID)

	if err := uc.playlistRepo.CreatePlaylist(ctx, playlist); err != nil {
		return nil, apperr.Internal("create playlist", err)
	}

	return playlist, nil
}

func (uc *playlistUsecase) GetPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	playlist, err := uc.playlistRepo.GetPlaylistByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("playlist not found")
		}
		return nil, apperr.Internal("lookup playlist", err)
	}

	return playlist, nil
}

func (uc *playlistUsecase) ListMyPlaylists(ctx context.Context, ownerID uuid.UUID) ([]models.Playlist, error) {
	playlists, err := uc.playlistRepo.ListPlaylistsByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("list playlists", err)
	}

	return playlists, nil
}

func (uc *playlistUsecase) SearchPlaylists(ctx context.Context, ownerID uuid.UUID, term string) ([]models.Playlist, error) {
	if term == "" {
		return uc.ListMyPlaylists(ctx, ownerID)
	}

	playlists, err := uc.playlistRepo.SearchPlaylists(ctx, ownerID, term)
	if err != nil {
		return nil, apperr.Internal("search playlists", err)
	}

	return playlists, nil
}

func (uc *playlistUsecase) UpdatePlaylist(ctx context.Context, ownerID, id uuid.UUID, name, coverURL string) (*models.Playlist, error) {
	playlist, err := uc.requireOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		playlist.Name = name
	}
	if coverURL != "" {
		playlist.CoverURL = coverURL
	}

	if err = uc.playlistRepo.UpdatePlaylist(ctx, playlist); err != nil {
		return nil, apperr.Internal("update playlist", err)
	}

	return playlist, nil
}

func (uc *playlistUsecase) DeletePlaylist(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := uc.requireOwned(ctx, ownerID, id); err != nil {
		return err
	}

	if err := uc.playlistRepo.DeletePlaylist(ctx, id); err != nil {
		return apperr.Internal("delete playlist", err)
	}

	return nil
}

func (uc *playlistUsecase) Tracks(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistTrack, error) {
	tracks, err := uc.playlistRepo.ListPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, apperr.Internal("list playlist tracks", err)
	}

	return tracks, nil
}

func (uc *playlistUsecase) AppendTrack(ctx context.Context, playlistID, trackID uuid.UUID) error {
	track, err := uc.trackRepo.GetTrackByID(ctx, trackID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("track not found")
		}
		return apperr.Internal("lookup track", err)
	}

	if track.Status != models.TrackActive {
		return apperr.Validation("track is not available")
	}

	entries, err := uc.playlistRepo.ListEntries(ctx, playlistID)
	if err != nil {
		return apperr.Internal("list playlist entries", err)
	}

	for _, entry := range entries {
		if entry.TrackID == trackID {
			return apperr.Conflict("track is already in the playlist")
		}
	}

	if _, err = uc.playlistRepo.AppendEntry(ctx, playlistID, trackID); err != nil {
		return apperr.Internal("append playlist entry", err)
	}

	return nil
}

func (uc *playlistUsecase) RemoveTrackAt(ctx context.Context, playlistID uuid.UUID, position int) error {
	if position < 1 {
		return apperr.Validation("position must be at least 1")
	}

	err := uc.playlistRepo.RemoveEntryAt(ctx, playlistID, position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("no entry at that position")
		}
		return apperr.Internal("remove playlist entry", err)
	}

	return nil
}

func (uc *playlistUsecase) MoveTrack(ctx context.Context, playlistID, trackID uuid.UUID, from, to int) error {
	count, err := uc.playlistRepo.CountEntries(ctx, playlistID)
	if err != nil {
		return apperr.Internal("count playlist entries", err)
	}

	if err = validateMove(count, from, to); err != nil {
		return err
	}

	if from == to {
		return nil
	}

	err = uc.playlistRepo.MoveEntry(ctx, playlistID, trackID, from, to)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Conflict("track is not at the given position")
		}
		return apperr.Internal("move playlist entry", err)
	}

	return nil
}

// validateMove bounds-checks a reorder against a playlist of n entries.
func validateMove(n, from, to int) error {
	if from < 1 || from > n {
		return apperr.Validation("from position is out of range")
	}
	if to < 1 || to > n {
		return apperr.Validation("to position is out of range")
	}

	return nil
}

func (uc *playlistUsecase) requireOwned(ctx context.Context, ownerID, id uuid.UUID) (*models.Playlist, error) {
	playlist, err := uc.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}

	if playlist.OwnerID == nil || *playlist.OwnerID != ownerID {
		return nil, apperr.Forbidden("not the playlist owner")
	}

	return playlist, nil
}
