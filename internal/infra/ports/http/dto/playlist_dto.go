package dto

import (
	"github.com/google/uuid"

	"github.com/soundroomhq/soundroom/internal/domain/models"
)

type CreatePlaylistRequest struct {
	Name string              `json:"name"`
	Kind models.PlaylistKind `json:"kind"`
}

type UpdatePlaylistRequest struct {
	Name     string `json:"name"`
	CoverURL string `json:"cover_url"`
}

type AddPlaylistTrackRequest struct {
	TrackID uuid.UUID `json:"track_id"`
}

type MovePlaylistTrackRequest struct {
	TrackID      uuid.UUID `json:"track_id"`
	FromPosition int       `json:"from_position"`
	ToPosition   int       `json:"to_position"`
}

type PlaylistResponse struct {
	Playlist models.Playlist        `json:"playlist"`
	Tracks   []models.PlaylistTrack `json:"tracks"`
}
