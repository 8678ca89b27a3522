package models

import (
	"time"

	"github.com/google/uuid"
)

type PlaylistKind string

const (
	PlaylistFavorites PlaylistKind = "favorites"
	PlaylistAlbum     PlaylistKind = "album"
	// PlaylistRoom marks a playlist exclusively owned by a single room.
	PlaylistRoom PlaylistKind = "room"
)

type Playlist struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Kind      PlaylistKind `json:"kind" db:"kind"`
	CoverURL  string       `json:"cover_url" db:"cover_url"`
	OwnerID   *uuid.UUID   `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

func NewPlaylist(name string, kind PlaylistKind, ownerID *uuid.UUID) *Playlist {
	now := time.Now()

	return &Playlist{
		ID:        uuid.New(),
		Name:      name,
		Kind:      kind,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PlaylistEntry places a track at a 1-based position within a playlist.
// At rest, the positions of a playlist with N entries are exactly {1..N}.
type PlaylistEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PlaylistID uuid.UUID `json:"playlist_id" db:"playlist_id"`
	TrackID    uuid.UUID `json:"track_id" db:"track_id"`
	Position   int       `json:"position" db:"position"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func NewPlaylistEntry(playlistID, trackID uuid.UUID, position int) *PlaylistEntry {
	return &PlaylistEntry{
		ID:         uuid.New(),
		PlaylistID: playlistID,
		TrackID:    trackID,
		Position:   position,
		CreatedAt:  time.Now(),
	}
}

// PlaylistTrack is an entry joined with its track, ordered by position.
type PlaylistTrack struct {
	Track
	Position int `json:"position" db:"position"`
}
