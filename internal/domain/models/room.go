package models

import (
	"time"

	"github.com/google/uuid"
)

type PlaybackState string

const (
	PlaybackPlaying PlaybackState = "playing"
	PlaybackStopped PlaybackState = "stopped"
)

// Room is a shared listening session. The playback snapshot is advisory,
// last-writer-wins: it records what the latest playback action broadcast,
// not a ticking clock.
type Room struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	Name              string        `json:"name" db:"name"`
	PlaylistID        uuid.UUID     `json:"playlist_id" db:"playlist_id"`
	PlaybackState     PlaybackState `json:"playback_state" db:"playback_state"`
	PositionSeconds   int           `json:"position_seconds" db:"position_seconds"`
	CurrentEntryIndex int           `json:"current_entry_index" db:"current_entry_index"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

func NewRoom(name string, playlistID uuid.UUID) *Room {
	now := time.Now()

	return &Room{
		ID:            uuid.New(),
		Name:          name,
		PlaylistID:    playlistID,
		PlaybackState: PlaybackStopped,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
