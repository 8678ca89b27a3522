package models

import (
	"time"

	"github.com/google/uuid"
)

type TrackStatus string

const (
	TrackActive  TrackStatus = "active"
	TrackRemoved TrackStatus = "removed"
)

type TrackVisibility string

const (
	TrackPublic  TrackVisibility = "public"
	TrackPrivate TrackVisibility = "private"
)

type Track struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	Artist          string          `json:"artist" db:"artist"`
	Genre           string          `json:"genre" db:"genre"`
	Description     string          `json:"description" db:"description"`
	ArtworkURL      string          `json:"artwork_url" db:"artwork_url"`
	Lyrics          string          `json:"lyrics" db:"lyrics"`
	DurationSeconds int             `json:"duration_seconds" db:"duration_seconds"`
	MediaURL        string          `json:"media_url" db:"media_url"`
	Status          TrackStatus     `json:"status" db:"status"`
	Visibility      TrackVisibility `json:"visibility" db:"visibility"`
	UploaderID      *uuid.UUID      `json:"uploader_id" db:"uploader_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
