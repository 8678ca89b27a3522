package dto

import "github.com/soundroomhq/soundroom/internal/domain/models"

type UpdateTrackRequest struct {
	Title       string                 `json:"title"`
	Artist      string                 `json:"artist"`
	Genre       string                 `json:"genre"`
	Description string                 `json:"description"`
	ArtworkURL  string                 `json:"artwork_url"`
	Visibility  models.TrackVisibility `json:"visibility"`
}
