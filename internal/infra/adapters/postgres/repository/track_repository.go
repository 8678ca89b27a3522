package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soundroomhq/soundroom/internal/domain/models"
)

type TrackRepository interface {
	CreateTrack(ctx context.Context, track *models.Track) error
	GetTrackByID(ctx context.Context, id uuid.UUID) (*models.Track, error)
	// ListVisibleTracks returns active tracks the user may see: every public
	// track plus the user's own private uploads.
	ListVisibleTracks(ctx context.Context, userID uuid.UUID) ([]models.Track, error)
	SearchTracks(ctx context.Context, userID uuid.UUID, term string) ([]models.Track, error)
	UpdateTrack(ctx context.Context, track *models.Track) error
	SetMediaURL(ctx context.Context, id uuid.UUID, url string) error
	RemoveTrack(ctx context.Context, id uuid.UUID) error
	DeleteTrack(ctx context.Context, id uuid.UUID) error
}

type trackRepo struct {
	db *sqlx.DB
}

func NewTrackRepo(db *sqlx.DB) TrackRepository {
	return &trackRepo{db: db}
}

func (r *trackRepo) CreateTrack(ctx context.Context, track *models.Track) error {
	query := `INSERT INTO tracks
		(id, title, artist, genre, description, artwork_url, lyrics, duration_seconds,
		 media_url, status, visibility, uploader_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		track.ID, track.Title, track.Artist, track.Genre, track.Description,
		track.ArtworkURL, track.Lyrics, track.DurationSeconds, track.MediaURL,
		track.Status, track.Visibility, track.UploaderID, track.CreatedAt, track.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create track: %w", err)
	}

	return nil
}

func (r *trackRepo) GetTrackByID(ctx context.Context, id uuid.UUID) (*models.Track, error) {
	var track models.Track

	query := `SELECT * FROM tracks WHERE id = $1`

	err := r.db.GetContext(ctx, &track, query, id)
	if err != nil {
		return nil, err
	}

	return &track, nil
}

func (r *trackRepo) ListVisibleTracks(ctx context.Context, userID uuid.UUID) ([]models.Track, error) {
	var tracks []models.Track

	query := `SELECT * FROM tracks
		WHERE status = 'active' AND (visibility = 'public' OR uploader_id = $1)
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &tracks, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}

	return tracks, nil
}

func (r *trackRepo) SearchTracks(ctx context.Context, userID uuid.UUID, term string) ([]models.Track, error) {
	var tracks []models.Track

	query := `SELECT * FROM tracks
		WHERE status = 'active' AND (visibility = 'public' OR uploader_id = $1)
		AND (title ILIKE '%' || $2 || '%' OR artist ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &tracks, query, userID, term)
	if err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}

	return tracks, nil
}

func (r *trackRepo) UpdateTrack(ctx context.Context, track *models.Track) error {
	query := `UPDATE tracks SET title = $2, artist = $3, genre = $4, description = $5,
		artwork_url = $6, lyrics = $7, visibility = $8, updated_at = now()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		track.ID, track.Title, track.Artist, track.Genre, track.Description,
		track.ArtworkURL, track.Lyrics, track.Visibility,
	)
	if err != nil {
		return fmt.Errorf("update track: %w", err)
	}

	return nil
}

func (r *trackRepo) SetMediaURL(ctx context.Context, id uuid.UUID, url string) error {
	query := `UPDATE tracks SET media_url = $2, updated_at = now() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("set track media url: %w", err)
	}

	return nil
}

func (r *trackRepo) RemoveTrack(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tracks SET status = 'removed', updated_at = now() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove track: %w", err)
	}

	return nil
}

// DeleteTrack erases the row. Used to roll back an upload whose media
// never reached storage.
func (r *trackRepo) DeleteTrack(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tracks WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete track: %w", err)
	}

	return nil
}
