package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soundroomhq/soundroom/internal/domain/models"
)

type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylistByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	ListPlaylistsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Playlist, error)
	SearchPlaylists(ctx context.Context, ownerID uuid.UUID, term string) ([]models.Playlist, error)
	UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error
	DeletePlaylist(ctx context.Context, id uuid.UUID) error

	ListEntries(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistEntry, error)
	ListPlaylistTracks(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistTrack, error)
	CountEntries(ctx context.Context, playlistID uuid.UUID) (int, error)
	// AppendEntry inserts the track at position N+1.
	AppendEntry(ctx context.Context, playlistID, trackID uuid.UUID) (*models.PlaylistEntry, error)
	// RemoveEntry deletes the track's entry and closes the gap it leaves.
	RemoveEntry(ctx context.Context, playlistID, trackID uuid.UUID) error
	// RemoveEntryAt is RemoveEntry keyed by position.
	RemoveEntryAt(ctx context.Context, playlistID uuid.UUID, position int) error
	// MoveEntry relocates the entry at from to to, shifting the entries
	// between them by one. Positions are 1-based and must be pre-validated.
	MoveEntry(ctx context.Context, playlistID, trackID uuid.UUID, from, to int) error
	// CopyEntries duplicates every entry of src into dst, keeping positions.
	CopyEntries(ctx context.Context, srcID, dstID uuid.UUID) error
}

type playlistRepo struct {
	db *sqlx.DB
}

func NewPlaylistRepo(db *sqlx.DB) PlaylistRepository {
	return &playlistRepo{db: db}
}

func (r *playlistRepo) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	query := `INSERT INTO playlists (id, name, kind, cover_url, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		playlist.ID, playlist.Name, playlist.Kind, playlist.CoverURL,
		playlist.OwnerID, playlist.CreatedAt, playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create playlist: %w", err)
	}

	return nil
}

func (r *playlistRepo) GetPlaylistByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	var playlist models.Playlist

	query := `SELECT * FROM playlists WHERE id = $1`

	err := r.db.GetContext(ctx, &playlist, query, id)
	if err != nil {
		return nil, err
	}

	return &playlist, nil
}

func (r *playlistRepo) ListPlaylistsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Playlist, error) {
	var playlists []models.Playlist

	query := `SELECT * FROM playlists WHERE owner_id = $1 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &playlists, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	return playlists, nil
}

func (r *playlistRepo) SearchPlaylists(ctx context.Context, ownerID uuid.UUID, term string) ([]models.Playlist, error) {
	var playlists []models.Playlist

	query := `SELECT * FROM playlists WHERE owner_id = $1 AND name ILIKE $2 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &playlists, query, ownerID, "%"+term+"%")
	if err != nil {
		return nil, fmt.Errorf("search playlists: %w", err)
	}

	return playlists, nil
}

func (r *playlistRepo) UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	query := `UPDATE playlists SET name = $2, cover_url = $3, updated_at = now() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, playlist.ID, playlist.Name, playlist.CoverURL)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}

	return nil
}

func (r *playlistRepo) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM playlists WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}

	return nil
}

func (r *playlistRepo) ListEntries(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistEntry, error) {
	var entries []models.PlaylistEntry

	query := `SELECT * FROM playlist_entries WHERE playlist_id = $1 ORDER BY position`

	err := r.db.SelectContext(ctx, &entries, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist entries: %w", err)
	}

	return entries, nil
}

func (r *playlistRepo) ListPlaylistTracks(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistTrack, error) {
	var tracks []models.PlaylistTrack

	query := `SELECT t.*, pe.position FROM playlist_entries pe
		JOIN tracks t ON t.id = pe.track_id
		WHERE pe.playlist_id = $1
		ORDER BY pe.position`

	err := r.db.SelectContext(ctx, &tracks, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist tracks: %w", err)
	}

	return tracks, nil
}

func (r *playlistRepo) CountEntries(ctx context.Context, playlistID uuid.UUID) (int, error) {
	var count int

	query := `SELECT count(*) FROM playlist_entries WHERE playlist_id = $1`

	err := r.db.GetContext(ctx, &count, query, playlistID)
	if err != nil {
		return 0, fmt.Errorf("count playlist entries: %w", err)
	}

	return count, nil
}

// lockPlaylist serializes every structural mutation of a playlist on its row.
func lockPlaylist(ctx context.Context, tx *sqlx.Tx, playlistID uuid.UUID) error {
	var id uuid.UUID

	err := tx.GetContext(ctx, &id, `SELECT id FROM playlists WHERE id = $1 FOR UPDATE`, playlistID)
	if err != nil {
		return err
	}

	return nil
}

func (r *playlistRepo) AppendEntry(ctx context.Context, playlistID, trackID uuid.UUID) (*models.PlaylistEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("append entry begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err = lockPlaylist(ctx, tx, playlistID); err != nil {
		return nil, err
	}

	var next int
	err = tx.GetContext(ctx, &next,
		`SELECT coalesce(max(position), 0) + 1 FROM playlist_entries WHERE playlist_id = $1`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("append entry next position: %w", err)
	}

	entry := models.NewPlaylistEntry(playlistID, trackID, next)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO playlist_entries (id, playlist_id, track_id, position, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.PlaylistID, entry.TrackID, entry.Position, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append entry insert: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("append entry commit: %w", err)
	}

	return entry, nil
}

func (r *playlistRepo) RemoveEntry(ctx context.Context, playlistID, trackID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remove entry begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err = lockPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}

	var position int
	err = tx.GetContext(ctx, &position,
		`SELECT position FROM playlist_entries WHERE playlist_id = $1 AND track_id = $2`,
		playlistID, trackID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM playlist_entries WHERE playlist_id = $1 AND track_id = $2`,
		playlistID, trackID)
	if err != nil {
		return fmt.Errorf("remove entry delete: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE playlist_entries SET position = position - 1 WHERE playlist_id = $1 AND position > $2`,
		playlistID, position)
	if err != nil {
		return fmt.Errorf("remove entry shift: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("remove entry commit: %w", err)
	}

	return nil
}

func (r *playlistRepo) RemoveEntryAt(ctx context.Context, playlistID uuid.UUID, position int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remove entry at begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err = lockPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM playlist_entries WHERE playlist_id = $1 AND position = $2`,
		playlistID, position)
	if err != nil {
		return fmt.Errorf("remove entry at delete: %w", err)
	}

	if aff, err := res.RowsAffected(); aff == 0 || err != nil {
		return sql.ErrNoRows
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE playlist_entries SET position = position - 1 WHERE playlist_id = $1 AND position > $2`,
		playlistID, position)
	if err != nil {
		return fmt.Errorf("remove entry at shift: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("remove entry at commit: %w", err)
	}

	return nil
}

func (r *playlistRepo) MoveEntry(ctx context.Context, playlistID, trackID uuid.UUID, from, to int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("move entry begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err = lockPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}

	var entryID uuid.UUID
	err = tx.GetContext(ctx, &entryID,
		`SELECT id FROM playlist_entries WHERE playlist_id = $1 AND track_id = $2 AND position = $3`,
		playlistID, trackID, from)
	if err != nil {
		return err
	}

	switch {
	case to < from:
		_, err = tx.ExecContext(ctx,
			`UPDATE playlist_entries SET position = position + 1
			WHERE playlist_id = $1 AND position >= $2 AND position < $3`,
			playlistID, to, from)
	case to > from:
		_, err = tx.ExecContext(ctx,
			`UPDATE playlist_entries SET position = position - 1
			WHERE playlist_id = $1 AND position > $2 AND position <= $3`,
			playlistID, from, to)
	}
	if err != nil {
		return fmt.Errorf("move entry shift: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE playlist_entries SET position = $2 WHERE id = $1`, entryID, to)
	if err != nil {
		return fmt.Errorf("move entry place: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("move entry commit: %w", err)
	}

	return nil
}

func (r *playlistRepo) CopyEntries(ctx context.Context, srcID, dstID uuid.UUID) error {
	query := `INSERT INTO playlist_entries (id, playlist_id, track_id, position, created_at)
		SELECT gen_random_uuid(), $2, track_id, position, now()
		FROM playlist_entries WHERE playlist_id = $1`

	_, err := r.db.ExecContext(ctx, query, srcID, dstID)
	if err != nil {
		return fmt.Errorf("copy playlist entries: %w", err)
	}

	return nil
}
