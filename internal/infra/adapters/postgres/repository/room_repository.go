package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soundroomhq/soundroom/internal/domain/models"
)

type RoomRepository interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoomByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	// ListRoomsForUser returns rooms where the user holds a membership,
	// newest first.
	ListRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.Room, error)
	UpdateRoom(ctx context.Context, room *models.Room) error
	// UpdatePlayback overwrites the shared playback state. Last writer wins.
	UpdatePlayback(ctx context.Context, id uuid.UUID, state models.PlaybackState, positionSeconds, entryIndex int) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error
}

type roomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `INSERT INTO rooms (id, name, playlist_id, playback_state, position_seconds, current_entry_index, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		room.ID, room.Name, room.PlaylistID, room.PlaybackState,
		room.PositionSeconds, room.CurrentEntryIndex, room.CreatedAt, room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}

	return nil
}

func (r *roomRepo) GetRoomByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room

	query := `SELECT * FROM rooms WHERE id = $1`

	err := r.db.GetContext(ctx, &room, query, id)
	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *roomRepo) ListRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.Room, error) {
	var rooms []models.Room

	query := `SELECT r.* FROM rooms r
		JOIN memberships m ON m.room_id = r.id
		WHERE m.user_id = $1
		ORDER BY r.created_at DESC`

	err := r.db.SelectContext(ctx, &rooms, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list rooms for user: %w", err)
	}

	return rooms, nil
}

func (r *roomRepo) UpdateRoom(ctx context.Context, room *models.Room) error {
	query := `UPDATE rooms SET name = $2, updated_at = now() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, room.ID, room.Name)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}

	return nil
}

func (r *roomRepo) UpdatePlayback(ctx context.Context, id uuid.UUID, state models.PlaybackState, positionSeconds, entryIndex int) error {
	query := `UPDATE rooms SET playback_state = $2, position_seconds = $3, current_entry_index = $4, updated_at = now()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, state, positionSeconds, entryIndex)
	if err != nil {
		return fmt.Errorf("update playback: %w", err)
	}

	return nil
}

func (r *roomRepo) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM rooms WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	return nil
}
