package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soundroomhq/soundroom/internal/domain/models"
)

type JoinRequestRepository interface {
	CreateJoinRequest(ctx context.Context, request *models.JoinRequest) error
	GetJoinRequestByID(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error)
	// GetOpenJoinRequest returns the user's pending or accepted request for
	// the room, if any. At most one such request exists at a time.
	GetOpenJoinRequest(ctx context.Context, roomID, userID uuid.UUID) (*models.JoinRequest, error)
	ListPendingByRoom(ctx context.Context, roomID uuid.UUID) ([]models.JoinRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.JoinRequestStatus) error
	// MarkRemoved finalizes the user's accepted request after an eviction so
	// the ledger records why the membership ended.
	MarkRemoved(ctx context.Context, roomID, userID uuid.UUID) error
}

type joinRequestRepo struct {
	db *sqlx.DB
}

func NewJoinRequestRepo(db *sqlx.DB) JoinRequestRepository {
	return &joinRequestRepo{db: db}
}

func (r *joinRequestRepo) CreateJoinRequest(ctx context.Context, request *models.JoinRequest) error {
	query := `INSERT INTO join_requests (id, room_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		request.ID, request.RoomID, request.UserID,
		request.Status, request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create join request: %w", err)
	}

	return nil
}

func (r *joinRequestRepo) GetJoinRequestByID(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error) {
	var request models.JoinRequest

	query := `SELECT * FROM join_requests WHERE id = $1`

	err := r.db.GetContext(ctx, &request, query, id)
	if err != nil {
		return nil, err
	}

	return &request, nil
}

func (r *joinRequestRepo) GetOpenJoinRequest(ctx context.Context, roomID, userID uuid.UUID) (*models.JoinRequest, error) {
	var request models.JoinRequest

	query := `SELECT * FROM join_requests
		WHERE room_id = $1 AND user_id = $2 AND status IN ('pending', 'accepted')
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &request, query, roomID, userID)
	if err != nil {
		return nil, err
	}

	return &request, nil
}

func (r *joinRequestRepo) ListPendingByRoom(ctx context.Context, roomID uuid.UUID) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest

	query := `SELECT * FROM join_requests WHERE room_id = $1 AND status = 'pending' ORDER BY created_at`

	err := r.db.SelectContext(ctx, &requests, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("list pending join requests: %w", err)
	}

	return requests, nil
}

func (r *joinRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.JoinRequestStatus) error {
	query := `UPDATE join_requests SET status = $2, updated_at = now() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update join request status: %w", err)
	}

	return nil
}

func (r *joinRequestRepo) MarkRemoved(ctx context.Context, roomID, userID uuid.UUID) error {
	query := `UPDATE join_requests SET status = 'removed', updated_at = now()
		WHERE room_id = $1 AND user_id = $2 AND status = 'accepted'`

	_, err := r.db.ExecContext(ctx, query, roomID, userID)
	if err != nil {
		return fmt.Errorf("mark join request removed: %w", err)
	}

	return nil
}
