package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soundroomhq/soundroom/internal/domain/models"
)

type MembershipRepository interface {
	CreateMembership(ctx context.Context, membership *models.Membership) error
	GetMembershipByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	GetMembershipByRoomAndUser(ctx context.Context, roomID, userID uuid.UUID) (*models.Membership, error)
	// ListMembershipsByRoom returns the room's members ordered by join time,
	// the order used when ownership has to pass to another member.
	ListMembershipsByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Membership, error)
	Roster(ctx context.Context, roomID uuid.UUID) ([]models.RosterEntry, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.MemberRole) error
	UpdatePresence(ctx context.Context, id uuid.UUID, presence models.Presence) error
	DeleteMembership(ctx context.Context, id uuid.UUID) error
}

type membershipRepo struct {
	db *sqlx.DB
}

func NewMembershipRepo(db *sqlx.DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) CreateMembership(ctx context.Context, membership *models.Membership) error {
	query := `INSERT INTO memberships (id, room_id, user_id, role, presence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		membership.ID, membership.RoomID, membership.UserID,
		membership.Role, membership.Presence, membership.CreatedAt, membership.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create membership: %w", err)
	}

	return nil
}

func (r *membershipRepo) GetMembershipByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	var membership models.Membership

	query := `SELECT * FROM memberships WHERE id = $1`

	err := r.db.GetContext(ctx, &membership, query, id)
	if err != nil {
		return nil, err
	}

	return &membership, nil
}

func (r *membershipRepo) GetMembershipByRoomAndUser(ctx context.Context, roomID, userID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership

	query := `SELECT * FROM memberships WHERE room_id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, &membership, query, roomID, userID)
	if err != nil {
		return nil, err
	}

	return &membership, nil
}

func (r *membershipRepo) ListMembershipsByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Membership, error) {
	var memberships []models.Membership

	query := `SELECT * FROM memberships WHERE room_id = $1 ORDER BY created_at, id`

	err := r.db.SelectContext(ctx, &memberships, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	return memberships, nil
}

func (r *membershipRepo) Roster(ctx context.Context, roomID uuid.UUID) ([]models.RosterEntry, error) {
	var roster []models.RosterEntry

	query := `SELECT m.id AS membership_id, u.id AS user_id, u.display_name, u.avatar_url, m.role, m.presence
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY m.created_at, m.id`

	err := r.db.SelectContext(ctx, &roster, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("room roster: %w", err)
	}

	return roster, nil
}

func (r *membershipRepo) UpdateRole(ctx context.Context, id uuid.UUID, role models.MemberRole) error {
	query := `UPDATE memberships SET role = $2, updated_at = now() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, role)
	if err != nil {
		return fmt.Errorf("update membership role: %w", err)
	}

	return nil
}

func (r *membershipRepo) UpdatePresence(ctx context.Context, id uuid.UUID, presence models.Presence) error {
	query := `UPDATE memberships SET presence = $2, updated_at = now() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, presence)
	if err != nil {
		return fmt.Errorf("update membership presence: %w", err)
	}

	return nil
}

func (r *membershipRepo) DeleteMembership(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM memberships WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}

	return nil
}
