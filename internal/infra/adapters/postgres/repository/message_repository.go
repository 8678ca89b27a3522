package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soundroomhq/soundroom/internal/domain/models"
)

type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	// ListMessages pages backwards through a room's history. A zero before
	// means "from the latest".
	ListMessages(ctx context.Context, roomID uuid.UUID, before time.Time, limit int) ([]models.ChatMessage, error)
	SearchMessages(ctx context.Context, roomID uuid.UUID, term string, limit int) ([]models.ChatMessage, error)
}

type messageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	query := `INSERT INTO chat_messages (id, room_id, membership_id, body, reply_to_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.RoomID, message.MembershipID,
		message.Body, message.ReplyToID, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

func (r *messageRepo) ListMessages(ctx context.Context, roomID uuid.UUID, before time.Time, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage

	if before.IsZero() {
		before = time.Now()
	}

	query := `SELECT * FROM chat_messages
		WHERE room_id = $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3`

	err := r.db.SelectContext(ctx, &messages, query, roomID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}

func (r *messageRepo) SearchMessages(ctx context.Context, roomID uuid.UUID, term string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage

	query := `SELECT * FROM chat_messages
		WHERE room_id = $1 AND body ILIKE '%' || $2 || '%'
		ORDER BY created_at DESC
		LIMIT $3`

	err := r.db.SelectContext(ctx, &messages, query, roomID, term, limit)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}

	return messages, nil
}
