package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is append-only within a room; there is no edit path.
type ChatMessage struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	RoomID       uuid.UUID  `json:"room_id" db:"room_id"`
	MembershipID *uuid.UUID `json:"membership_id" db:"membership_id"`
	Body         string     `json:"body" db:"body"`
	ReplyToID    *uuid.UUID `json:"reply_to_id" db:"reply_to_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

func NewChatMessage(roomID, membershipID uuid.UUID, body string, replyToID *uuid.UUID) *ChatMessage {
	return &ChatMessage{
		ID:           uuid.New(),
		RoomID:       roomID,
		MembershipID: &membershipID,
		Body:         body,
		ReplyToID:    replyToID,
		CreatedAt:    time.Now(),
	}
}
