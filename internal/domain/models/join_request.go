package models

import (
	"time"

	"github.com/google/uuid"
)

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestAccepted JoinRequestStatus = "accepted"
	JoinRequestRejected JoinRequestStatus = "rejected"
	// JoinRequestLeft records that the accepted member later left the room.
	JoinRequestLeft JoinRequestStatus = "left"
	// JoinRequestRemoved records that the accepted member was removed by a
	// privileged member.
	JoinRequestRemoved JoinRequestStatus = "removed"
)

// Finalized reports whether the request is past the pending stage; the
// pending-request listing is a view filter over this, not a deletion.
func (s JoinRequestStatus) Finalized() bool {
	return s != JoinRequestPending
}

type JoinRequest struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	RoomID    uuid.UUID         `json:"room_id" db:"room_id"`
	UserID    uuid.UUID         `json:"user_id" db:"user_id"`
	Status    JoinRequestStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

func NewJoinRequest(roomID, userID uuid.UUID) *JoinRequest {
	now := time.Now()

	return &JoinRequest{
		ID:        uuid.New(),
		RoomID:    roomID,
		UserID:    userID,
		Status:    JoinRequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
