package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole is ordered by privilege: owner > manager > member.
type MemberRole string

const (
	RoleOwner   MemberRole = "owner"
	RoleManager MemberRole = "manager"
	RoleMember  MemberRole = "member"
)

var rolePrivilege = map[MemberRole]int{
	RoleMember:  1,
	RoleManager: 2,
	RoleOwner:   3,
}

// Valid reports whether r is a known role.
func (r MemberRole) Valid() bool {
	_, ok := rolePrivilege[r]
	return ok
}

// AtLeast reports whether r holds at least the privilege of other.
func (r MemberRole) AtLeast(other MemberRole) bool {
	return rolePrivilege[r] >= rolePrivilege[other]
}

type Presence string

const (
	// PresenceActive means an accepted member who is not in the live session.
	PresenceActive Presence = "active"
	// PresenceConnected means the member currently holds a live session connection.
	PresenceConnected Presence = "connected"
	PresenceLeft      Presence = "left"
)

type Membership struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	RoomID    uuid.UUID  `json:"room_id" db:"room_id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Role      MemberRole `json:"role" db:"role"`
	Presence  Presence   `json:"presence" db:"presence"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

func NewMembership(roomID, userID uuid.UUID, role MemberRole) *Membership {
	now := time.Now()

	return &Membership{
		ID:        uuid.New(),
		RoomID:    roomID,
		UserID:    userID,
		Role:      role,
		Presence:  PresenceActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RosterEntry is a membership joined with its user's public profile,
// the shape broadcast to room sessions.
type RosterEntry struct {
	MembershipID uuid.UUID  `json:"membership_id" db:"membership_id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	AvatarURL    string     `json:"avatar_url" db:"avatar_url"`
	Role         MemberRole `json:"role" db:"role"`
	Presence     Presence   `json:"presence" db:"presence"`
}
