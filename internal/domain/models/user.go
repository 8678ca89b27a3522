package models

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserDisabled UserStatus = "disabled"
)

type UserRole string

const (
	UserRoleRegular UserRole = "regular"
	UserRoleAdmin   UserRole = "admin"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	AvatarURL    string     `json:"avatar_url" db:"avatar_url"`
	Role         UserRole   `json:"role" db:"role"`
	Status       UserStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func NewUser(displayName, email, passwordHash, avatarURL string) *User {
	now := time.Now()

	return &User{
		ID:           uuid.New(),
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: passwordHash,
		AvatarURL:    avatarURL,
		Role:         UserRoleRegular,
		Status:       UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
