package dto

import (
	"github.com/google/uuid"

	"github.com/soundroomhq/soundroom/internal/domain/models"
)

type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GetMeResponse struct {
	ID          uuid.UUID         `json:"id"`
	DisplayName string            `json:"display_name"`
	Email       string            `json:"email"`
	AvatarURL   string            `json:"avatar_url"`
	Role        models.UserRole   `json:"role"`
	Status      models.UserStatus `json:"status"`
}
