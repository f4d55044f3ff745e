package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
)

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest bootstraps the first superadmin account. Once any account
// exists, staff are created through the users endpoint instead.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=1,max=150"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// RefreshRequest exchanges an expired access token plus refresh token for a
// fresh pair.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ResetPasswordRequest triggers an out-of-band credential reset.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserProfile is the sanitized account shape returned to clients.
type UserProfile struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// LoginResponse returns the token pair and the authenticated profile.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserProfile `json:"user"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProfileFromModel converts a user row into its client-facing shape.
func ProfileFromModel(user *models.User) UserProfile {
	return UserProfile{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role.String(),
		LocationID:  user.LocationID,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
	}
}
