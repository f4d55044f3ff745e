package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hbarretto/franchisepos-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT. LocationID
// is nil for superadmins, who are not pinned to a store.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	LocationID *uuid.UUID
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	UserID     uuid.UUID      `json:"user_id"`
	Role       enums.UserRole `json:"role"`
	LocationID *uuid.UUID     `json:"location_id,omitempty"`
	jwt.RegisteredClaims
}
