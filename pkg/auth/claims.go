package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storeratings/storeratings-backend/pkg/enums"
)

// AccessTokenPayload is what a caller supplies when minting a token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.Role
	// JTI pins the session id; a fresh one is generated when empty.
	JTI string
}

// AccessTokenClaims is the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
