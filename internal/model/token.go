package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager mints and structurally validates signed access/refresh tokens.
// Durable state (revocation, store-side expiry) lives in AuthTokenStore; the
// manager only guarantees signature and claim integrity.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (token string, jti string, err error)
	GenerateRefreshToken(userID uuid.UUID) (token string, jti string, err error)
	ParseAccessToken(token string) (userID uuid.UUID, jti string, err error)
	ParseRefreshToken(token string) (userID uuid.UUID, jti string, err error)
	// ExtractRefreshJTI recovers the identity claims of a refresh token whose
	// signature verifies, ignoring expiry. Logout uses it so an expired
	// session can still release its assignment and revoke its records.
	ExtractRefreshJTI(token string) (userID uuid.UUID, jti string, err error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}
