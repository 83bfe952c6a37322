package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenType discriminates stored token records.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// AuthTokenStore defines persistence operations for issued token records.
type AuthTokenStore interface {
	Create(ctx context.Context, token AuthToken) error
	GetByHash(ctx context.Context, hash []byte) (AuthToken, error)
	GetByJTI(ctx context.Context, jti string) (AuthToken, error)
	// RevokeTree revokes the record with the given jti together with every
	// access record parented to it, in a single statement so all rows share
	// one revoked_at. Already-revoked rows are left untouched.
	RevokeTree(ctx context.Context, jti string) error
	RevokeAllByUser(ctx context.Context, userID uuid.UUID) error
	// DeleteOlderThan removes records whose expires_at or revoked_at is
	// before cutoff and returns the number deleted. Records that are neither
	// expired nor revoked are never deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Stats(ctx context.Context) (TokenStats, error)
	ActiveRefreshByUser(ctx context.Context, userID uuid.UUID) ([]AuthToken, error)
}

// AuthToken shadows a signed bearer token in durable storage. The raw token
// value never reaches the store; only its SHA-256 digest does.
type AuthToken struct {
	ID        uuid.UUID
	JTI       string
	UserID    uuid.UUID
	Type      TokenType
	TokenHash []byte
	// ParentJTI links an access record to the refresh record it was minted
	// under. Nil for refresh records.
	ParentJTI *string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
	Revoked   bool
}

// Expired reports whether the record is past its expiry at the given instant.
func (t AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// TokenStats summarizes the token table for the admin surface.
type TokenStats struct {
	Total   int64
	Active  int64
	Revoked int64
}
