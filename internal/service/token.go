package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

// Token provides issuance, validation, revocation and retention operations
// over the durable token store. It composes the TokenManager (structural
// checks) and AuthTokenStore (revocation and store-side expiry): a presented
// token must pass both, so a forged or stale token that slips past one check
// still fails the other.
type Token struct {
	manager model.TokenManager
	store   model.AuthTokenStore
	logger  *logger.Logger
}

func NewToken(manager model.TokenManager, store model.AuthTokenStore, logger *logger.Logger) *Token {
	return &Token{manager: manager, store: store, logger: logger}
}

// IssueParams describes a token record to persist. Raw is the signed token
// produced by the manager; only its hash is stored.
type IssueParams struct {
	UserID    uuid.UUID
	Type      model.TokenType
	Raw       string
	JTI       string
	TTL       time.Duration
	ParentJTI *string
	IPAddress string
	UserAgent string
}

// Issue persists a record shadowing a freshly minted token. Returns
// model.ErrDuplicateToken on a hash or jti collision; the caller re-mints
// rather than overwriting.
func (s *Token) Issue(ctx context.Context, p IssueParams) (model.AuthToken, error) {
	now := time.Now()
	record := model.AuthToken{
		ID:        uuid.New(),
		JTI:       p.JTI,
		UserID:    p.UserID,
		Type:      p.Type,
		TokenHash: HashToken(p.Raw),
		ParentJTI: p.ParentJTI,
		IPAddress: p.IPAddress,
		UserAgent: p.UserAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(p.TTL),
	}

	if err := s.store.Create(ctx, record); err != nil {
		if errors.Is(err, model.ErrDuplicateToken) {
			s.logger.Error("Token service: hash collision on issuance",
				"jti", p.JTI,
				"type", p.Type)
			return model.AuthToken{}, err
		}
		return model.AuthToken{}, fmt.Errorf("persist token record: %w", err)
	}

	return record, nil
}

// Validate checks a presented raw token of the given type: structural
// validation by the manager, then a store lookup by hash with revocation and
// store-side expiry checks. Read-only.
func (s *Token) Validate(ctx context.Context, raw string, tokenType model.TokenType) (model.AuthToken, error) {
	var err error
	switch tokenType {
	case model.TokenTypeAccess:
		_, _, err = s.manager.ParseAccessToken(raw)
	case model.TokenTypeRefresh:
		_, _, err = s.manager.ParseRefreshToken(raw)
	default:
		return model.AuthToken{}, fmt.Errorf("unknown token type: %s", tokenType)
	}
	if err != nil {
		return model.AuthToken{}, model.ErrTokenInvalid
	}

	record, err := s.store.GetByHash(ctx, HashToken(raw))
	if errors.Is(err, model.ErrNotFound) {
		return model.AuthToken{}, model.ErrTokenInvalid
	}
	if err != nil {
		return model.AuthToken{}, fmt.Errorf("get token by hash: %w", err)
	}

	if record.Type != tokenType {
		return model.AuthToken{}, model.ErrTokenInvalid
	}
	if record.Revoked {
		return model.AuthToken{}, model.ErrTokenRevoked
	}
	if record.Expired(time.Now()) {
		return model.AuthToken{}, model.ErrTokenExpired
	}

	return record, nil
}

// Revoke marks the record with the given jti revoked, cascading to all
// access records parented to it. Idempotent: revoking an already-revoked
// tree is a no-op.
func (s *Token) Revoke(ctx context.Context, jti string) error {
	if err := s.store.RevokeTree(ctx, jti); err != nil {
		return fmt.Errorf("revoke token tree: %w", err)
	}
	return nil
}

// RevokeAllForUser bulk-revokes every live record for a user ("log out
// everywhere").
func (s *Token) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke tokens for user: %w", err)
	}
	return nil
}

// Purge deletes records expired or revoked longer ago than the retention
// window and returns the number deleted.
func (s *Token) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge token records: %w", err)
	}
	return deleted, nil
}

// Stats returns totals for the admin surface.
func (s *Token) Stats(ctx context.Context) (model.TokenStats, error) {
	return s.store.Stats(ctx)
}

// ActiveSessions lists a user's live refresh records.
func (s *Token) ActiveSessions(ctx context.Context, userID uuid.UUID) ([]model.AuthToken, error) {
	return s.store.ActiveRefreshByUser(ctx, userID)
}

// HashToken returns the SHA-256 digest under which a raw token is stored.
// One-way and deterministic; the raw value never reaches the database.
func HashToken(raw string) []byte {
	h := sha256.Sum256([]byte(raw))
	return h[:]
}
