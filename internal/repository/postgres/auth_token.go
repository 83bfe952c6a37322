package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/humanoid-ai/humanoid-server/internal/model"
)

var _ model.AuthTokenStore = (*AuthTokenRepository)(nil)

const uniqueViolation = "23505"

type AuthTokenRepository struct {
	db *Connection
}

func NewAuthTokenRepository(db *Connection) *AuthTokenRepository {
	return &AuthTokenRepository{db: db}
}

const authTokenColumns = `id, jti, user_id, token_type, token_hash, parent_jti, ip_address, user_agent, created_at, expires_at, revoked_at, is_revoked`

func (r *AuthTokenRepository) Create(ctx context.Context, token model.AuthToken) error {
	const query = `
        INSERT INTO auth_tokens (
            id, jti, user_id, token_type, token_hash, parent_jti, ip_address, user_agent, created_at, expires_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),$9)
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		token.ID, token.JTI, token.UserID, token.Type, token.TokenHash,
		token.ParentJTI, token.IPAddress, token.UserAgent, token.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrDuplicateToken
		}
		return fmt.Errorf("failed to create auth token: %w", err)
	}
	return nil
}

func (r *AuthTokenRepository) GetByHash(ctx context.Context, hash []byte) (model.AuthToken, error) {
	query := `SELECT ` + authTokenColumns + ` FROM auth_tokens WHERE token_hash = $1`
	return r.getOne(ctx, query, hash)
}

func (r *AuthTokenRepository) GetByJTI(ctx context.Context, jti string) (model.AuthToken, error) {
	query := `SELECT ` + authTokenColumns + ` FROM auth_tokens WHERE jti = $1`
	return r.getOne(ctx, query, jti)
}

func (r *AuthTokenRepository) getOne(ctx context.Context, query string, arg any) (model.AuthToken, error) {
	var t model.AuthToken
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.JTI, &t.UserID, &t.Type, &t.TokenHash, &t.ParentJTI,
		&t.IPAddress, &t.UserAgent, &t.CreatedAt, &t.ExpiresAt, &t.RevokedAt, &t.Revoked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AuthToken{}, model.ErrNotFound
		}
		return model.AuthToken{}, fmt.Errorf("failed to get auth token: %w", err)
	}
	return t, nil
}

// RevokeTree marks the record and all access records parented to it revoked.
// A single UPDATE keeps the cascade atomic and gives every row the same
// revoked_at value.
func (r *AuthTokenRepository) RevokeTree(ctx context.Context, jti string) error {
	const query = `
        UPDATE auth_tokens SET is_revoked = TRUE, revoked_at = NOW()
        WHERE is_revoked = FALSE AND (jti = $1 OR parent_jti = $1)
    `
	if _, err := r.db.Exec(ctx, query, jti); err != nil {
		return fmt.Errorf("failed to revoke token tree: %w", err)
	}
	return nil
}

func (r *AuthTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `
        UPDATE auth_tokens SET is_revoked = TRUE, revoked_at = NOW()
        WHERE user_id = $1 AND is_revoked = FALSE
    `
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens by user: %w", err)
	}
	return nil
}

// DeleteOlderThan purges records past the retention window. The predicate
// only matches rows that are already expired or revoked, so a live record is
// never deleted regardless of age.
func (r *AuthTokenRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
        DELETE FROM auth_tokens
        WHERE expires_at < $1 OR revoked_at < $1
    `
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old auth tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *AuthTokenRepository) Stats(ctx context.Context) (model.TokenStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE is_revoked = FALSE),
               COUNT(*) FILTER (WHERE is_revoked = TRUE)
        FROM auth_tokens
    `
	var stats model.TokenStats
	err := r.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Revoked)
	if err != nil {
		return model.TokenStats{}, fmt.Errorf("failed to get token stats: %w", err)
	}
	return stats, nil
}

// ActiveRefreshByUser lists the user's live refresh records, one per open
// session ("where you're logged in").
func (r *AuthTokenRepository) ActiveRefreshByUser(ctx context.Context, userID uuid.UUID) ([]model.AuthToken, error) {
	query := `
        SELECT ` + authTokenColumns + `
        FROM auth_tokens
        WHERE user_id = $1 AND token_type = 'refresh' AND is_revoked = FALSE AND expires_at > NOW()
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active refresh tokens: %w", err)
	}
	defer rows.Close()

	var tokens []model.AuthToken
	for rows.Next() {
		var t model.AuthToken
		if err := rows.Scan(
			&t.ID, &t.JTI, &t.UserID, &t.Type, &t.TokenHash, &t.ParentJTI,
			&t.IPAddress, &t.UserAgent, &t.CreatedAt, &t.ExpiresAt, &t.RevokedAt, &t.Revoked,
		); err != nil {
			return nil, fmt.Errorf("failed to scan auth token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate auth tokens: %w", err)
	}
	return tokens, nil
}
