package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/humanoid-ai/humanoid-server/internal/model"
)

var _ model.CredentialPoolStore = (*CredentialPoolRepository)(nil)

type CredentialPoolRepository struct {
	db *Connection
}

func NewCredentialPoolRepository(db *Connection) *CredentialPoolRepository {
	return &CredentialPoolRepository{db: db}
}

func (r *CredentialPoolRepository) Create(ctx context.Context, cred model.PoolCredential) (model.PoolCredential, error) {
	const query = `
        INSERT INTO pool_credentials (id, name, value, is_active, created_by, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
        RETURNING id, name, value, is_active, created_by, created_at, updated_at
    `

	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}

	var saved model.PoolCredential
	err := r.db.QueryRow(ctx, query, cred.ID, cred.Name, cred.Value, cred.Active, cred.CreatedBy).Scan(
		&saved.ID, &saved.Name, &saved.Value, &saved.Active, &saved.CreatedBy, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return model.PoolCredential{}, fmt.Errorf("failed to create pool credential: %w", err)
	}
	return saved, nil
}

func (r *CredentialPoolRepository) GetByID(ctx context.Context, id uuid.UUID) (model.PoolCredential, error) {
	const query = `
        SELECT id, name, value, is_active, created_by, created_at, updated_at
        FROM pool_credentials WHERE id = $1
    `
	var cred model.PoolCredential
	err := r.db.QueryRow(ctx, query, id).Scan(
		&cred.ID, &cred.Name, &cred.Value, &cred.Active, &cred.CreatedBy, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolCredential{}, model.ErrNotFound
		}
		return model.PoolCredential{}, fmt.Errorf("failed to get pool credential: %w", err)
	}
	return cred, nil
}

// ListWithLoad returns every credential with its active-assignment count, in
// insertion order so callers see the allocator's tie-break order.
func (r *CredentialPoolRepository) ListWithLoad(ctx context.Context) ([]model.CredentialLoad, error) {
	const query = `
        SELECT c.id, c.name, c.value, c.is_active, c.created_by, c.created_at, c.updated_at,
               COUNT(a.id) FILTER (WHERE a.is_active)
        FROM pool_credentials c
        LEFT JOIN pool_assignments a ON a.credential_id = c.id
        GROUP BY c.id
        ORDER BY c.created_at, c.id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pool credentials: %w", err)
	}
	defer rows.Close()

	var loads []model.CredentialLoad
	for rows.Next() {
		var l model.CredentialLoad
		if err := rows.Scan(
			&l.Credential.ID, &l.Credential.Name, &l.Credential.Value, &l.Credential.Active,
			&l.Credential.CreatedBy, &l.Credential.CreatedAt, &l.Credential.UpdatedAt,
			&l.ActiveAssignments,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pool credential: %w", err)
		}
		loads = append(loads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pool credentials: %w", err)
	}
	return loads, nil
}

func (r *CredentialPoolRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	const query = `
        UPDATE pool_credentials SET is_active = $2, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update pool credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
