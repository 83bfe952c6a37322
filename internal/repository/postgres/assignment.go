package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/humanoid-ai/humanoid-server/internal/model"
)

var _ model.AssignmentStore = (*AssignmentRepository)(nil)

type AssignmentRepository struct {
	db *Connection
}

func NewAssignmentRepository(db *Connection) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, user_id, credential_id, session_jti, is_active, assigned_at, released_at`

// Acquire selects the least-loaded active credential and inserts the
// assignment as one statement, so concurrent logins cannot both read a stale
// load count and dogpile the same credential through a read-then-write gap.
// Ties break on credential insertion order.
func (r *AssignmentRepository) Acquire(ctx context.Context, a model.Assignment) (model.Assignment, error) {
	const query = `
        INSERT INTO pool_assignments (id, user_id, credential_id, session_jti, is_active, assigned_at)
        SELECT $1, $2, c.id, $3, TRUE, NOW()
        FROM pool_credentials c
        LEFT JOIN pool_assignments pa ON pa.credential_id = c.id AND pa.is_active
        WHERE c.is_active
        GROUP BY c.id, c.created_at
        ORDER BY COUNT(pa.id), c.created_at, c.id
        LIMIT 1
        RETURNING ` + assignmentColumns + `
    `

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	var saved model.Assignment
	err := r.db.QueryRow(ctx, query, a.ID, a.UserID, a.SessionJTI).Scan(
		&saved.ID, &saved.UserID, &saved.CredentialID, &saved.SessionJTI,
		&saved.Active, &saved.AssignedAt, &saved.ReleasedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Assignment{}, model.ErrPoolExhausted
		}
		return model.Assignment{}, fmt.Errorf("failed to acquire pool assignment: %w", err)
	}
	return saved, nil
}

func (r *AssignmentRepository) Release(ctx context.Context, sessionJTI string) error {
	const query = `
        UPDATE pool_assignments SET is_active = FALSE, released_at = NOW()
        WHERE session_jti = $1 AND is_active
    `
	tag, err := r.db.Exec(ctx, query, sessionJTI)
	if err != nil {
		return fmt.Errorf("failed to release pool assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (model.Assignment, error) {
	query := `
        SELECT ` + assignmentColumns + `
        FROM pool_assignments
        WHERE user_id = $1 AND is_active
        ORDER BY assigned_at DESC
        LIMIT 1
    `
	var a model.Assignment
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&a.ID, &a.UserID, &a.CredentialID, &a.SessionJTI, &a.Active, &a.AssignedAt, &a.ReleasedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Assignment{}, model.ErrAssignmentNotFound
		}
		return model.Assignment{}, fmt.Errorf("failed to get active assignment: %w", err)
	}
	return a, nil
}

func (r *AssignmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Assignment, error) {
	query := `
        SELECT ` + assignmentColumns + `
        FROM pool_assignments
        WHERE user_id = $1
        ORDER BY assigned_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.CredentialID, &a.SessionJTI, &a.Active, &a.AssignedAt, &a.ReleasedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}
