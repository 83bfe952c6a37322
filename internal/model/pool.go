package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CredentialPoolStore defines persistence operations for shared upstream
// credentials. Entries are deactivated, never deleted, while assignments may
// still reference them.
type CredentialPoolStore interface {
	Create(ctx context.Context, cred PoolCredential) (PoolCredential, error)
	GetByID(ctx context.Context, id uuid.UUID) (PoolCredential, error)
	ListWithLoad(ctx context.Context) ([]CredentialLoad, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// AssignmentStore defines persistence operations for session-to-credential
// assignments. Rows are an audit trail and are never physically deleted.
type AssignmentStore interface {
	// Acquire picks the least-loaded active credential and inserts an active
	// assignment bound to it as one atomic operation. Returns ErrPoolExhausted
	// when no active credential exists.
	Acquire(ctx context.Context, a Assignment) (Assignment, error)
	// Release deactivates the active assignment for the session identifier.
	// Returns ErrAssignmentNotFound when none is active.
	Release(ctx context.Context, sessionJTI string) error
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (Assignment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Assignment, error)
}

// PoolCredential is one shared upstream API credential.
type PoolCredential struct {
	ID        uuid.UUID
	Name      string
	Value     string
	Active    bool
	CreatedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CredentialLoad pairs a credential with its current active-assignment count.
type CredentialLoad struct {
	Credential        PoolCredential
	ActiveAssignments int
}

// Assignment binds one login session to one pool credential. SessionJTI is
// the jti of the session's refresh token.
type Assignment struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CredentialID uuid.UUID
	SessionJTI   string
	Active       bool
	AssignedAt   time.Time
	ReleasedAt   *time.Time
}
