package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

// Pool allocates shared upstream credentials to login sessions with
// least-loaded selection. Load counts are derived from the ledger on every
// decision, never cached, so allocation always reflects the latest committed
// releases.
type Pool struct {
	credentials     model.CredentialPoolStore
	assignments     model.AssignmentStore
	fallbackToken   string
	failOnExhausted bool
	logger          *logger.Logger
}

func NewPool(
	credentials model.CredentialPoolStore,
	assignments model.AssignmentStore,
	fallbackToken string,
	failOnExhausted bool,
	logger *logger.Logger,
) *Pool {
	return &Pool{
		credentials:     credentials,
		assignments:     assignments,
		fallbackToken:   fallbackToken,
		failOnExhausted: failOnExhausted,
		logger:          logger,
	}
}

// SelectLeastLoaded returns the active credential with the fewest active
// assignments, ties broken by insertion order. Returns ErrPoolExhausted when
// no credential is active.
func (p *Pool) SelectLeastLoaded(ctx context.Context) (model.PoolCredential, error) {
	loads, err := p.credentials.ListWithLoad(ctx)
	if err != nil {
		return model.PoolCredential{}, fmt.Errorf("list credentials with load: %w", err)
	}

	var best *model.CredentialLoad
	for i := range loads {
		l := &loads[i]
		if !l.Credential.Active {
			continue
		}
		// loads come back in insertion order, so strict less-than keeps the
		// earliest credential on ties.
		if best == nil || l.ActiveAssignments < best.ActiveAssignments {
			best = l
		}
	}
	if best == nil {
		return model.PoolCredential{}, model.ErrPoolExhausted
	}
	return best.Credential, nil
}

// Assign binds the session to the least-loaded active credential. Selection
// and insert happen as one store operation, so concurrent logins cannot race
// a stale load count into gross imbalance. When the pool is exhausted and
// hard-fail is off, Assign logs and returns (nil, nil); the session then runs
// on the fallback credential.
func (p *Pool) Assign(ctx context.Context, userID uuid.UUID, sessionJTI string) (*model.Assignment, error) {
	assignment, err := p.assignments.Acquire(ctx, model.Assignment{
		ID:         uuid.New(),
		UserID:     userID,
		SessionJTI: sessionJTI,
	})
	if errors.Is(err, model.ErrPoolExhausted) {
		if p.failOnExhausted {
			return nil, err
		}
		p.logger.Warn("Pool service: no active credential, session falls back to default",
			"user_id", userID,
			"session_jti", sessionJTI)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("acquire assignment: %w", err)
	}

	p.logger.Info("Pool service: credential assigned",
		"user_id", userID,
		"credential_id", assignment.CredentialID,
		"session_jti", sessionJTI)

	return &assignment, nil
}

// Release deactivates the session's assignment. Idempotent: a missing or
// already-released assignment is a successful no-op, so logout stays safe
// with stale or replayed session identifiers.
func (p *Pool) Release(ctx context.Context, sessionJTI string) error {
	err := p.assignments.Release(ctx, sessionJTI)
	if errors.Is(err, model.ErrAssignmentNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("release assignment: %w", err)
	}
	return nil
}

// Current returns the user's active assignment, or nil when none exists.
func (p *Pool) Current(ctx context.Context, userID uuid.UUID) (*model.Assignment, error) {
	assignment, err := p.assignments.GetActiveByUser(ctx, userID)
	if errors.Is(err, model.ErrAssignmentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active assignment: %w", err)
	}
	return &assignment, nil
}

// CredentialFor resolves the upstream credential value the user's session
// should call out with: the assigned pool credential when one is active, the
// configured fallback otherwise.
func (p *Pool) CredentialFor(ctx context.Context, userID uuid.UUID) (string, error) {
	assignment, err := p.Current(ctx, userID)
	if err != nil {
		return "", err
	}
	if assignment == nil {
		return p.fallbackToken, nil
	}

	cred, err := p.credentials.GetByID(ctx, assignment.CredentialID)
	if err != nil {
		return "", fmt.Errorf("get assigned credential: %w", err)
	}
	return cred.Value, nil
}

// ListLoads exposes per-credential load for the admin surface.
func (p *Pool) ListLoads(ctx context.Context) ([]model.CredentialLoad, error) {
	return p.credentials.ListWithLoad(ctx)
}

// AddCredential registers a new pool credential.
func (p *Pool) AddCredential(ctx context.Context, name, value string, createdBy uuid.UUID) (model.PoolCredential, error) {
	cred, err := p.credentials.Create(ctx, model.PoolCredential{
		ID:        uuid.New(),
		Name:      name,
		Value:     value,
		Active:    true,
		CreatedBy: &createdBy,
	})
	if err != nil {
		return model.PoolCredential{}, fmt.Errorf("create credential: %w", err)
	}
	return cred, nil
}

// SetCredentialActive toggles a credential's availability. Deactivation is
// soft: existing assignments keep their reference.
func (p *Pool) SetCredentialActive(ctx context.Context, id uuid.UUID, active bool) error {
	return p.credentials.SetActive(ctx, id, active)
}

// AssignmentsFor lists a user's assignment history for the admin surface.
func (p *Pool) AssignmentsFor(ctx context.Context, userID uuid.UUID) ([]model.Assignment, error) {
	return p.assignments.ListByUser(ctx, userID)
}
