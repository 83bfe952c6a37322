package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
	servermocks "github.com/humanoid-ai/humanoid-server/internal/mocks"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

func TestToken_Issue(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	var created model.AuthToken
	store.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(model.AuthToken)
	}).Return(nil).Once()

	svc := NewToken(manager, store, logger.New(0))

	record, err := svc.Issue(ctx, IssueParams{
		UserID: userID,
		Type:   model.TokenTypeRefresh,
		Raw:    "raw-token",
		JTI:    "jti-1",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	assert.Equal(t, "jti-1", record.JTI)
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, HashToken("raw-token"), record.TokenHash)
	assert.Nil(t, record.ParentJTI)
	assert.WithinDuration(t, record.CreatedAt.Add(time.Hour), record.ExpiresAt, time.Second)

	// the persisted record is the returned record
	assert.Equal(t, record, created)
}

func TestToken_Issue_Duplicate(t *testing.T) {
	ctx := context.Background()

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	store.On("Create", ctx, mock.Anything).Return(model.ErrDuplicateToken).Once()

	svc := NewToken(manager, store, logger.New(0))

	_, err := svc.Issue(ctx, IssueParams{
		UserID: uuid.New(),
		Type:   model.TokenTypeAccess,
		Raw:    "raw",
		JTI:    "jti",
		TTL:    time.Minute,
	})
	require.ErrorIs(t, err, model.ErrDuplicateToken)
}

func TestToken_Validate_Success(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	raw := "refresh-token"

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	manager.On("ParseRefreshToken", raw).Return(userID, "jti", nil).Once()
	store.On("GetByHash", ctx, HashToken(raw)).Return(model.AuthToken{
		JTI:       "jti",
		UserID:    userID,
		Type:      model.TokenTypeRefresh,
		TokenHash: HashToken(raw),
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil).Once()

	svc := NewToken(manager, store, logger.New(0))

	record, err := svc.Validate(ctx, raw, model.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "jti", record.JTI)
	assert.Equal(t, userID, record.UserID)
}

func TestToken_Validate_BadSignature(t *testing.T) {
	ctx := context.Background()

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	manager.On("ParseAccessToken", "garbage").Return(uuid.Nil, "", assert.AnError).Once()

	svc := NewToken(manager, store, logger.New(0))

	_, err := svc.Validate(ctx, "garbage", model.TokenTypeAccess)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestToken_Validate_UnknownToStore(t *testing.T) {
	ctx := context.Background()
	raw := "valid-but-untracked"

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	manager.On("ParseAccessToken", raw).Return(uuid.New(), "jti", nil).Once()
	store.On("GetByHash", ctx, HashToken(raw)).Return(model.AuthToken{}, model.ErrNotFound).Once()

	svc := NewToken(manager, store, logger.New(0))

	// A token that verifies cryptographically but has no record is invalid.
	_, err := svc.Validate(ctx, raw, model.TokenTypeAccess)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestToken_Validate_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	raw := "refresh-presented-as-access"

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	manager.On("ParseAccessToken", raw).Return(uuid.New(), "jti", nil).Once()
	store.On("GetByHash", ctx, HashToken(raw)).Return(model.AuthToken{
		JTI:       "jti",
		Type:      model.TokenTypeRefresh,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil).Once()

	svc := NewToken(manager, store, logger.New(0))

	_, err := svc.Validate(ctx, raw, model.TokenTypeAccess)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestToken_Validate_Revoked(t *testing.T) {
	ctx := context.Background()
	raw := "revoked-token"
	now := time.Now()

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	manager.On("ParseRefreshToken", raw).Return(uuid.New(), "jti", nil).Once()
	store.On("GetByHash", ctx, HashToken(raw)).Return(model.AuthToken{
		JTI:       "jti",
		Type:      model.TokenTypeRefresh,
		ExpiresAt: now.Add(time.Hour),
		Revoked:   true,
		RevokedAt: &now,
	}, nil).Once()

	svc := NewToken(manager, store, logger.New(0))

	_, err := svc.Validate(ctx, raw, model.TokenTypeRefresh)
	require.ErrorIs(t, err, model.ErrTokenRevoked)
}

func TestToken_Validate_StoreExpiry(t *testing.T) {
	ctx := context.Background()
	raw := "expired-in-store"

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	// The manager accepts the token but the stored record says expired. The
	// store-side check wins.
	manager.On("ParseRefreshToken", raw).Return(uuid.New(), "jti", nil).Once()
	store.On("GetByHash", ctx, HashToken(raw)).Return(model.AuthToken{
		JTI:       "jti",
		Type:      model.TokenTypeRefresh,
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil).Once()

	svc := NewToken(manager, store, logger.New(0))

	_, err := svc.Validate(ctx, raw, model.TokenTypeRefresh)
	require.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestToken_Revoke(t *testing.T) {
	ctx := context.Background()

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	store.On("RevokeTree", ctx, "jti").Return(nil).Once()

	svc := NewToken(manager, store, logger.New(0))

	require.NoError(t, svc.Revoke(ctx, "jti"))
}

func TestToken_Purge(t *testing.T) {
	ctx := context.Background()

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	retention := 30 * 24 * time.Hour

	var cutoff time.Time
	store.On("DeleteOlderThan", ctx, mock.Anything).Run(func(args mock.Arguments) {
		cutoff = args.Get(1).(time.Time)
	}).Return(int64(5), nil).Once()

	svc := NewToken(manager, store, logger.New(0))

	deleted, err := svc.Purge(ctx, retention)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
	assert.WithinDuration(t, time.Now().Add(-retention), cutoff, time.Second)
}

func TestHashToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 32)
}
