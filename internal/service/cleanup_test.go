package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
	servermocks "github.com/humanoid-ai/humanoid-server/internal/mocks"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

func TestCleanup_RunOnce(t *testing.T) {
	ctx := context.Background()

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	retention := 30 * 24 * time.Hour

	var cutoff time.Time
	store.On("DeleteOlderThan", ctx, mock.Anything).Run(func(args mock.Arguments) {
		cutoff = args.Get(1).(time.Time)
	}).Return(int64(12), nil).Once()
	store.On("Stats", ctx).Return(model.TokenStats{Total: 8, Active: 5, Revoked: 3}, nil).Once()

	log := logger.New(0)
	cleanup := NewCleanup(NewToken(manager, store, log), retention, time.Hour, log)

	deleted, stats, err := cleanup.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
	assert.Equal(t, int64(8), stats.Total)
	assert.Equal(t, int64(5), stats.Active)
	assert.Equal(t, int64(3), stats.Revoked)

	// Retention counts back from now.
	assert.WithinDuration(t, time.Now().Add(-retention), cutoff, time.Second)
}

func TestCleanup_RunOnce_PurgeError(t *testing.T) {
	ctx := context.Background()

	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	store.On("DeleteOlderThan", ctx, mock.Anything).Return(int64(0), assert.AnError).Once()

	log := logger.New(0)
	cleanup := NewCleanup(NewToken(manager, store, log), time.Hour, time.Hour, log)

	_, _, err := cleanup.RunOnce(ctx)
	require.Error(t, err)
	store.AssertNotCalled(t, "Stats", mock.Anything)
}

func TestCleanup_Run_StopsOnCancel(t *testing.T) {
	manager := &servermocks.TokenManager{}
	store := &servermocks.AuthTokenStore{}

	store.On("DeleteOlderThan", mock.Anything, mock.Anything).Return(int64(0), nil)
	store.On("Stats", mock.Anything).Return(model.TokenStats{}, nil)

	log := logger.New(0)
	cleanup := NewCleanup(NewToken(manager, store, log), time.Hour, time.Hour, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleanup.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup loop did not stop after context cancel")
	}

	// The immediate first sweep ran before shutdown.
	store.AssertCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
}
