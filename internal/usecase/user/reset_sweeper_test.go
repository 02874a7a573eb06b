package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartResetSweepJob_ClearsExpired(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice wonder", "alice@x.com", "secret123")
	f.requestReset(t, "alice@x.com")

	f.clock.now = f.clock.now.Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.svc.StartResetSweepJob(ctx, "@every 1h"))

	stored, err := f.repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.False(t, stored.HasPendingReset())
}

func TestStartResetSweepJob_KeepsLiveResets(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice wonder", "alice@x.com", "secret123")
	f.requestReset(t, "alice@x.com")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.svc.StartResetSweepJob(ctx, "@every 1h"))

	stored, err := f.repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.True(t, stored.HasPendingReset())
}

func TestStartResetSweepJob_InvalidSpec(t *testing.T) {
	f := newFixture(t)
	err := f.svc.StartResetSweepJob(context.Background(), "not a schedule")
	assert.Error(t, err)
}
