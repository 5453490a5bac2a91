package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/dom/squad-dashboard/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMemoryLocker(t *testing.T) {
	locker := service.NewMemoryLocker()
	ctx := context.Background()
	gameID := uuid.New()

	release, err := locker.TryAcquire(ctx, gameID)
	require.NoError(t, err)

	_, err = locker.TryAcquire(ctx, gameID)
	assert.ErrorIs(t, err, domain.ErrFinalizationInFlight)

	other, err := locker.TryAcquire(ctx, uuid.New())
	require.NoError(t, err, "different games lock independently")
	other()

	release()
	release() // second release is a no-op

	again, err := locker.TryAcquire(ctx, gameID)
	require.NoError(t, err)
	again()
}

func TestRedisLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb, err := service.NewRedisClient(addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	t.Run("exclusive per game", func(t *testing.T) {
		a := service.NewRedisLocker(rdb, time.Minute, zerolog.Nop())
		b := service.NewRedisLocker(rdb, time.Minute, zerolog.Nop())
		gameID := uuid.New()

		release, err := a.TryAcquire(ctx, gameID)
		require.NoError(t, err)

		_, err = b.TryAcquire(ctx, gameID)
		assert.ErrorIs(t, err, domain.ErrFinalizationInFlight)

		release()

		releaseB, err := b.TryAcquire(ctx, gameID)
		require.NoError(t, err)
		releaseB()
	})

	t.Run("expired lock is not released by its old holder", func(t *testing.T) {
		locker := service.NewRedisLocker(rdb, 200*time.Millisecond, zerolog.Nop())
		gameID := uuid.New()

		staleRelease, err := locker.TryAcquire(ctx, gameID)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			release, err := locker.TryAcquire(ctx, gameID)
			if err != nil {
				return false
			}
			// Hold the new lock and let the stale holder try to release it.
			staleRelease()
			_, err = locker.TryAcquire(ctx, gameID)
			assert.ErrorIs(t, err, domain.ErrFinalizationInFlight)
			release()
			return true
		}, 5*time.Second, 50*time.Millisecond)
	})
}
