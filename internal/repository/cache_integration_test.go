//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/models"
	redisclient "github.com/shenikar/livestock_alerts/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestCache(t *testing.T) *AlertCache {
	t.Helper()
	ctx := context.Background()

	ctr, err := testcontainers.Run(ctx, "redis:7-alpine",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(wait.ForLog("Ready to accept connections")),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	addr, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)
	client, err := redisclient.NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewAlertCache(client, time.Minute).(*AlertCache)
}

func TestAlertCache_GenerationGuardsStaleSet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	alert := &models.Alert{ID: uuid.New(), Title: "Anthrax suspected"}

	cached, gen, err := cache.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)
	assert.Zero(t, gen)

	// Запись между чтением и заполнением кэша
	require.NoError(t, cache.Invalidate(ctx, alert.ID))

	require.NoError(t, cache.Set(ctx, alert, gen))
	cached, gen, err = cache.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Nil(t, cached, "snapshot read before invalidation must not be cached")
	assert.Equal(t, int64(1), gen)

	require.NoError(t, cache.Set(ctx, alert, gen))
	cached, _, err = cache.Get(ctx, alert.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Anthrax suspected", cached.Title)

	require.NoError(t, cache.Invalidate(ctx, alert.ID))
	cached, gen, err = cache.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)
	assert.Equal(t, int64(2), gen)
}
