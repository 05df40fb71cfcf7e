//go:build integration

package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/inventario-ledger-api/pkg/idempotency"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
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
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestStore_CicloCompleto(t *testing.T) {
	ctx := context.Background()
	store := idempotency.NewStore(startRedis(t), time.Minute)
	key := "idem:user-1:k1"

	stored, err := store.Acquire(ctx, key, "fp")
	require.NoError(t, err)
	assert.Nil(t, stored)

	_, err = store.Acquire(ctx, key, "fp")
	assert.ErrorIs(t, err, idempotency.ErrInProgress)
	_, err = store.Acquire(ctx, key, "otro")
	assert.ErrorIs(t, err, idempotency.ErrFingerprintMismatch)

	require.NoError(t, store.Complete(ctx, key, idempotency.Response{Fingerprint: "fp", StatusCode: 201, Body: []byte(`{"id":1}`)}))
	stored, err = store.Acquire(ctx, key, "fp")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 201, stored.StatusCode)
	assert.JSONEq(t, `{"id":1}`, string(stored.Body))
}

func TestStore_ReleasePermiteReintentar(t *testing.T) {
	ctx := context.Background()
	store := idempotency.NewStore(startRedis(t), time.Minute)
	key := "idem:user-1:k2"

	_, err := store.Acquire(ctx, key, "fp")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, key))

	stored, err := store.Acquire(ctx, key, "fp")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
