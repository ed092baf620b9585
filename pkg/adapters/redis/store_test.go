package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/welllit/pkg/adapters/redis"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunRecordStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("lab:"))
	run := domain.Run{ID: "plates_transfer_record_2026_01_01_00_00_00"}

	require.NoError(t, store.WriteRecords(context.Background(), run, nil))
	assert.True(t, mr.Exists("lab:"+run.ID))
	assert.False(t, mr.Exists(redis.DefaultPrefix+run.ID))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()
	run := domain.Run{ID: "run-ttl"}

	require.NoError(t, store.WriteRecords(ctx, run, []domain.Record{{TransferID: "t1", Status: domain.StatusCompleted}}))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Contains(t, runs, run.ID)

	mr.FastForward(2 * time.Second)

	_, err = store.ReadRecords(ctx, run.ID)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()
	run := domain.Run{ID: "run-delete"}

	require.NoError(t, store.WriteRecords(ctx, run, nil))
	require.NoError(t, store.Delete(ctx, run.ID))

	_, err := store.ReadRecords(ctx, run.ID)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotContains(t, runs, run.ID)
}
