package session

import (
	"context"
	"testing"
	"time"

	"padelchat/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContext() *model.ConversationContext {
	return &model.ConversationContext{
		CourtID: "court-2",
		Date:    "2024-02-15",
		Court:   &model.Court{ID: "court-2", Name: "North Court", PricePerHour: 20},
	}
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestStores_RoundTrip(t *testing.T) {
	redisStore, _ := newRedisStore(t, time.Minute)
	stores := map[string]Store{
		"memory": NewMemoryStore(time.Minute),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := store.Load(ctx, "s1")
			require.NoError(t, err)
			require.NotNil(t, empty)
			assert.True(t, empty.IsEmpty())

			require.NoError(t, store.Save(ctx, "s1", sampleContext()))

			got, err := store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, sampleContext(), got)

			other, err := store.Load(ctx, "s2")
			require.NoError(t, err)
			assert.True(t, other.IsEmpty(), "sessions must not leak into each other")

			require.NoError(t, store.Clear(ctx, "s1"))
			cleared, err := store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, cleared.IsEmpty())
		})
	}
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", sampleContext()))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	got.CourtID = "court-4"
	got.Court.Name = "changed"

	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "court-2", again.CourtID)
	assert.Equal(t, "North Court", again.Court.Name)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", sampleContext()))

	now = now.Add(2 * time.Minute)
	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_LoadRestartsExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", sampleContext()))

	// each read lands inside the window, so the context outlives the first TTL
	for i := 0; i < 3; i++ {
		now = now.Add(45 * time.Second)
		got, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "court-2", got.CourtID)
	}

	now = now.Add(61 * time.Second)
	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestMemoryStore_SaveEmptyDeletes(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", sampleContext()))
	require.NoError(t, store.Save(ctx, "s1", &model.ConversationContext{}))
	assert.Equal(t, 0, store.Len())
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleContext()))
	assert.Equal(t, time.Minute, mr.TTL(redisKeyPrefix+"s1"))

	mr.FastForward(2 * time.Minute)
	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestRedisStore_LoadRestartsTTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleContext()))
	mr.FastForward(45 * time.Second)
	assert.Equal(t, 15*time.Second, mr.TTL(redisKeyPrefix+"s1"))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "court-2", got.CourtID)
	assert.Equal(t, time.Minute, mr.TTL(redisKeyPrefix+"s1"))

	mr.FastForward(45 * time.Second)
	got, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "court-2", got.CourtID)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	require.NoError(t, mr.Set(redisKeyPrefix+"s1", "{not json"))

	_, err := store.Load(context.Background(), "s1")
	assert.Error(t, err)
}

func TestRedisStore_Unreachable(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	mr.Close()

	_, err := store.Load(context.Background(), "s1")
	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}
