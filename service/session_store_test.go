package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print-shop-mis/models"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &models.Session{Token: "t1", UserID: 7, Role: "admin", ExpiresAt: now.Add(time.Hour)}))

	s, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.UserID)

	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, "t1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, &models.Session{Token: "t2", UserID: 8, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Delete(ctx, "t2"))
	_, err = store.Get(ctx, "t2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewRedisSessionStore(rdb)
	require.NoError(t, store.Save(ctx, &models.Session{Token: "tok", UserID: 3, Role: "reception", ExpiresAt: time.Now().Add(time.Hour)}))
	assert.True(t, mr.Exists("session:tok"))

	s, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "reception", s.Role)

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Error(t, store.Save(ctx, &models.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
}
