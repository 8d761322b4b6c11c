package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var guardCfg = GuardConfig{Cooldown: 3 * time.Second, DuplicateWindow: 10 * time.Minute}

// guardClock lets tests move time forward for a guard backend.
type guardClock func(d time.Duration)

func newGuards(t *testing.T) map[string]struct {
	guard   SubmissionGuard
	advance guardClock
} {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	mem := NewMemorySubmissionGuard(guardCfg)
	mem.now = func() time.Time { return now }

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]struct {
		guard   SubmissionGuard
		advance guardClock
	}{
		"memory": {guard: mem, advance: func(d time.Duration) { now = now.Add(d) }},
		"redis":  {guard: NewRedisSubmissionGuard(rdb, guardCfg), advance: mr.FastForward},
	}
}

func TestSubmissionGuard_Cooldown(t *testing.T) {
	for name, g := range newGuards(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := g.guard.Acquire(ctx, "user:1", "aaa", false)
			require.NoError(t, err)

			_, err = g.guard.Acquire(ctx, "user:1", "bbb", false)
			var cd *CooldownError
			require.True(t, errors.As(err, &cd))
			assert.Equal(t, 3, cd.RetryAfterSeconds())

			_, err = g.guard.Acquire(ctx, "user:2", "bbb", false)
			assert.NoError(t, err, "other clients are not affected")

			g.advance(3 * time.Second)
			_, err = g.guard.Acquire(ctx, "user:1", "bbb", false)
			assert.NoError(t, err)
		})
	}
}

func TestSubmissionGuard_Duplicate(t *testing.T) {
	for name, g := range newGuards(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := g.guard.Acquire(ctx, "user:1", "same", false)
			require.NoError(t, err)

			g.advance(5 * time.Second)
			_, err = g.guard.Acquire(ctx, "user:1", "same", false)
			assert.ErrorIs(t, err, ErrDuplicateSubmission)

			g.advance(5 * time.Second)
			_, err = g.guard.Acquire(ctx, "user:1", "same", true)
			assert.NoError(t, err, "confirmed duplicates pass")

			g.advance(11 * time.Minute)
			_, err = g.guard.Acquire(ctx, "user:1", "same", false)
			assert.NoError(t, err, "window expired")
		})
	}
}

func TestSubmissionGuard_ConfirmRightAfterDuplicate(t *testing.T) {
	for name, g := range newGuards(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := g.guard.Acquire(ctx, "user:1", "same", false)
			require.NoError(t, err)

			g.advance(5 * time.Second)
			_, err = g.guard.Acquire(ctx, "user:1", "same", false)
			require.ErrorIs(t, err, ErrDuplicateSubmission)

			_, err = g.guard.Acquire(ctx, "user:1", "same", true)
			assert.NoError(t, err, "a rejected duplicate does not start a cooldown")

			_, err = g.guard.Acquire(ctx, "user:1", "other", false)
			var cd *CooldownError
			assert.True(t, errors.As(err, &cd), "the accepted confirm does")
		})
	}
}

func TestSubmissionGuard_ReleaseKeepsEarlierDuplicate(t *testing.T) {
	for name, g := range newGuards(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := g.guard.Acquire(ctx, "user:1", "same", false)
			require.NoError(t, err)

			g.advance(5 * time.Second)
			release, err := g.guard.Acquire(ctx, "user:1", "same", true)
			require.NoError(t, err)
			release()

			g.advance(5 * time.Second)
			_, err = g.guard.Acquire(ctx, "user:1", "same", false)
			assert.ErrorIs(t, err, ErrDuplicateSubmission, "the first order is still recorded")
		})
	}
}

func TestSubmissionGuard_ReleaseAllowsRetry(t *testing.T) {
	for name, g := range newGuards(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			release, err := g.guard.Acquire(ctx, "user:1", "fp", false)
			require.NoError(t, err)
			release()

			_, err = g.guard.Acquire(ctx, "user:1", "fp", false)
			assert.NoError(t, err)
		})
	}
}

func TestCooldownError_RetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, (&CooldownError{RetryAfter: 10 * time.Millisecond}).RetryAfterSeconds())
	assert.Equal(t, 2, (&CooldownError{RetryAfter: 1001 * time.Millisecond}).RetryAfterSeconds())
	assert.Equal(t, 1, (&CooldownError{}).RetryAfterSeconds())
}
