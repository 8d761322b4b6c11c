package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrDuplicateSubmission is returned when a client resubmits an order it already sent.
var ErrDuplicateSubmission = errors.New("order already submitted")

// CooldownError is returned when a client submits again before its cooldown ends.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("submission cooldown active, retry after %s", e.RetryAfter)
}

// RetryAfterSeconds rounds the remaining cooldown up to whole seconds.
func (e *CooldownError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// SubmissionGuard rejects bursts and repeated payloads of order submissions per client.
type SubmissionGuard interface {
	// Acquire records a submission of fingerprint by client. The returned release undoes the
	// record and must be called when the submission is not persisted.
	Acquire(ctx context.Context, client, fingerprint string, allowDuplicate bool) (release func(), err error)
}

// GuardConfig holds the guard timings.
type GuardConfig struct {
	Cooldown        time.Duration
	DuplicateWindow time.Duration
}

// MemorySubmissionGuard keeps guard state in process memory.
type MemorySubmissionGuard struct {
	cfg GuardConfig
	now func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time // key -> expiry
}

// NewMemorySubmissionGuard creates an in-memory guard.
func NewMemorySubmissionGuard(cfg GuardConfig) *MemorySubmissionGuard {
	return &MemorySubmissionGuard{cfg: cfg, now: time.Now, entries: make(map[string]time.Time)}
}

var _ SubmissionGuard = (*MemorySubmissionGuard)(nil)

func (g *MemorySubmissionGuard) Acquire(_ context.Context, client, fingerprint string, allowDuplicate bool) (func(), error) {
	now := g.now()
	cooldownKey := cooldownKey(client)
	dupKey := duplicateKey(client, fingerprint)

	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.entries) > 4096 {
		for k, exp := range g.entries {
			if !exp.After(now) {
				delete(g.entries, k)
			}
		}
	}

	if g.cfg.Cooldown > 0 {
		if exp, ok := g.entries[cooldownKey]; ok && exp.After(now) {
			return nil, &CooldownError{RetryAfter: exp.Sub(now)}
		}
	}

	// A rejected duplicate leaves no trace, so the confirmed retry is not held by the cooldown.
	dupExp, dupActive := g.entries[dupKey]
	dupActive = dupActive && dupExp.After(now)
	if g.cfg.DuplicateWindow > 0 && dupActive && !allowDuplicate {
		return nil, ErrDuplicateSubmission
	}

	if g.cfg.Cooldown > 0 {
		g.entries[cooldownKey] = now.Add(g.cfg.Cooldown)
	}
	// A confirmed duplicate keeps the window of the order it repeats.
	createdDup := g.cfg.DuplicateWindow > 0 && !dupActive
	if createdDup {
		g.entries[dupKey] = now.Add(g.cfg.DuplicateWindow)
	}

	release := func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.entries, cooldownKey)
		if createdDup {
			delete(g.entries, dupKey)
		}
	}
	return release, nil
}

// RedisSubmissionGuard keeps guard state in Redis so every server instance shares it.
type RedisSubmissionGuard struct {
	rdb redis.UniversalClient
	cfg GuardConfig
}

// NewRedisSubmissionGuard creates a Redis backed guard.
func NewRedisSubmissionGuard(rdb redis.UniversalClient, cfg GuardConfig) *RedisSubmissionGuard {
	return &RedisSubmissionGuard{rdb: rdb, cfg: cfg}
}

var _ SubmissionGuard = (*RedisSubmissionGuard)(nil)

func (g *RedisSubmissionGuard) Acquire(ctx context.Context, client, fingerprint string, allowDuplicate bool) (func(), error) {
	cooldownKey := cooldownKey(client)
	dupKey := duplicateKey(client, fingerprint)

	if g.cfg.Cooldown > 0 {
		ok, err := g.rdb.SetNX(ctx, cooldownKey, 1, g.cfg.Cooldown).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to set submission cooldown: %w", err)
		}
		if !ok {
			ttl, err := g.rdb.PTTL(ctx, cooldownKey).Result()
			if err != nil || ttl <= 0 {
				ttl = g.cfg.Cooldown
			}
			return nil, &CooldownError{RetryAfter: ttl}
		}
	}

	createdDup := false
	if g.cfg.DuplicateWindow > 0 {
		ok, err := g.rdb.SetNX(ctx, dupKey, 1, g.cfg.DuplicateWindow).Result()
		if err != nil {
			g.undo(client, cooldownKey)
			return nil, fmt.Errorf("failed to record submission: %w", err)
		}
		createdDup = ok
		if !ok && !allowDuplicate {
			// A rejected duplicate leaves no trace, so the confirmed retry is not held by the cooldown.
			g.undo(client, cooldownKey)
			return nil, ErrDuplicateSubmission
		}
	}

	release := func() {
		keys := []string{cooldownKey}
		if createdDup {
			keys = append(keys, dupKey)
		}
		g.undo(client, keys...)
	}
	return release, nil
}

// undo deletes guard keys. It runs after the request context may be done.
func (g *RedisSubmissionGuard) undo(client string, keys ...string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.rdb.Del(ctx, keys...).Err(); err != nil {
		zap.S().Warnf("⚠️ SubmissionGuard: release failed for client=%s: %v", client, err)
	}
}

func cooldownKey(client string) string {
	return "order:guard:cooldown:" + client
}

func duplicateKey(client, fingerprint string) string {
	return "order:guard:dup:" + client + ":" + fingerprint
}
