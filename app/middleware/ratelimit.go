package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"print-shop-mis/metrics"
	"print-shop-mis/utils"
)

// LimiterStore is a token-bucket limiter per client key with idle eviction.
type LimiterStore struct {
	mu           sync.Mutex
	entries      map[string]*limiterEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// StoreOption configures a LimiterStore.
type StoreOption func(*LimiterStore)

// WithIdleTTL sets how long a key may stay unused before Cleanup drops it.
func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *LimiterStore) { s.idleTTL = d }
}

// WithCleanupEvery sets the janitor interval.
func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *LimiterStore) { s.cleanupEvery = d }
}

// NewLimiterStore returns a store handing out rps/burst token buckets, idle for 15m and swept every 2m
// unless overridden.
func NewLimiterStore(rps float64, burst int, opts ...StoreOption) *LimiterStore {
	s := &LimiterStore{
		entries:      make(map[string]*limiterEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LimiterStore) RPS() float64 { return float64(s.rps) }
func (s *LimiterStore) Burst() int   { return s.burst }

// Get returns the limiter of key, creating it on first use.
func (s *LimiterStore) Get(key string) *rate.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

// Len reports how many keys are tracked.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops keys idle for longer than the idle TTL.
func (s *LimiterStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is done.
func (s *LimiterStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// KeyFunc extracts the client key of a request.
type KeyFunc func(r *http.Request) string

// DefaultKeyFunc keys by the first X-Forwarded-For address when trusted, else by the remote host.
func DefaultKeyFunc(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// RateLimitOptions configures RateLimit. A nil KeyFn keys by remote host.
type RateLimitOptions struct {
	Store *LimiterStore
	KeyFn KeyFunc
	// MinRetryAfter is the smallest Retry-After sent on rejection.
	MinRetryAfter time.Duration
}

// RateLimit answers 429 with Retry-After once a client exhausts its bucket. The client key is
// stored in the request context.
func RateLimit(opts RateLimitOptions) Middleware {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(false)
	}
	if opts.MinRetryAfter <= 0 {
		opts.MinRetryAfter = time.Second
	}
	rps := strconv.FormatFloat(opts.Store.RPS(), 'f', -1, 64)
	burst := strconv.Itoa(opts.Store.Burst())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			h := w.Header()
			h.Set("X-RateLimit-Key", key)
			h.Set("X-RateLimit-RPS", rps)
			h.Set("X-RateLimit-Burst", burst)

			lim := opts.Store.Get(key)
			if !lim.Allow() {
				wait := retryAfter(lim, opts.MinRetryAfter)
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				metrics.RateLimited()
				utils.WriteError(w, http.StatusTooManyRequests, "Too many requests", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKeyKey, key)))
		})
	}
}

// retryAfter estimates when the next token is available without consuming it.
func retryAfter(lim *rate.Limiter, floor time.Duration) time.Duration {
	now := time.Now()
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return floor
	}
	wait := res.DelayFrom(now)
	res.CancelAt(now)
	if wait < floor {
		return floor
	}
	return wait
}
