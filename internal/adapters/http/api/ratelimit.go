// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/celest/pkg/metrics"
)

// Rate limiter defaults.
const (
	defaultLimiterIdle  = 10 * time.Minute
	defaultLimiterSweep = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket keyed by remote IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

// RateLimiterOption applies a configuration option to the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithIdleTimeout sets how long an unused client bucket is kept.
func WithIdleTimeout(d time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		if d > 0 {
			rl.idle = d
		}
	}
}

// NewRateLimiter creates a limiter allowing rps requests per second per
// client with the given burst.
func NewRateLimiter(rps float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		idle:     defaultLimiterIdle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow reports whether the client identified by key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = rl.now()
	rl.mu.Unlock()
	return cl.limiter.Allow()
}

// Middleware rejects requests over the client's budget with 429.
func (rl *RateLimiter) Middleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientKey(r)) {
			metrics.RecordRateLimited(endpoint)
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
			return
		}
		next(w, r)
	}
}

func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.rate <= 0 {
		return 1
	}
	return max(1, int(1/float64(rl.rate)+0.5))
}

// Sweep drops client buckets idle for longer than the idle timeout and
// returns how many remain.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.idle)
	for key, cl := range rl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
	return len(rl.limiters)
}

// StartSweeper sweeps idle buckets every minute until ctx is done.
func (rl *RateLimiter) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(defaultLimiterSweep)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Sweep()
			}
		}
	}()
}

// clientKey identifies the caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
