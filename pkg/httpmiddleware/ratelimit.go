package httpmiddleware

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window.
	Max int
	// Window is the sliding window duration.
	Window time.Duration
	// KeyFunc derives the limiter key from a request. Defaults to the
	// client IP.
	KeyFunc func(*http.Request) string
}

// bucket counts requests in the current window and remembers the previous
// window's count for the sliding-window estimate.
type bucket struct {
	prev      float64
	count     float64
	windowAt  time.Time
	prevStart time.Time
}

type limiter struct {
	max     float64
	window  time.Duration
	keyFunc func(*http.Request) string

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIP
	}
	return &limiter{
		max:     float64(cfg.Max),
		window:  cfg.Window,
		keyFunc: keyFunc,
		buckets: make(map[string]*bucket),
	}
}

// take consumes one request slot for key. The estimate weighs the previous
// window's count by how much of it still overlaps the sliding window, which
// smooths the burst a fixed-window counter lets through at window edges.
func (l *limiter) take(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, found := l.buckets[key]
	if !found {
		b = &bucket{windowAt: now}
		l.buckets[key] = b
	}

	if now.Sub(b.windowAt) >= l.window {
		b.prev = b.count
		b.prevStart = b.windowAt
		b.count = 0
		b.windowAt = now.Truncate(l.window)
		if now.Sub(b.prevStart) >= 2*l.window {
			b.prev = 0
		}
	}

	overlap := 1.0 - now.Sub(b.windowAt).Seconds()/l.window.Seconds()
	if overlap < 0 {
		overlap = 0
	}
	estimate := b.prev*overlap + b.count
	resetAt = b.windowAt.Add(l.window)

	if estimate >= l.max {
		return 0, resetAt, false
	}

	b.count++
	remaining = int(l.max - estimate - 1)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetAt, true
}

// evict drops buckets idle for two full windows.
func (l *limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.windowAt) >= 2*l.window {
			delete(l.buckets, key)
		}
	}
}

// RateLimit returns a sliding-window rate limit middleware. Responses carry
// X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset; rejected
// requests get 429 with Retry-After and a JSON body. Stale buckets are never
// evicted; use RateLimitWithCleanup for long-running servers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiter(cfg).middleware()
}

// RateLimitWithCleanup is RateLimit plus a background goroutine evicting
// stale buckets every two windows. The goroutine exits when ctx is
// cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(2 * l.window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evict(now)
			}
		}
	}()
	return l.middleware()
}

func (l *limiter) middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.take(l.keyFunc(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(int(l.max)))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retryAfter := math.Ceil(math.Max(time.Until(resetAt).Seconds(), 0))
				h.Set("Retry-After", strconv.Itoa(int(retryAfter)))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    http.StatusTooManyRequests,
					"message": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the caller's address, trusting X-Forwarded-For and
// X-Real-IP before falling back to the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
