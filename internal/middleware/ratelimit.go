// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter hands out per-route limits keyed by client IP. Counters live
// in Redis; when Redis is unreachable (or absent) an in-process token bucket
// takes over so the limit still applies per instance.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	rl := &RateLimiter{fallback: newLocalLimiter()}
	if rdb != nil {
		rl.limiter = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Close() {
	rl.fallback.stop()
}

// Route limits requests to a single named route. Two routes never share a
// counter even for the same client.
func (rl *RateLimiter) Route(
	name string,
	limit redis_rate.Limit,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := routeKey(name, ClientIP(r))

			res := rl.allow(r.Context(), key, limit)

			setRateLimitHeaders(w, res, limit)

			if res.Allowed == 0 {
				slog.WarnContext(r.Context(), "rate limit exceeded",
					"route", name,
					"key", key,
				)
				writeRateLimitExceeded(w, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) *redis_rate.Result {
	if rl.limiter != nil {
		res, err := rl.limiter.Allow(ctx, key, limit)
		if err == nil {
			return res
		}
		slog.WarnContext(ctx, "redis rate limiter unavailable, using local limiter",
			"error", err,
		)
	}
	return rl.fallback.allow(key, limit)
}

func routeKey(route, ip string) string {
	return "ratelimit:" + route + ":ip:" + ip
}

// ClientIP returns the address the request is attributed to. The last
// X-Forwarded-For hop is the one appended by our own proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := int(res.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	response := map[string]any{
		"success": false,
		"error": map[string]any{
			"code": "RATE_LIMITED",
			"message": fmt.Sprintf(
				"too many requests, retry after %d seconds",
				retryAfter,
			),
		},
	}

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(response)
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type localLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	done     chan struct{}
	once     sync.Once
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{
		limiters: make(map[string]*limiterEntry),
		done:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *localLimiter) stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			cutoff := now.Add(-entryTTL)
			l.mu.Lock()
			for key, entry := range l.limiters {
				if entry.lastAccess.Before(cutoff) {
					delete(l.limiters, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
) *redis_rate.Result {
	interval := limit.Period / time.Duration(limit.Rate)
	now := time.Now()

	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(interval), limit.Burst),
		}
		l.limiters[key] = entry
	}
	entry.lastAccess = now
	allowed := entry.limiter.AllowN(now, 1)
	remaining := int(entry.limiter.TokensAt(now))
	l.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  max(remaining, 0),
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}

	return res
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Minute,
	}
}

// PerWindow spreads rate requests over window, allowing all of them as a
// burst. This matches a fixed "n per window" policy.
func PerWindow(rate int, window time.Duration) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  rate,
		Period: window,
	}
}
