package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/handlers"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/logging"
)

// windowCounter increments key and returns the count within the current window.
type windowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	client *redis.Client
}

func (c redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimiter is a fixed-window limiter shared across instances through Redis.
// It fails open when Redis is unavailable.
type RateLimiter struct {
	counter windowCounter
	limit   int
	window  time.Duration
	prefix  string
	now     func() time.Time
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RateLimiter {
	rl := &RateLimiter{limit: limit, window: window, prefix: prefix, now: time.Now}
	if client != nil {
		rl.counter = redisCounter{client: client}
	}
	return rl
}

// NewAuthRateLimiter guards login and registration.
func NewAuthRateLimiter(client *redis.Client) *RateLimiter {
	return NewRateLimiter(client, 10, time.Minute, "ratelimit:auth")
}

func NewAPIRateLimiter(client *redis.Client) *RateLimiter {
	return NewRateLimiter(client, 300, time.Minute, "ratelimit:api")
}

// rateKey prefers the authenticated user over the client address.
func rateKey(r *http.Request) string {
	if user := handlers.GetUserFromContext(r.Context()); user != nil {
		return "user:" + user.ID.String()
	}
	return "ip:" + getClientIP(r)
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.counter == nil {
			next.ServeHTTP(w, r)
			return
		}

		now := rl.now()
		windowStart := now.Truncate(rl.window)
		reset := windowStart.Add(rl.window)
		key := rl.prefix + ":" + rateKey(r) + ":" + strconv.FormatInt(windowStart.Unix(), 10)

		count, err := rl.counter.Incr(r.Context(), key, rl.window)
		if err != nil {
			logging.Warn("Rate limiter unavailable", map[string]interface{}{"error": err.Error(), "prefix": rl.prefix})
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if int(count) > rl.limit {
			retry := int(reset.Sub(now).Seconds())
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
