package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRedisLimiter creates a new rate limiter instance
func NewRedisLimiter(redisClient *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		redis:  redisClient,
		config: config,
	}
}

// Allow increments the counter of key's current window.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: max(rl.config.Limit-count, 0),
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is a per-key token bucket kept in process memory. It is used
// when Redis is not configured; limits are then per instance.
type LocalLimiter struct {
	config   RateLimitConfig
	every    rate.Limit
	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	lookups  uint64
}

// NewLocalLimiter refills Limit tokens evenly over Window.
func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	limit := max(config.Limit, 1)
	return &LocalLimiter{
		config:   config,
		every:    rate.Every(config.Window / time.Duration(limit)),
		visitors: make(map[string]*visitor),
		ttl:      config.Window,
	}
}

// Allow takes one token from key's bucket.
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := time.Now()
	lim := l.visitor(key, now)
	allowed := lim.AllowN(now, 1)
	return Decision{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: max(int(lim.TokensAt(now)), 0),
		Reset:     now.Add(time.Duration(float64(time.Second) / float64(l.every))),
	}, nil
}

func (l *LocalLimiter) visitor(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Evict idle buckets now and then so the map stays bounded.
	l.lookups++
	if l.lookups >= 5000 {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.ttl {
				delete(l.visitors, k)
			}
		}
		l.lookups = 0
	}

	if v, ok := l.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(l.every, max(l.config.Limit, 1))
	l.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// NewRecipeCreationLimiter limits recipe creation to perHour per user. It uses
// Redis when a client is given and an in-process limiter otherwise.
func NewRecipeCreationLimiter(redisClient *redis.Client, perHour int) Limiter {
	cfg := RateLimitConfig{
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: "rate_limit:recipe_creation",
	}
	if redisClient == nil {
		return NewLocalLimiter(cfg)
	}
	return NewRedisLimiter(redisClient, cfg)
}

// RateLimit enforces limiter per authenticated user, falling back to the
// client IP. Limiter failures are logged and the request is let through.
// A nil limiter disables the check.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if id := CurrentUserID(c); id != 0 {
			key = "user:" + strconv.FormatUint(uint64(id), 10)
		}

		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			retry := max(int(time.Until(d.Reset).Seconds()), 1)
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "rate_limited",
				"message":    "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
