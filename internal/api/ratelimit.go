package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/synopsis/internal/logging"
)

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// tokenBucket implements a token bucket rate limiter.
type tokenBucket struct {
	tokens         float64
	capacity       float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	mu             sync.Mutex
}

func newTokenBucket(capacity, refillRate float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:         capacity,
		capacity:       capacity,
		refillRate:     refillRate,
		lastRefillTime: now,
	}
}

// level returns the token count at now without consuming. Callers hold mu.
func (tb *tokenBucket) level(now time.Time) float64 {
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	return min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
}

// allow takes a token if one is available.
func (tb *tokenBucket) allow(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.level(now)
	tb.lastRefillTime = now
	if tb.tokens >= 1.0 {
		tb.tokens--
		return true
	}
	return false
}

func (tb *tokenBucket) remaining(now time.Time) int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return int(tb.level(now))
}

// reset returns the time when the bucket will be full again.
func (tb *tokenBucket) reset(now time.Time) time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tokens := tb.level(now)
	if tokens >= tb.capacity || tb.refillRate <= 0 {
		return now
	}
	secondsUntilFull := (tb.capacity - tokens) / tb.refillRate
	return now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
}

func (tb *tokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefillTime
}

// RateLimiter manages per-client rate limiting.
type RateLimiter struct {
	buckets    map[string]*tokenBucket
	config     RateLimiterConfig
	mu         sync.RWMutex
	cleanupTTL time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewRateLimiter creates a rate limiter and starts its idle-bucket sweeper.
// Call Close to stop the sweeper.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.BurstSize <= 0 {
		config.BurstSize = 10
	}
	rl := &RateLimiter{
		buckets:    make(map[string]*tokenBucket),
		config:     config,
		cleanupTTL: 5 * time.Minute,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Close stops the sweeper.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) getBucket(client string) *tokenBucket {
	rl.mu.RLock()
	bucket, exists := rl.buckets[client]
	rl.mu.RUnlock()
	if exists {
		return bucket
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if bucket, exists := rl.buckets[client]; exists {
		return bucket
	}
	refillRate := float64(rl.config.RequestsPerMinute) / 60.0
	bucket = newTokenBucket(float64(rl.config.BurstSize), refillRate, rl.now())
	rl.buckets[client] = bucket
	return bucket
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops buckets idle for longer than the cleanup TTL.
func (rl *RateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	n := 0
	for client, bucket := range rl.buckets {
		if now.Sub(bucket.idleSince()) > rl.cleanupTTL {
			delete(rl.buckets, client)
			n++
		}
	}
	return n
}

// Allow reports whether a request from client is allowed and consumes a
// token if so.
func (rl *RateLimiter) Allow(client string) bool {
	return rl.getBucket(client).allow(rl.now())
}

// Remaining returns the number of requests client may still make at once.
func (rl *RateLimiter) Remaining(client string) int {
	return rl.getBucket(client).remaining(rl.now())
}

// Middleware rejects requests over the limit with 429 and sets the
// X-RateLimit-* headers on every response.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := getClientIP(r)
		bucket := rl.getBucket(client)
		now := rl.now()
		reset := bucket.reset(now)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.RequestsPerMinute))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(bucket.remaining(now)))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !bucket.allow(now) {
			retryAfter := int(reset.Sub(now).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			logging.WarnContext(r.Context(), "rate_limited", "client", client, "path", r.URL.Path)
			respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"rate limit exceeded, retry in "+strconv.Itoa(retryAfter)+"s")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getClientIP returns the leftmost valid X-Forwarded-For address, then
// X-Real-IP, then the host of RemoteAddr.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); isValidIP(ip) {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); isValidIP(realIP) {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if isValidIP(ip) {
		return ip
	}
	return "unknown"
}

func isValidIP(s string) bool {
	return net.ParseIP(s) != nil
}
