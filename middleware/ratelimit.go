package middleware

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/AliNMackie/blackcard-concierge-ai/pkg/appenv"
	"github.com/AliNMackie/blackcard-concierge-ai/types"
)

// limiterEntry holds a rate limiter and the last time it was seen.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore is a threadsafe store mapping keys (subject or IP) to
// limiter entries. A background janitor removes stale entries to avoid
// unbounded memory growth.
type limiterStore struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	staleAfter time.Duration
}

func newLimiterStore(staleAfter time.Duration) *limiterStore {
	store := &limiterStore{
		entries:    make(map[string]*limiterEntry),
		staleAfter: staleAfter,
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			store.cleanup()
		}
	}()
	return store
}

func (s *limiterStore) getOrCreate(key string, r rate.Limit, burst int) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.lastSeen = time.Now()
		return e.limiter
	}
	lim := rate.NewLimiter(r, burst)
	s.entries[key] = &limiterEntry{limiter: lim, lastSeen: time.Now()}
	return lim
}

func (s *limiterStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.staleAfter)
	for k, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// parseEnvRate reads RATE_LIMIT_RPS and RATE_LIMIT_BURST or returns defaults.
func parseEnvRate() (rate.Limit, int) {
	rps := 10.0
	burst := 30
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rps = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			burst = i
		}
	}
	return rate.Limit(rps), burst
}

// rateLimitDisabled returns true when limiting should be off, e.g. in tests
// where a polling client legitimately hammers the feed endpoint.
func rateLimitDisabled() bool {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED"))); v == "0" || v == "false" || v == "no" {
		return true
	}
	return appenv.IsTest()
}

// RateLimitMiddleware performs per-subject (when authenticated) or per-IP
// token bucket limiting. Preflight and /health are exempt.
func RateLimitMiddleware() gin.HandlerFunc {
	if rateLimitDisabled() {
		return func(c *gin.Context) { c.Next() }
	}

	r, burst := parseEnvRate()
	store := newLimiterStore(10 * time.Minute)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if subject := c.GetString("subjectId"); subject != "" {
			key = "sub:" + subject
		}

		lim := store.getOrCreate(key, r, burst)
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, types.NewError("Too many requests"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimitAuthMiddleware applies a stricter per-IP limit on the auth
// endpoints, independent of the global limiter, so credential stuffing
// cannot hide inside the general budget.
func RateLimitAuthMiddleware() gin.HandlerFunc {
	if rateLimitDisabled() {
		return func(c *gin.Context) { c.Next() }
	}
	store := newLimiterStore(10 * time.Minute)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		lim := store.getOrCreate("auth:"+c.ClientIP(), rate.Limit(1.0), 5)
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, types.NewError("Too many requests"))
			c.Abort()
			return
		}
		c.Next()
	}
}
