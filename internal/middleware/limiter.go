package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"foodzz/internal/auth"
	"foodzz/internal/metrics"

	"golang.org/x/time/rate"
)

// tier is one rate policy. Each identity gets its own bucket per tier.
type tier struct {
	name  string
	limit rate.Limit
	burst int
}

var (
	// login and checkout
	tierStrict = tier{name: "strict", limit: 2, burst: 5}
	// storefront browsing
	tierGeneral = tier{name: "general", limit: 10, burst: 20}
	// dashboard polling every few seconds plus actions
	tierAdmin = tier{name: "admin", limit: 20, burst: 40}
	// callers presenting INTERNAL_SECRET_KEY
	tierInternal = tier{name: "internal", limit: 100, burst: 200}
)

const visitorTTL = 3 * time.Minute

var strictPaths = map[string]bool{
	"/api/admin/login": true,
	"/api/checkout":    true,
}

// Probes are never limited.
var exemptPaths = map[string]bool{
	"/api/health": true,
	"/metrics":    true,
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per identity and tier.
type RateLimiter struct {
	internalKey string

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter(internalKey string) *RateLimiter {
	return &RateLimiter{
		internalKey: internalKey,
		visitors:    make(map[string]*visitor),
		now:         time.Now,
	}
}

// Cleanup drops idle visitors every minute until ctx is done.
func (l *RateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evict(l.now())
		}
	}
}

func (l *RateLimiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *RateLimiter) bucket(key string, t tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Middleware rejects requests over their tier's rate with 429 and a
// Retry-After hint in whole seconds.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if exemptPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		t := l.resolveTier(r)
		lim := l.bucket(identity(r)+":"+t.name, t)

		res := lim.ReserveN(l.now(), 1)
		if delay := res.DelayFrom(l.now()); delay > 0 {
			res.Cancel()
			metrics.RateLimited.WithLabelValues(t.name).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identity prefers the signed-in user, then the client's device id, then
// the remote IP.
func identity(r *http.Request) string {
	if claims, ok := auth.ClaimsFrom(r.Context()); ok {
		return "user:" + claims.Username
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

func (l *RateLimiter) resolveTier(r *http.Request) tier {
	if l.internalKey != "" && r.Header.Get("X-Service-Auth") == l.internalKey {
		return tierInternal
	}
	if strictPaths[r.URL.Path] {
		return tierStrict
	}
	if claims, ok := auth.ClaimsFrom(r.Context()); ok && claims.IsAdmin() {
		return tierAdmin
	}
	return tierGeneral
}
