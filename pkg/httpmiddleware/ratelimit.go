package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures Limiter.
type RateLimitConfig struct {
	// Max requests per key in any sliding Window. A non-positive Max or
	// Window disables limiting.
	Max    int
	Window time.Duration
	// KeyFunc picks the bucket for a request; ClientIP when nil.
	KeyFunc func(*http.Request) string
}

// Decision is the outcome of one Limiter.Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// window counts hits in the current and the previous fixed window. The
// previous count is weighted by its overlap with the sliding window.
type window struct {
	start time.Time
	curr  float64
	prev  float64
}

// Limiter is a per-key sliding window rate limiter.
type Limiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// NewLimiter creates a Limiter. Call Run to evict idle keys.
func NewLimiter(cfg RateLimitConfig) *Limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	return &Limiter{
		cfg:     cfg,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow records a hit for key if it fits in the limit.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		w = &window{start: now.Truncate(l.cfg.Window)}
		l.windows[key] = w
	}
	switch elapsed := now.Sub(w.start); {
	case elapsed >= 2*l.cfg.Window:
		w.start, w.prev, w.curr = now.Truncate(l.cfg.Window), 0, 0
	case elapsed >= l.cfg.Window:
		w.start, w.prev, w.curr = w.start.Add(l.cfg.Window), w.curr, 0
	}

	overlap := 1 - float64(now.Sub(w.start))/float64(l.cfg.Window)
	used := w.prev*max(overlap, 0) + w.curr
	limit := float64(l.cfg.Max)
	d := Decision{ResetAt: w.start.Add(l.cfg.Window)}
	if used >= limit {
		return d
	}

	w.curr++
	d.Allowed = true
	d.Remaining = max(int(limit-used-1), 0)
	return d
}

// Run evicts idle keys every two windows until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	if !l.enabled() {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(2 * l.cfg.Window)
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

func (l *Limiter) enabled() bool {
	return l.cfg.Max > 0 && l.cfg.Window > 0
}

func (l *Limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if now.Sub(w.start) >= 2*l.cfg.Window {
			delete(l.windows, key)
		}
	}
}

// Middleware rejects requests over the limit with 429. Every response carries
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset.
func (l *Limiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		if !l.enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.Allow(l.cfg.KeyFunc(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				wait := max(d.ResetAt.Sub(l.now()), 0)
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP is the first X-Forwarded-For hop, then X-Real-IP, then the
// remote host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
