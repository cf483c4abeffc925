package httpapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// loginRateLimiter counts failed login responses per client IP in fixed
// windows. Successful logins are not counted.
type loginRateLimiter struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	attempts    map[string]*attemptRecord
	now         func() time.Time
}

type attemptRecord struct {
	failures    int
	windowStart time.Time
}

func newLoginRateLimiter(maxFailures int, window time.Duration) *loginRateLimiter {
	return &loginRateLimiter{
		maxFailures: maxFailures,
		window:      window,
		attempts:    make(map[string]*attemptRecord),
		now:         time.Now,
	}
}

// check returns true if ip has used up its failures in the current window,
// along with how long until the window resets.
func (rl *loginRateLimiter) check(ip string) (blocked bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.attempts[ip]
	if !ok {
		return false, 0
	}
	end := rec.windowStart.Add(rl.window)
	if !rl.now().Before(end) {
		delete(rl.attempts, ip)
		return false, 0
	}
	if rec.failures >= rl.maxFailures {
		return true, end.Sub(rl.now())
	}
	return false, 0
}

func (rl *loginRateLimiter) recordFailure(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rec, ok := rl.attempts[ip]
	if !ok || !now.Before(rec.windowStart.Add(rl.window)) {
		rec = &attemptRecord{windowStart: now}
		rl.attempts[ip] = rec
	}
	rec.failures++
}

// sweep removes records whose window has ended.
func (rl *loginRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, rec := range rl.attempts {
		if !now.Before(rec.windowStart.Add(rl.window)) {
			delete(rl.attempts, ip)
		}
	}
}

// middleware rejects blocked clients with 429 and records every non-2xx
// response as a failure.
func (rl *loginRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if blocked, retryAfter := rl.check(ip); blocked {
			w.Header().Set("Retry-After", retryAfterString(retryAfter))
			writeError(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if ww.Status() >= http.StatusBadRequest {
			rl.recordFailure(ip)
		}
	})
}

func retryAfterString(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// apiRateLimit limits every client IP to requests per window.
func apiRateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Too many requests from this IP, try again later")
		}),
	)
}
