package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter admits a request or reports how long the caller should wait.
type rateLimiter interface {
	Admit() (ok bool, retryAfter time.Duration)
}

type tokenBucket struct {
	bucket *rate.Limiter
	now    func() time.Time
}

// newTokenBucketLimiter builds a limiter refilling ratePerSecond tokens up to
// burst. Non-positive arguments are raised to 1.
func newTokenBucketLimiter(ratePerSecond float64, burst int) *tokenBucket {
	return &tokenBucket{
		bucket: rate.NewLimiter(rate.Limit(math.Max(ratePerSecond, 1)), max(burst, 1)),
		now:    time.Now,
	}
}

func (b *tokenBucket) Admit() (bool, time.Duration) {
	now := b.now()
	res := b.bucket.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	// The token is only borrowed when the request is turned away.
	res.CancelAt(now)
	return false, delay
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := limiter.Admit()
		if ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", retryAfterSeconds(wait))
		writeError(w, http.StatusTooManyRequests, "Too many requests",
			"rate limit exceeded", "retry after "+wait.Round(time.Millisecond).String())
	})
}

// retryAfterSeconds renders a wait as whole seconds, never less than one.
func retryAfterSeconds(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	return strconv.Itoa(max(secs, 1))
}
