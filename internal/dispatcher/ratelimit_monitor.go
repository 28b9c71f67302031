package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("dispatcher: rate limited")

type RateLimitBucket struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// RateLimitMonitor combines a local token bucket with the per-route buckets
// the API reports in its X-RateLimit headers.
type RateLimitMonitor struct {
	mu      sync.RWMutex
	buckets map[string]*RateLimitBucket
	limiter *rate.Limiter
	now     func() time.Time
}

func NewRateLimitMonitor(requestsPerSec float64) *RateLimitMonitor {
	if requestsPerSec <= 0 {
		requestsPerSec = 5
	}
	burst := int(requestsPerSec)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitMonitor{
		buckets: make(map[string]*RateLimitBucket),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), burst),
		now:     time.Now,
	}
}

// Wait blocks until the local limiter admits one request.
func (rlm *RateLimitMonitor) Wait(ctx context.Context) error {
	return rlm.limiter.Wait(ctx)
}

// ResetIn is how long until the route's last known bucket has room again.
// Zero means a request may go out now.
func (rlm *RateLimitMonitor) ResetIn(route, guildID string) time.Duration {
	bucket := rlm.GetBucket(route, guildID)
	if bucket == nil || bucket.Remaining > 0 {
		return 0
	}
	if wait := bucket.ResetAt.Sub(rlm.now()); wait > 0 {
		return wait
	}
	return 0
}

// WaitBucket blocks until the route's bucket resets. It fails with
// ErrRateLimited at once when ctx would expire before the reset.
func (rlm *RateLimitMonitor) WaitBucket(ctx context.Context, route, guildID string) error {
	wait := rlm.ResetIn(route, guildID)
	if wait <= 0 {
		return nil
	}
	if deadline, ok := ctx.Deadline(); ok && deadline.Before(rlm.now().Add(wait)) {
		return fmt.Errorf("%w: %s resets in %s", ErrRateLimited, route, wait)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rlm *RateLimitMonitor) UpdateFromFastHTTPResponse(resp *fasthttp.Response, route, guildID string) {
	remaining := string(resp.Header.Peek("X-RateLimit-Remaining"))
	limit := string(resp.Header.Peek("X-RateLimit-Limit"))
	reset := string(resp.Header.Peek("X-RateLimit-Reset"))
	retryAfter := string(resp.Header.Peek("Retry-After"))

	if remaining == "" && limit == "" && reset == "" && retryAfter == "" {
		return
	}

	bucket := &RateLimitBucket{}
	if remaining != "" {
		bucket.Remaining, _ = strconv.Atoi(remaining)
	}
	if limit != "" {
		bucket.Limit, _ = strconv.Atoi(limit)
	}
	if reset != "" {
		// seconds since epoch, possibly fractional
		if resetAt, err := strconv.ParseFloat(reset, 64); err == nil {
			bucket.ResetAt = time.UnixMilli(int64(resetAt * 1000))
		}
	}
	if retryAfter != "" && resp.StatusCode() == fasthttp.StatusTooManyRequests {
		if secs, err := strconv.ParseFloat(retryAfter, 64); err == nil {
			bucket.Remaining = 0
			bucket.ResetAt = rlm.now().Add(time.Duration(secs * float64(time.Second)))
		}
	}

	rlm.mu.Lock()
	rlm.buckets[rlm.getKey(route, guildID)] = bucket
	rlm.mu.Unlock()
}

func (rlm *RateLimitMonitor) GetBucket(route, guildID string) *RateLimitBucket {
	rlm.mu.RLock()
	defer rlm.mu.RUnlock()

	bucket, ok := rlm.buckets[rlm.getKey(route, guildID)]
	if !ok {
		return nil
	}
	cp := *bucket
	return &cp
}

func (rlm *RateLimitMonitor) getKey(route, guildID string) string {
	return route + ":" + guildID
}
