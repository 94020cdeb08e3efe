package middleware

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned for calls rejected by RateLimit.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimit rejects invocations beyond r calls per second with the given
// burst, using a token bucket shared across all calls.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *Call) *Result {
			if !limiter.Allow() {
				return &Result{Err: ErrRateLimited}
			}
			return next(ctx, call)
		}
	}
}
