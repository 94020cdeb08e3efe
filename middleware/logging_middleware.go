package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Logging logs each invocation's command name, duration, and error if any.
func Logging(logger zerolog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *Call) *Result {
			start := time.Now()
			result := next(ctx, call)
			if result.Err != nil {
				logger.Warn().Err(result.Err).
					Str("command", call.Command).
					Dur("duration", time.Since(start)).
					Msg("command failed")
			} else {
				logger.Debug().
					Str("command", call.Command).
					Dur("duration", time.Since(start)).
					Msg("command dispatched")
			}
			return result
		}
	}
}
