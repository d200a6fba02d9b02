// ratehandler/ratehandler.go
// Package ratehandler paces outgoing requests so one client never exceeds a configured
// request rate against the backend. It only delays requests; nothing is retried.
package ratehandler

import (
	"context"
	"fmt"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter wraps a token bucket shared by every request of a client.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewRateLimiter allows requestsPerSecond on average with bursts of up to burst
// requests. A burst below 1 is raised to 1.
func NewRateLimiter(requestsPerSecond float64, burst int, log logger.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		logger:  log,
	}
}

// Wait blocks until the next request may be sent or ctx ends. When ctx ends first its
// error is returned unchanged.
func (r *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// The limiter refuses up front when ctx's deadline would pass before a token frees.
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		r.logger.Debug("Request delayed by rate limiter", zap.Duration("waited", waited))
	}
	return nil
}

// Limit returns the configured requests per second.
func (r *RateLimiter) Limit() float64 {
	return float64(r.limiter.Limit())
}

// Burst returns the configured burst size.
func (r *RateLimiter) Burst() int {
	return r.limiter.Burst()
}
