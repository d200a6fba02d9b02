// concurrency/semaphore.go
package concurrency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPermitTimeout is returned when no permit became free within the acquire timeout.
var ErrPermitTimeout = errors.New("timed out waiting for a concurrency permit")

// AcquireConcurrencyPermit blocks until a permit is free, the acquire timeout elapses or
// ctx ends. On success the returned context carries a fresh request ID that must be
// passed to ReleaseConcurrencyPermit. When ctx ends first its error is returned
// unchanged so callers can tell cancellation apart from ErrPermitTimeout.
func (ch *ConcurrencyHandler) AcquireConcurrencyPermit(ctx context.Context) (context.Context, uuid.UUID, error) {
	start := time.Now()
	requestID := uuid.New()

	waitCtx := ctx
	if ch.acquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, ch.acquireTimeout)
		defer cancel()
	}

	if err := ch.sem.Acquire(waitCtx, 1); err != nil {
		ch.Metrics.Lock.Lock()
		defer ch.Metrics.Lock.Unlock()
		if ctxErr := ctx.Err(); ctxErr != nil {
			ch.Metrics.TotalCancelled++
			return ctx, requestID, ctxErr
		}
		ch.Metrics.TotalTimeouts++
		ch.logger.Warn("Failed to acquire concurrency permit", zap.Duration("Timeout", ch.acquireTimeout))
		return ctx, requestID, ErrPermitTimeout
	}

	ch.held.Store(requestID, struct{}{})
	inFlight := ch.inFlight.Add(1)
	wait := time.Since(start)
	ch.Metrics.Lock.Lock()
	ch.Metrics.PermitWaitTime += wait
	ch.Metrics.TotalRequests++
	ch.Metrics.Lock.Unlock()

	ch.logger.Debug("Acquired concurrency permit",
		zap.String("RequestID", requestID.String()),
		zap.Duration("AcquisitionTime", wait),
		zap.Int64("UtilizedPermits", inFlight),
		zap.Int64("AvailablePermits", int64(ch.limit)-inFlight),
	)
	return context.WithValue(ctx, RequestIDKey{}, requestID), requestID, nil
}

// ReleaseConcurrencyPermit returns the permit granted under requestID to the pool.
// Unknown or already released IDs are logged and ignored.
func (ch *ConcurrencyHandler) ReleaseConcurrencyPermit(requestID uuid.UUID) {
	if _, ok := ch.held.LoadAndDelete(requestID); !ok {
		ch.logger.Warn("Ignoring release of a permit that is not held", zap.String("RequestID", requestID.String()))
		return
	}
	inFlight := ch.inFlight.Add(-1)
	ch.sem.Release(1)

	ch.logger.Debug("Released concurrency permit",
		zap.String("RequestID", requestID.String()),
		zap.Int64("UtilizedPermits", inFlight),
		zap.Int64("AvailablePermits", int64(ch.limit)-inFlight),
	)
}
