// concurrency/handler.go
package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyHandler caps the number of in-flight requests issued by one client.
type ConcurrencyHandler struct {
	sem            *semaphore.Weighted
	limit          int
	inFlight       atomic.Int64
	held           sync.Map // request IDs of granted permits
	logger         logger.Logger
	acquireTimeout time.Duration
	Metrics        *ConcurrencyMetrics
}

// ConcurrencyMetrics captures request counts and timings observed through the handler.
type ConcurrencyMetrics struct {
	TotalRequests  int64         // Permits granted
	TotalTimeouts  int64         // Permit waits that gave up before a slot freed
	TotalCancelled int64         // Permit waits abandoned because the caller's context ended
	PermitWaitTime time.Duration // Total time spent waiting for permits
	ResponseTime   time.Duration // Total time between permit grant and response
	ResponseCount  int64
	ClientErrors   int64 // 4xx responses
	ServerErrors   int64 // 5xx responses
	AuthFailures   int64 // 401 responses
	Lock           sync.Mutex
}

// NewConcurrencyHandler initializes a handler allowing at most limit concurrent permits.
// acquireTimeout bounds how long a caller waits for a permit; zero waits until the
// caller's context ends.
func NewConcurrencyHandler(limit int, acquireTimeout time.Duration, log logger.Logger) *ConcurrencyHandler {
	if limit < 1 {
		limit = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ConcurrencyHandler{
		sem:            semaphore.NewWeighted(int64(limit)),
		limit:          limit,
		logger:         log,
		acquireTimeout: acquireTimeout,
		Metrics:        &ConcurrencyMetrics{},
	}
}

// Limit returns the maximum number of concurrent permits.
func (ch *ConcurrencyHandler) Limit() int {
	return ch.limit
}

// InFlight returns the number of permits currently held.
func (ch *ConcurrencyHandler) InFlight() int {
	return int(ch.inFlight.Load())
}

// RequestIDKey is the context key under which the permit's request ID is stored.
type RequestIDKey struct{}

// RequestIDFromContext returns the request ID attached by AcquireConcurrencyPermit.
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RequestIDKey{}).(uuid.UUID)
	return id, ok
}
