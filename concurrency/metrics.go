// concurrency/metrics.go
package concurrency

import (
	"net/http"
	"time"
)

// MetricsSnapshot is a point-in-time copy of ConcurrencyMetrics that is safe to share.
type MetricsSnapshot struct {
	TotalRequests       int64
	TotalTimeouts       int64
	TotalCancelled      int64
	AverageWait         time.Duration
	AverageResponseTime time.Duration
	ClientErrors        int64
	ServerErrors        int64
	AuthFailures        int64
}

// RecordResponse tallies the outcome of a request made while holding a permit.
func (ch *ConcurrencyHandler) RecordResponse(statusCode int, elapsed time.Duration) {
	m := ch.Metrics
	m.Lock.Lock()
	defer m.Lock.Unlock()

	m.ResponseTime += elapsed
	m.ResponseCount++
	switch {
	case statusCode == http.StatusUnauthorized:
		m.AuthFailures++
		m.ClientErrors++
	case statusCode >= 400 && statusCode < 500:
		m.ClientErrors++
	case statusCode >= 500:
		m.ServerErrors++
	}
}

// Snapshot returns the current metrics with averages computed.
func (ch *ConcurrencyHandler) Snapshot() MetricsSnapshot {
	m := ch.Metrics
	m.Lock.Lock()
	defer m.Lock.Unlock()

	s := MetricsSnapshot{
		TotalRequests:  m.TotalRequests,
		TotalTimeouts:  m.TotalTimeouts,
		TotalCancelled: m.TotalCancelled,
		ClientErrors:   m.ClientErrors,
		ServerErrors:   m.ServerErrors,
		AuthFailures:   m.AuthFailures,
	}
	if m.TotalRequests > 0 {
		s.AverageWait = m.PermitWaitTime / time.Duration(m.TotalRequests)
	}
	if m.ResponseCount > 0 {
		s.AverageResponseTime = m.ResponseTime / time.Duration(m.ResponseCount)
	}
	return s
}
