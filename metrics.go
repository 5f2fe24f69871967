package authcore

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricSignUpSuccess counts completed registrations.
	MetricSignUpSuccess MetricID = iota
	// MetricSignUpFailure counts rejected registrations.
	MetricSignUpFailure
	// MetricSignInSuccess counts issued sign-in token pairs.
	MetricSignInSuccess
	// MetricSignInFailure counts rejected sign-ins.
	MetricSignInFailure
	// MetricSignInUnconfirmed counts sign-ins blocked on email confirmation.
	MetricSignInUnconfirmed
	// MetricRefreshSuccess counts successful rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rotations rejected for codec reasons.
	MetricRefreshFailure
	// MetricRefreshRevoked counts rotations rejected by the blacklist.
	MetricRefreshRevoked
	// MetricRefreshStale counts rotations rejected by version mismatch.
	MetricRefreshStale
	// MetricLogout counts revocations written by logout.
	MetricLogout
	// MetricConfirmSuccess counts consumed confirmation tokens.
	MetricConfirmSuccess
	// MetricConfirmFailure counts rejected confirmation attempts.
	MetricConfirmFailure
	// MetricResetRequested counts reset-password emails dispatched.
	MetricResetRequested
	// MetricResetSuccess counts consumed reset tokens.
	MetricResetSuccess
	// MetricResetFailure counts rejected reset attempts.
	MetricResetFailure
	// MetricPasswordChangeSuccess counts completed password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeFailure counts rejected password changes.
	MetricPasswordChangeFailure

	metricIDCount
)

// Metrics holds lock-free per-operation counters. A nil or disabled
// *Metrics is a valid no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// Counters occupy their own cache line to avoid false sharing on hot paths.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc adds one to the given counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a consistent-enough copy of every counter.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil || !m.enabled {
		return s
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
