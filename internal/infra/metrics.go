package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	cyclesRun        atomic.Uint64
	cyclesSkipped    atomic.Uint64
	lookupErrors     atomic.Uint64
	broadcastsSent   atomic.Uint64
	updatesPublished atomic.Uint64

	// Cycle duration tracking
	cycleDurSumNs atomic.Int64
	cycleDurCount atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCycle records a completed refresh cycle with its duration.
func (m *Metrics) RecordCycle(durNs int64) {
	m.cyclesRun.Add(1)
	m.cycleDurSumNs.Add(durNs)
	m.cycleDurCount.Add(1)
}

// RecordCycleSkipped records a cycle skipped by the reentrancy guard.
func (m *Metrics) RecordCycleSkipped() {
	m.cyclesSkipped.Add(1)
}

// RecordLookupError records one failed per-asset lookup.
func (m *Metrics) RecordLookupError() {
	m.lookupErrors.Add(1)
}

// RecordBroadcast records a delivered price-update broadcast and its batch size.
func (m *Metrics) RecordBroadcast(updates int) {
	m.broadcastsSent.Add(1)
	m.updatesPublished.Add(uint64(updates))
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	CyclesRun         uint64
	CyclesSkipped     uint64
	LookupErrors      uint64
	BroadcastsSent    uint64
	UpdatesPublished  uint64
	AvgCycleNs        int64
	ActiveConnections int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgCycle int64
	count := m.cycleDurCount.Load()
	if count > 0 {
		avgCycle = m.cycleDurSumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		CyclesRun:         m.cyclesRun.Load(),
		CyclesSkipped:     m.cyclesSkipped.Load(),
		LookupErrors:      m.lookupErrors.Load(),
		BroadcastsSent:    m.broadcastsSent.Load(),
		UpdatesPublished:  m.updatesPublished.Load(),
		AvgCycleNs:        avgCycle,
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.cyclesRun.Store(0)
	m.cyclesSkipped.Store(0)
	m.lookupErrors.Store(0)
	m.broadcastsSent.Store(0)
	m.updatesPublished.Store(0)
	m.cycleDurSumNs.Store(0)
	m.cycleDurCount.Store(0)
	m.activeConnections.Store(0)
}
