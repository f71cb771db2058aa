package infra

import (
	"testing"
)

func TestMetrics_RecordCycle(t *testing.T) {
	m := &Metrics{}

	m.RecordCycle(1000)
	m.RecordCycle(2000)
	m.RecordCycle(3000)

	snap := m.Snapshot()

	if snap.CyclesRun != 3 {
		t.Errorf("Expected 3 cycles, got %d", snap.CyclesRun)
	}

	// Average duration: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgCycleNs != 2000 {
		t.Errorf("Expected avg duration 2000, got %d", snap.AvgCycleNs)
	}
}

func TestMetrics_Connections(t *testing.T) {
	m := &Metrics{}

	m.IncrementConnections()
	m.IncrementConnections()
	m.IncrementConnections()

	snap := m.Snapshot()
	if snap.ActiveConnections != 3 {
		t.Errorf("Expected 3 connections, got %d", snap.ActiveConnections)
	}

	m.DecrementConnections()
	snap = m.Snapshot()
	if snap.ActiveConnections != 2 {
		t.Errorf("Expected 2 connections, got %d", snap.ActiveConnections)
	}
}

func TestMetrics_Broadcasts(t *testing.T) {
	m := &Metrics{}

	m.RecordBroadcast(5)
	m.RecordBroadcast(3)

	snap := m.Snapshot()
	if snap.BroadcastsSent != 2 {
		t.Errorf("Expected 2 broadcasts, got %d", snap.BroadcastsSent)
	}
	if snap.UpdatesPublished != 8 {
		t.Errorf("Expected 8 published updates, got %d", snap.UpdatesPublished)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}

	m.RecordCycle(1000)
	m.RecordLookupError()
	m.RecordCycleSkipped()
	m.IncrementConnections()

	m.Reset()
	snap := m.Snapshot()

	if snap.CyclesRun != 0 {
		t.Error("Expected 0 cycles after reset")
	}
	if snap.LookupErrors != 0 {
		t.Error("Expected 0 lookup errors after reset")
	}
	if snap.CyclesSkipped != 0 {
		t.Error("Expected 0 skipped cycles after reset")
	}
	if snap.ActiveConnections != 0 {
		t.Error("Expected 0 connections after reset")
	}
}
