package tick

import "sync/atomic"

// Metrics tracks tick-loop counters for the admin endpoint. All fields
// are updated atomically so the HTTP side can read without the game lock.
type Metrics struct {
	ticks        atomic.Int64
	totalTickNs  atomic.Int64
	framesSent   atomic.Int64
	sendFailures atomic.Int64
}

// NewMetrics creates zeroed Metrics.
func NewMetrics() *Metrics { return &Metrics{} }

// AddTick records one completed tick and its duration in nanoseconds.
func (m *Metrics) AddTick(ns int64) {
	m.ticks.Add(1)
	m.totalTickNs.Add(ns)
}

// IncFramesSent records one successfully written snapshot frame.
func (m *Metrics) IncFramesSent() { m.framesSent.Add(1) }

// IncSendFailures records one failed snapshot write.
func (m *Metrics) IncSendFailures() { m.sendFailures.Add(1) }

// Ticks returns the number of completed ticks.
func (m *Metrics) Ticks() int64 { return m.ticks.Load() }

// Snapshot returns a read-only copy for JSON output.
func (m *Metrics) Snapshot() map[string]any {
	ticks := m.ticks.Load()
	total := m.totalTickNs.Load()
	var avgMs float64
	if ticks > 0 {
		avgMs = float64(total) / float64(ticks) / 1e6
	}
	return map[string]any{
		"ticks":         ticks,
		"avg_tick_ms":   avgMs,
		"frames_sent":   m.framesSent.Load(),
		"send_failures": m.sendFailures.Load(),
	}
}
