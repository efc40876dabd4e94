package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects request and classification counters for the API.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64
	fallbacks     atomic.Int64

	operations map[string]*OperationMetrics
	intents    map[string]int64

	// Ring of recent durations for percentile estimates.
	durations    []time.Duration
	maxDurations int
}

// OperationMetrics represents metrics for one API operation.
type OperationMetrics struct {
	requestCount  atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		operations:   make(map[string]*OperationMetrics),
		intents:      make(map[string]int64),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

// RecordRequest records a finished request.
func (m *Metrics) RecordRequest(operation string, duration time.Duration, failed bool) {
	m.requestTotal.Add(1)
	om := m.operation(operation)
	om.requestCount.Add(1)
	om.totalDuration.Add(duration.Milliseconds())
	if failed {
		m.requestFailed.Add(1)
		om.errorCount.Add(1)
	}

	m.mu.Lock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
	m.mu.Unlock()
}

// RecordIntent records a classification result. fallback is true when the
// rule engine answered instead of the upstream interpreter.
func (m *Metrics) RecordIntent(intent string, fallback bool) {
	if fallback {
		m.fallbacks.Add(1)
	}
	m.mu.Lock()
	m.intents[intent]++
	m.mu.Unlock()
}

func (m *Metrics) operation(name string) *OperationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	om, ok := m.operations[name]
	if !ok {
		om = &OperationMetrics{}
		m.operations[name] = om
	}
	return om
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.fallbacks.Store(0)

	m.mu.Lock()
	m.operations = make(map[string]*OperationMetrics)
	m.intents = make(map[string]int64)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make(map[string]*OperationSnapshot, len(m.operations))
	for name, om := range m.operations {
		count := om.requestCount.Load()
		snap := &OperationSnapshot{
			RequestCount:  count,
			TotalDuration: om.totalDuration.Load(),
			ErrorCount:    om.errorCount.Load(),
		}
		if count > 0 {
			snap.AverageDuration = snap.TotalDuration / count
		}
		ops[name] = snap
	}

	intents := make(map[string]int64, len(m.intents))
	for k, v := range m.intents {
		intents[k] = v
	}

	sorted := append([]time.Duration(nil), m.durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Fallbacks:     m.fallbacks.Load(),
		Operations:    ops,
		Intents:       intents,
		P50:           percentile(sorted, 0.50),
		P95:           percentile(sorted, 0.95),
		Average:       average(sorted),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func average(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return total / time.Duration(len(ds))
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64
	RequestFailed int64
	Fallbacks     int64
	Operations    map[string]*OperationSnapshot
	Intents       map[string]int64
	P50           time.Duration
	P95           time.Duration
	Average       time.Duration
}

// OperationSnapshot represents metrics for a specific operation.
type OperationSnapshot struct {
	RequestCount    int64
	TotalDuration   int64
	ErrorCount      int64
	AverageDuration int64
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
