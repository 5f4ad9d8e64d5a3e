package draftpick

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricsCollector receives one call per pipeline stage.
type MetricsCollector interface {
	RecordStage(op, stage string, success bool, duration time.Duration)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordStage(op, stage string, success bool, duration time.Duration) {}

type stageKey struct {
	op, stage string
	success   bool
}

type stageTotals struct {
	count   uint64
	seconds float64
}

// StageMetrics counts stage outcomes in memory and renders them in the
// Prometheus text exposition format.
type StageMetrics struct {
	mu     sync.Mutex
	totals map[stageKey]*stageTotals
}

func NewStageMetrics() *StageMetrics {
	return &StageMetrics{totals: map[stageKey]*stageTotals{}}
}

func (m *StageMetrics) RecordStage(op, stage string, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := stageKey{op: op, stage: stage, success: success}
	t, ok := m.totals[k]
	if !ok {
		t = &stageTotals{}
		m.totals[k] = t
	}
	t.count++
	t.seconds += duration.Seconds()
}

// Count returns how many times a stage finished with the given outcome.
func (m *StageMetrics) Count(op, stage string, success bool) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.totals[stageKey{op: op, stage: stage, success: success}]; ok {
		return t.count
	}
	return 0
}

// Export renders the counters for a /metrics endpoint.
func (m *StageMetrics) Export() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]stageKey, 0, len(m.totals))
	for k := range m.totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.op != b.op {
			return a.op < b.op
		}
		if a.stage != b.stage {
			return a.stage < b.stage
		}
		return !a.success && b.success
	})

	var b strings.Builder
	b.WriteString("# HELP draftpick_stage_total Fan-out pipeline stages by outcome\n")
	b.WriteString("# TYPE draftpick_stage_total counter\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "draftpick_stage_total{op=%q,stage=%q,outcome=%q} %d\n", k.op, k.stage, outcome(k.success), m.totals[k].count)
	}
	b.WriteString("# HELP draftpick_stage_seconds_total Time spent in fan-out pipeline stages\n")
	b.WriteString("# TYPE draftpick_stage_seconds_total counter\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "draftpick_stage_seconds_total{op=%q,stage=%q,outcome=%q} %g\n", k.op, k.stage, outcome(k.success), m.totals[k].seconds)
	}
	return b.String()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
