package transfer

import (
	"time"

	"go.uber.org/zap"
)

// StageMetrics records how long each stage of a transfer took
type StageMetrics struct {
	order     []Stage
	durations map[Stage]time.Duration
}

// NewStageMetrics creates an empty stage metrics tracker
func NewStageMetrics() *StageMetrics {
	return &StageMetrics{
		durations: make(map[Stage]time.Duration),
	}
}

// Start begins timing a stage; the returned func stops the timer
func (m *StageMetrics) Start(stage Stage) func() {
	start := time.Now()
	return func() {
		m.Record(stage, time.Since(start))
	}
}

// Record adds d to the time spent in stage
func (m *StageMetrics) Record(stage Stage, d time.Duration) {
	if _, ok := m.durations[stage]; !ok {
		m.order = append(m.order, stage)
	}
	m.durations[stage] += d
}

// Duration returns the time spent in a stage
func (m *StageMetrics) Duration(stage Stage) (time.Duration, bool) {
	d, ok := m.durations[stage]
	return d, ok
}

// Stages returns the stages in the order they were first recorded
func (m *StageMetrics) Stages() []Stage {
	out := make([]Stage, len(m.order))
	copy(out, m.order)
	return out
}

// Total returns the summed time of all recorded stages
func (m *StageMetrics) Total() time.Duration {
	var total time.Duration
	for _, d := range m.durations {
		total += d
	}
	return total
}

// Fields returns one zap duration field per recorded stage
func (m *StageMetrics) Fields() []zap.Field {
	fields := make([]zap.Field, 0, len(m.order))
	for _, stage := range m.order {
		fields = append(fields, zap.Duration(stage.String()+"_duration", m.durations[stage]))
	}
	return fields
}
