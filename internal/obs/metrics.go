package obs

import (
	"sort"
	"strings"
	"sync"
)

// Label is a key/value pair attached to measurements.
type Label struct {
	Key   string
	Value string
}

// Meter receives counters and histograms. Implementations may no-op
// or bridge to a metrics system.
type Meter interface {
	Counter(name string, value float64, labels ...Label)
	Histogram(name string, value float64, labels ...Label)
}

// NopMeter discards all measurements.
type NopMeter struct{}

func (NopMeter) Counter(name string, value float64, labels ...Label)   {}
func (NopMeter) Histogram(name string, value float64, labels ...Label) {}

// MemMeter accumulates measurements in memory, keyed by name plus
// sorted labels. Meant for tests and debugging, not production use.
type MemMeter struct {
	mu         sync.Mutex
	counters   map[string]float64
	histograms map[string][]float64
}

func NewMemMeter() *MemMeter {
	return &MemMeter{
		counters:   make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (m *MemMeter) Counter(name string, value float64, labels ...Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[flatten(name, labels)] += value
}

func (m *MemMeter) Histogram(name string, value float64, labels ...Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := flatten(name, labels)
	m.histograms[k] = append(m.histograms[k], value)
}

// CounterValue returns the accumulated counter for name+labels.
func (m *MemMeter) CounterValue(name string, labels ...Label) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[flatten(name, labels)]
}

// HistogramCount returns how many observations name+labels received.
func (m *MemMeter) HistogramCount(name string, labels ...Label) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.histograms[flatten(name, labels)])
}

func flatten(name string, labels []Label) string {
	if len(labels) == 0 {
		return name
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.Key + "=" + l.Value
	}
	sort.Strings(parts)
	return name + "{" + strings.Join(parts, ",") + "}"
}
