package tracing

import (
	"sync"

	"github.com/sarchlab/ahbsim/sim"
)

// LatencyTracer measures how many cycles the tasks accepted by its filter
// take from start to end. Overlapping tasks are measured separately, so the
// total can exceed the elapsed cycles.
type LatencyTracer struct {
	clock  sim.CycleTeller
	filter TaskFilter

	lock     sync.Mutex
	started  map[string]uint64
	count    uint64
	total    uint64
	min, max uint64
}

// NewLatencyTracer creates a new LatencyTracer.
func NewLatencyTracer(clock sim.CycleTeller, filter TaskFilter) *LatencyTracer {
	return &LatencyTracer{
		clock:   clock,
		filter:  filter,
		started: make(map[string]uint64),
	}
}

// TotalCycles returns the sum of the latencies of the ended tasks.
func (t *LatencyTracer) TotalCycles() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.total
}

// TotalCount returns the number of ended tasks.
func (t *LatencyTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// AverageCycles returns the mean latency, or 0 before any task ended.
func (t *LatencyTracer) AverageCycles() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.count == 0 {
		return 0
	}

	return float64(t.total) / float64(t.count)
}

// MinCycles returns the shortest latency seen.
func (t *LatencyTracer) MinCycles() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.min
}

// MaxCycles returns the longest latency seen.
func (t *LatencyTracer) MaxCycles() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.max
}

// StartTask remembers when a task started.
func (t *LatencyTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.started[task.ID] = t.clock.CurrentCycle()
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *LatencyTracer) StepTask(_ Task) {}

// EndTask accounts for the latency of a task it saw starting.
func (t *LatencyTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.started[task.ID]
	if !ok {
		return
	}

	delete(t.started, task.ID)

	latency := t.clock.CurrentCycle() - start
	if t.count == 0 || latency < t.min {
		t.min = latency
	}

	if latency > t.max {
		t.max = latency
	}

	t.total += latency
	t.count++
}
