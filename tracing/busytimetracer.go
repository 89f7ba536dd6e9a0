package tracing

import (
	"container/list"

	"github.com/sarchlab/ahbsim/sim"
)

type taskSpan struct {
	start, end uint64
	completed  bool
}

// BusyTimeTracer counts the cycles during which a domain is processing a kind
// of task. Cycles covered by several overlapping tasks are counted once, so
// on a bus master the result is the number of cycles it had a transfer in
// flight.
type BusyTimeTracer struct {
	clock         sim.CycleTeller
	filter        TaskFilter
	inflightTasks map[string]*list.Element
	spans         *list.List
	busyCycles    uint64
}

// NewBusyTimeTracer creates a new BusyTimeTracer. A nil filter accepts every
// task.
func NewBusyTimeTracer(
	clock sim.CycleTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	t := &BusyTimeTracer{
		clock:         clock,
		filter:        filter,
		inflightTasks: make(map[string]*list.Element),
		spans:         list.New(),
	}

	return t
}

// BusyCycles returns the cycles covered by the completed tasks.
func (t *BusyTimeTracer) BusyCycles() uint64 {
	return t.busyCycles
}

// TerminateAllTasks will mark all the tasks as completed.
func (t *BusyTimeTracer) TerminateAllTasks(now uint64) {
	for e := t.spans.Front(); e != nil; e = e.Next() {
		span := e.Value.(*taskSpan)
		if !span.completed {
			span.completed = true
			span.end = now
		}
	}

	t.inflightTasks = make(map[string]*list.Element)

	t.collapse(now)
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	elem := t.spans.PushBack(&taskSpan{start: t.clock.CurrentCycle()})
	t.inflightTasks[task.ID] = elem
}

// StepTask does nothing
func (t *BusyTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(task Task) {
	now := t.clock.CurrentCycle()

	elem, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	span := elem.Value.(*taskSpan)
	span.end = now
	span.completed = true
	delete(t.inflightTasks, task.ID)

	t.collapse(now)
}

// collapse folds the completed spans that no running task can overlap any
// more into busyCycles.
func (t *BusyTimeTracer) collapse(now uint64) {
	start, found := t.startOfFirstIncompleteTask()
	if found && start < now {
		return
	}

	finished := make([]*taskSpan, 0)

	var next *list.Element
	for e := t.spans.Front(); e != nil; e = next {
		next = e.Next()

		span := e.Value.(*taskSpan)
		if !span.completed {
			break
		}

		if span.end <= now {
			finished = append(finished, span)
			t.spans.Remove(e)
		}
	}

	t.busyCycles += unionLength(finished)
}

func (t *BusyTimeTracer) startOfFirstIncompleteTask() (uint64, bool) {
	for e := t.spans.Front(); e != nil; e = e.Next() {
		span := e.Value.(*taskSpan)
		if !span.completed {
			return span.start, true
		}
	}

	return 0, false
}

func unionLength(spans []*taskSpan) uint64 {
	total := uint64(0)
	covered := make(map[int]bool)

	for i, s1 := range spans {
		if covered[i] {
			continue
		}

		covered[i] = true
		ext := taskSpan{start: s1.start, end: s1.end}

		for grown := true; grown; {
			grown = false

			for j, s2 := range spans {
				if covered[j] || !spansOverlap(&ext, s2) {
					continue
				}

				covered[j] = true
				grown = true
				ext.start = min(ext.start, s2.start)
				ext.end = max(ext.end, s2.end)
			}
		}

		total += ext.end - ext.start
	}

	return total
}

func spansOverlap(s1, s2 *taskSpan) bool {
	return s1.start <= s2.end && s2.start <= s1.end
}
