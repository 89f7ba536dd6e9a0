package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/ahbsim/datarecording"
	"github.com/sarchlab/ahbsim/sim"
	"github.com/tebeka/atexit"
)

// Tables written by the DBTracer.
const (
	TaskTable = "trace"
	StepTable = "trace_steps"
)

// TaskEntry is a row of the task table.
type TaskEntry struct {
	ID         string
	ParentID   string
	Kind       string
	What       string
	Location   string
	StartCycle uint64
	EndCycle   uint64
	Completed  bool
}

// StepEntry is a row of the step table.
type StepEntry struct {
	TaskID string
	Cycle  uint64
	What   string
}

// DBTracer is a tracer that can store tasks into a database.
type DBTracer struct {
	mu      sync.Mutex
	clock   sim.CycleTeller
	backend datarecording.DataRecorder

	startCycle, endCycle uint64
	hasRange             bool

	tracingTasks map[string]Task
	terminated   bool
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	clock sim.CycleTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(TaskTable, TaskEntry{})
	dataRecorder.CreateTable(StepTable, StepEntry{})

	t := &DBTracer{
		clock:        clock,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetCycleRange limits the tracer to the tasks that overlap the cycles
// [start, end].
func (t *DBTracer) SetCycleRange(start, end uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startCycle = start
	t.endCycle = end
	t.hasRange = true
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startingTaskMustBeValid(task)

	task.StartCycle = t.clock.CurrentCycle()
	if t.hasRange && task.StartCycle > t.endCycle {
		return
	}

	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task location must be set")
	}
}

// StepTask records a step of a task that is being traced.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	now := t.clock.CurrentCycle()
	for _, step := range task.Steps {
		original.Steps = append(original.Steps, TaskStep{Cycle: now, What: step.What})
	}

	t.tracingTasks[task.ID] = original
}

// EndTask marks the end of a task.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	original.EndCycle = t.clock.CurrentCycle()
	if t.hasRange && original.EndCycle < t.startCycle {
		return
	}

	t.write(original, true)
}

func (t *DBTracer) write(task Task, completed bool) {
	t.backend.InsertData(TaskTable, TaskEntry{
		ID:         task.ID,
		ParentID:   task.ParentID,
		Kind:       task.Kind,
		What:       task.What,
		Location:   task.Where,
		StartCycle: task.StartCycle,
		EndCycle:   task.EndCycle,
		Completed:  completed,
	})

	for _, step := range task.Steps {
		t.backend.InsertData(StepTable, StepEntry{
			TaskID: task.ID,
			Cycle:  step.Cycle,
			What:   step.What,
		})
	}
}

// Terminate writes the tasks that are still running, ending them at the
// current cycle, and flushes the recorder.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.terminated = true

	now := t.clock.CurrentCycle()

	ids := make([]string, 0, len(t.tracingTasks))
	for id := range t.tracingTasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		task := t.tracingTasks[id]
		task.EndCycle = now
		t.write(task, false)
	}

	t.tracingTasks = make(map[string]Task)
	t.backend.Flush()
}
