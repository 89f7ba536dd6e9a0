package tracing

// A TaskStep represents a milestone in the processing of task
type TaskStep struct {
	Cycle uint64 `json:"cycle"`
	What  string `json:"what"`
}

// A Task is a piece of work that a component spends cycles on. For bus
// masters, a task is one transfer from its first address phase to the end
// of its data phase.
type Task struct {
	ID         string     `json:"id"`
	ParentID   string     `json:"parent_id"`
	Kind       string     `json:"kind"`
	What       string     `json:"what"`
	Where      string     `json:"where"`
	StartCycle uint64     `json:"start_cycle"`
	EndCycle   uint64     `json:"end_cycle"`
	Steps      []TaskStep `json:"steps"`
	Detail     any        `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// KindIs returns a filter that accepts the tasks of one kind.
func KindIs(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}

// AllTasks is a filter that accepts every task.
func AllTasks(Task) bool {
	return true
}
