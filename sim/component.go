package sim

import "math"

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is a clocked element driven by the Harness.
//
// At every clock edge, the Harness calls Tick on every registered component
// and then Tock on every registered component. During Tick, a component
// reads the state that all components committed at the previous edge and
// exchanges combinational signals with its neighbors. During Tock, a
// component commits its next state. A component must not read a neighbor's
// committed state in Tock.
type Component interface {
	Named
	Hookable

	Tick()
	Tock()
}

// An Asserter checks its own invariants. The Harness runs AssertState on
// every component before the tick pass when assertions are compiled in.
type Asserter interface {
	AssertState()
}

// Wired is a component whose connections are made after it is built. The
// Harness calls MustBeWired on every such component before the first edge,
// so that a system with incomplete wiring refuses to start.
type Wired interface {
	MustBeWired()
}

// SkipUnbounded is returned by MaxCyclesToSkip when a component puts no
// limit on how many edges are skipped.
const SkipUnbounded uint64 = math.MaxUint64

// Skippable is a component that can tell if it has nothing to do for a
// number of cycles. When every component is Skippable and can be disabled,
// the Harness may jump over idle edges.
type Skippable interface {
	// CanBeDisabledNow tells if the component would do nothing at the next
	// edges if nothing external changes.
	CanBeDisabledNow() bool

	// MaxCyclesToSkip returns how many edges can be skipped, or
	// SkipUnbounded if the component can sleep until something external
	// wakes it up. Zero keeps the harness from skipping.
	MaxCyclesToSkip() uint64

	// EmulateSkippedCycles brings the component up to date after n edges
	// were skipped.
	EmulateSkippedCycles(n uint64)
}

// ComponentBase provides some functions that other component can use.
type ComponentBase struct {
	HookableBase
	name string
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.name = name

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
