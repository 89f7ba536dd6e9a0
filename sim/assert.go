package sim

import "fmt"

// ProtocolViolation reports that a component broke a bus protocol rule. It is
// a programming error in the component, so it is raised as a panic. Engine
// entry points recover it and return it as an error.
type ProtocolViolation struct {
	Component string
	Cycle     uint64
	Msg       string
}

func (v *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation in %s at cycle %d: %s",
		v.Component, v.Cycle, v.Msg)
}

// MustHold panics with a *ProtocolViolation if cond is false. It does nothing
// when assertions are compiled out with the noassert build tag.
func MustHold(
	cond bool,
	clock CycleTeller,
	comp Named,
	format string,
	args ...any,
) {
	if !AssertionsEnabled || cond {
		return
	}

	Violate(clock, comp, format, args...)
}

// Violate unconditionally panics with a *ProtocolViolation.
func Violate(clock CycleTeller, comp Named, format string, args ...any) {
	v := &ProtocolViolation{
		Msg: fmt.Sprintf(format, args...),
	}

	if comp != nil {
		v.Component = comp.Name()
	}

	if clock != nil {
		v.Cycle = clock.CurrentCycle()
	}

	panic(v)
}
