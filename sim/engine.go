package sim

import "context"

// An Engine is the timing control surface of a simulation. StepCycle,
// StepUntil and Run are the only entry points that advance the EventQueue.
type Engine interface {
	Hookable
	TimeTeller
	CycleTeller
	EventScheduler

	// StepCycle runs exactly one clock edge, delivering every event that is
	// due at or before it.
	StepCycle() error

	// StepUntil runs every clock edge and event up to and including the
	// given time.
	StepUntil(t Timepoint) error

	// Run keeps running clock edges until an exit is requested or the
	// context is cancelled.
	Run(ctx context.Context) error

	// RequestExit asks Run to return after the current clock edge.
	RequestExit(code int)

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()
}
