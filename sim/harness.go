package sim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrNoProgress is returned by Run when every component is idle, nothing is
// scheduled, and no exit was requested. Running further could never change
// the state of the simulation.
var ErrNoProgress = errors.New("all components are idle and no event is pending")

// A Harness drives a set of components with one clock. At every clock edge
// it runs the assertion pass, the tick pass and the tock pass. Events that
// are due at or before an edge are delivered before the edge runs.
type Harness struct {
	HookableBase

	freq   Freq
	period Duration
	queue  *EventQueue

	components []Component
	byName     map[string]Component
	started    bool

	cycle         uint64
	nextEdge      Timepoint
	nextEdgeEpoch uint64
	skipAhead     bool

	exitLock      sync.Mutex
	exitRequested bool
	exitCode      int

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	// stepLock is held while an edge runs, by Run and the Step methods
	// alike. Pause holds pauseLock only, so a paused harness can still be
	// stepped.
	stepLock sync.Mutex

	singleRunLock sync.Mutex
}

var _ Engine = (*Harness)(nil)

// Frequency returns the clock frequency of the harness.
func (h *Harness) Frequency() Freq {
	return h.freq
}

// Queue returns the event queue owned by the harness.
func (h *Harness) Queue() *EventQueue {
	return h.queue
}

// Register adds a component to the clock. Components are ticked and tocked in
// registration order, so upstream components must be registered before the
// components they send requests to.
func (h *Harness) Register(c Component) {
	if h.started {
		log.Panicf("cannot register %s after the simulation started", c.Name())
	}

	if _, found := h.byName[c.Name()]; found {
		log.Panicf("component %s is registered twice", c.Name())
	}

	h.components = append(h.components, c)
	h.byName[c.Name()] = c
}

// Components returns the registered components in tick order.
func (h *Harness) Components() []Component {
	return h.components
}

// Component returns the component with the given name.
func (h *Harness) Component(name string) (Component, bool) {
	c, found := h.byName[name]
	return c, found
}

// CurrentTime returns the current simulated time.
func (h *Harness) CurrentTime() Timepoint {
	return h.queue.CurrentTime()
}

// CurrentCycle returns the index of the edge that is running, or the number
// of edges completed when called between edges.
func (h *Harness) CurrentCycle() uint64 {
	return h.cycle
}

// Schedule registers an event on the queue of the harness.
func (h *Harness) Schedule(
	delay Duration,
	handler Handler,
	payload any,
) (RevokeToken, bool) {
	return h.queue.Schedule(delay, handler, payload)
}

// Revoke removes a pending future event.
func (h *Harness) Revoke(token RevokeToken) {
	h.queue.Revoke(token)
}

// RequestExit asks Run to return after the current clock edge.
func (h *Harness) RequestExit(code int) {
	h.exitLock.Lock()
	defer h.exitLock.Unlock()

	h.exitRequested = true
	h.exitCode = code
}

// ExitCode returns the code passed to RequestExit.
func (h *Harness) ExitCode() (int, bool) {
	h.exitLock.Lock()
	defer h.exitLock.Unlock()

	return h.exitCode, h.exitRequested
}

func (h *Harness) shouldExit() bool {
	_, requested := h.ExitCode()
	return requested
}

// StepCycle runs exactly one clock edge.
func (h *Harness) StepCycle() (err error) {
	h.singleRunLock.Lock()
	defer h.singleRunLock.Unlock()

	defer recoverViolation(&err)

	h.pauseLock.Lock()
	defer h.pauseLock.Unlock()

	h.stepLock.Lock()
	defer h.stepLock.Unlock()

	return h.stepEdge()
}

// StepWhilePaused runs one clock edge of a paused harness. It lets a monitor
// single-step a simulation whose Run loop is blocked by Pause.
func (h *Harness) StepWhilePaused() (err error) {
	h.isPausedLock.Lock()
	paused := h.isPaused
	h.isPausedLock.Unlock()

	if !paused {
		return errors.New("the simulation is not paused")
	}

	h.stepLock.Lock()
	defer h.stepLock.Unlock()

	defer recoverViolation(&err)

	return h.stepEdge()
}

// StepUntil runs all the edges and events up to and including time t.
func (h *Harness) StepUntil(t Timepoint) (err error) {
	h.singleRunLock.Lock()
	defer h.singleRunLock.Unlock()

	defer recoverViolation(&err)

	for {
		more, err := h.lockedStep(func() (bool, error) {
			if h.nextEdgeEpoch != h.queue.Epoch() || h.nextEdge > t {
				return false, nil
			}

			return true, h.skipOrStep(t, true)
		})
		if err != nil {
			return err
		}

		if !more {
			break
		}
	}

	_, err = h.lockedStep(func() (bool, error) {
		if err := h.deliverUntil(t, h.queue.Epoch()); err != nil {
			return false, err
		}

		if t > h.queue.CurrentTime() {
			h.queue.advanceTo(t, h.queue.Epoch())
		}

		return false, nil
	})

	return err
}

// Run keeps running clock edges until an exit is requested, the context is
// cancelled, or the simulation cannot make progress any more.
func (h *Harness) Run(ctx context.Context) (err error) {
	h.singleRunLock.Lock()
	defer h.singleRunLock.Unlock()

	defer recoverViolation(&err)

	for !h.shouldExit() {
		if err := ctx.Err(); err != nil {
			return err
		}

		more, err := h.lockedStep(func() (bool, error) {
			if h.shouldExit() {
				return false, nil
			}

			if h.isIdleForever() {
				return false, ErrNoProgress
			}

			return true, h.skipOrStep(0, false)
		})
		if err != nil || !more {
			return err
		}
	}

	return nil
}

// lockedStep runs f while Pause and StepWhilePaused are kept out. Every read
// of the queue and of the components by the run loops goes through it.
func (h *Harness) lockedStep(f func() (bool, error)) (bool, error) {
	h.pauseLock.Lock()
	defer h.pauseLock.Unlock()

	h.stepLock.Lock()
	defer h.stepLock.Unlock()

	return f()
}

func (h *Harness) skipOrStep(limit Timepoint, bounded bool) error {
	if h.skipAhead {
		if n := h.skippableEdges(limit, bounded); n > 0 {
			h.skipEdges(n)
			return nil
		}
	}

	return h.stepEdge()
}

func (h *Harness) start() {
	if h.started {
		return
	}

	for _, c := range h.components {
		if w, ok := c.(Wired); ok {
			w.MustBeWired()
		}
	}

	h.started = true
}

func (h *Harness) stepEdge() error {
	h.start()

	if err := h.deliverUntil(h.nextEdge, h.nextEdgeEpoch); err != nil {
		return err
	}

	h.queue.advanceTo(h.nextEdge, h.nextEdgeEpoch)

	return h.runEdge()
}

func (h *Harness) runEdge() error {
	if err := h.drainNow(); err != nil {
		return err
	}

	if AssertionsEnabled {
		for _, c := range h.components {
			if a, ok := c.(Asserter); ok {
				a.AssertState()
			}
		}
	}

	if h.NumHooks() > 0 {
		h.InvokeHook(HookCtx{Domain: h, Pos: HookPosBeforeTick, Item: h.cycle})
	}

	for _, c := range h.components {
		c.Tick()
	}

	if err := h.drainNow(); err != nil {
		return err
	}

	for _, c := range h.components {
		c.Tock()
	}

	if h.NumHooks() > 0 {
		h.InvokeHook(HookCtx{Domain: h, Pos: HookPosAfterTock, Item: h.cycle})
	}

	h.advanceEdge(1)

	return nil
}

func (h *Harness) advanceEdge(n uint64) {
	h.cycle += n

	next, wrapped := h.nextEdge.Add(Duration(n) * h.period)
	if wrapped {
		h.nextEdgeEpoch++
	}

	h.nextEdge = next
}

func (h *Harness) drainNow() error {
	for h.queue.HasNowEvents() {
		evt, _ := h.queue.popNow()
		if err := h.dispatch(evt); err != nil {
			return err
		}
	}

	return nil
}

// deliverUntil delivers every event due at or before time t of the given
// epoch.
func (h *Harness) deliverUntil(t Timepoint, epoch uint64) error {
	for {
		if err := h.drainNow(); err != nil {
			return err
		}

		next, nextEpoch, ok := h.queue.NextTime()
		if !ok || nextEpoch > epoch || (nextEpoch == epoch && next > t) {
			return nil
		}

		evt, _ := h.queue.Pop()
		if err := h.dispatch(evt); err != nil {
			return err
		}
	}
}

func (h *Harness) dispatch(evt Event) error {
	hookCtx := HookCtx{
		Domain: h,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	h.InvokeHook(hookCtx)

	err := evt.Handler.Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	h.InvokeHook(hookCtx)

	if err != nil {
		return fmt.Errorf("handling event %d at %d: %w", evt.ID, evt.Time, err)
	}

	return nil
}

// skippableEdges returns how many of the upcoming edges can be jumped over
// without changing what any component observes.
func (h *Harness) skippableEdges(limit Timepoint, bounded bool) uint64 {
	if h.queue.HasNowEvents() {
		return 0
	}

	n, unbounded, ok := h.minSkippableCycles()
	if !ok {
		return 0
	}

	if next, epoch, found := h.queue.NextTime(); found {
		if epoch != h.nextEdgeEpoch {
			return 0
		}

		if next <= h.nextEdge {
			return 0
		}

		beforeEvent := h.edgesBefore(next)
		if unbounded || beforeEvent < n {
			n, unbounded = beforeEvent, false
		}
	}

	if bounded {
		if limit < h.nextEdge {
			return 0
		}

		upToLimit := uint64(limit-h.nextEdge)/uint64(h.period) + 1
		if unbounded || upToLimit < n {
			n, unbounded = upToLimit, false
		}
	}

	if unbounded {
		return 0
	}

	return h.clampToEpoch(n)
}

// edgesBefore counts the edges that run strictly before time t.
func (h *Harness) edgesBefore(t Timepoint) uint64 {
	if t <= h.nextEdge {
		return 0
	}

	return (uint64(t-h.nextEdge) + uint64(h.period) - 1) / uint64(h.period)
}

func (h *Harness) clampToEpoch(n uint64) uint64 {
	room := uint64(^Timepoint(0)-h.nextEdge) / uint64(h.period)
	if n > room {
		return room
	}

	return n
}

// minSkippableCycles asks every component how many edges it can sleep. The
// last return value is false if any component must run the next edge.
func (h *Harness) minSkippableCycles() (n uint64, unbounded bool, ok bool) {
	unbounded = true

	for _, c := range h.components {
		s, isSkippable := c.(Skippable)
		if !isSkippable || !s.CanBeDisabledNow() {
			return 0, false, false
		}

		m := s.MaxCyclesToSkip()
		if m == 0 {
			return 0, false, false
		}

		if m == SkipUnbounded {
			continue
		}

		if unbounded || m < n {
			n, unbounded = m, false
		}
	}

	return n, unbounded, true
}

func (h *Harness) isIdleForever() bool {
	if h.queue.Len() > 0 {
		return false
	}

	_, unbounded, ok := h.minSkippableCycles()

	return ok && unbounded
}

func (h *Harness) skipEdges(n uint64) {
	h.start()

	for _, c := range h.components {
		c.(Skippable).EmulateSkippedCycles(n)
	}

	h.advanceEdge(n)

	last := h.nextEdge - Timepoint(h.period)
	if last > h.queue.CurrentTime() {
		h.queue.advanceTo(last, h.nextEdgeEpoch)
	}
}

// Pause prevents the Harness from running more edges.
func (h *Harness) Pause() {
	h.isPausedLock.Lock()
	defer h.isPausedLock.Unlock()

	if h.isPaused {
		return
	}

	h.pauseLock.Lock()
	h.isPaused = true
}

// Continue allows the Harness to run more edges.
func (h *Harness) Continue() {
	h.isPausedLock.Lock()
	defer h.isPausedLock.Unlock()

	if !h.isPaused {
		return
	}

	h.pauseLock.Unlock()
	h.isPaused = false
}

func recoverViolation(err *error) {
	r := recover()
	if r == nil {
		return
	}

	v, ok := r.(*ProtocolViolation)
	if !ok {
		panic(r)
	}

	*err = v
}
