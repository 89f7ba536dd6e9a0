package sim

import (
	"container/heap"
	"log"
)

// EventQueue orders events on the simulated timeline.
//
// Events scheduled with zero delay go to a bounded FIFO now-queue and are
// always popped before anything in the future. Delayed events are kept in a
// min-heap keyed by time. If the target time of a delayed event wraps past
// the largest Timepoint, the event is parked in an overflow heap that
// replaces the primary heap once the latter drains.
//
// The queue is not safe for concurrent use. A simulation owns exactly one.
type EventQueue struct {
	now    Timepoint
	epoch  uint64
	nextID uint64

	nowQueue []Event
	nowHead  int
	nowLen   int

	future   eventHeap
	overflow eventHeap
	pending  map[uint64]*queuedEvent
}

type queuedEvent struct {
	Event
	revoked bool
}

// NewEventQueue creates an EventQueue whose now-queue holds at most
// nowCapacity events.
func NewEventQueue(nowCapacity int) *EventQueue {
	if nowCapacity <= 0 {
		log.Panicf("now-queue capacity must be positive, got %d", nowCapacity)
	}

	q := &EventQueue{
		nowQueue: make([]Event, nowCapacity),
		future:   make(eventHeap, 0),
		overflow: make(eventHeap, 0),
		pending:  make(map[uint64]*queuedEvent),
	}
	heap.Init(&q.future)
	heap.Init(&q.overflow)

	return q
}

// CurrentTime returns the time of the most recently popped future event.
func (q *EventQueue) CurrentTime() Timepoint {
	return q.now
}

// Epoch returns how many times the timeline has wrapped.
func (q *EventQueue) Epoch() uint64 {
	return q.epoch
}

// Len returns the number of events that are still going to fire.
func (q *EventQueue) Len() int {
	return q.nowLen + len(q.pending)
}

// Schedule registers an event. Zero-delay events cannot be revoked, so the
// returned bool is false for them.
func (q *EventQueue) Schedule(
	delay Duration,
	handler Handler,
	payload any,
) (RevokeToken, bool) {
	q.nextID++

	if delay == 0 {
		q.pushNow(Event{
			Time:    q.now,
			ID:      q.nextID,
			Handler: handler,
			Payload: payload,
		})

		return RevokeToken{}, false
	}

	t, wrapped := q.now.Add(delay)
	e := &queuedEvent{
		Event: Event{
			Time:    t,
			ID:      q.nextID,
			Handler: handler,
			Payload: payload,
		},
	}

	if wrapped {
		heap.Push(&q.overflow, e)
	} else {
		heap.Push(&q.future, e)
	}

	q.pending[e.ID] = e

	return RevokeToken{time: t, id: e.ID}, true
}

func (q *EventQueue) pushNow(evt Event) {
	capacity := len(q.nowQueue)
	if q.nowLen == capacity {
		log.Panicf(
			"now-queue capacity %d exceeded, "+
				"the capacity must cover every same-cycle event of the component graph",
			capacity)
	}

	q.nowQueue[(q.nowHead+q.nowLen)%capacity] = evt
	q.nowLen++
}

func (q *EventQueue) popNow() (Event, bool) {
	if q.nowLen == 0 {
		return Event{}, false
	}

	evt := q.nowQueue[q.nowHead]
	q.nowQueue[q.nowHead] = Event{}
	q.nowHead = (q.nowHead + 1) % len(q.nowQueue)
	q.nowLen--

	return evt, true
}

// Pop returns the next event. The now-queue is drained first. Popping a
// future event moves the current time to the time of that event.
func (q *EventQueue) Pop() (Event, bool) {
	if evt, ok := q.popNow(); ok {
		return evt, true
	}

	if !q.dropRevokedAndWrap() {
		return Event{}, false
	}

	e := heap.Pop(&q.future).(*queuedEvent)
	delete(q.pending, e.ID)
	q.now = e.Time

	return e.Event, true
}

// NextTime returns the time and epoch of the next future event, ignoring
// the now-queue. The bool is false when no future event is pending.
func (q *EventQueue) NextTime() (Timepoint, uint64, bool) {
	q.dropRevokedTops(&q.future)
	if q.future.Len() > 0 {
		return q.future[0].Time, q.epoch, true
	}

	q.dropRevokedTops(&q.overflow)
	if q.overflow.Len() > 0 {
		return q.overflow[0].Time, q.epoch + 1, true
	}

	return 0, 0, false
}

// HasNowEvents tells if there are zero-delay events waiting.
func (q *EventQueue) HasNowEvents() bool {
	return q.nowLen > 0
}

// Revoke marks a scheduled future event as removed. Tokens of events that
// already fired are ignored.
func (q *EventQueue) Revoke(token RevokeToken) {
	e, found := q.pending[token.id]
	if !found || e.Time != token.time {
		return
	}

	e.revoked = true
	delete(q.pending, token.id)
}

// advanceTo moves the current time forward without popping an event. It is
// used by the harness to reach a clock edge.
func (q *EventQueue) advanceTo(t Timepoint, epoch uint64) {
	if epoch < q.epoch || (epoch == q.epoch && t < q.now) {
		log.Panicf("cannot move time backwards, now %d@%d, target %d@%d",
			q.now, q.epoch, t, epoch)
	}

	for q.epoch < epoch {
		q.dropRevokedTops(&q.future)
		if q.future.Len() > 0 {
			log.Panic("cannot wrap the timeline while future events are pending")
		}

		q.future, q.overflow = q.overflow, q.future
		q.epoch++
	}

	q.now = t
}

func (q *EventQueue) dropRevokedAndWrap() bool {
	for {
		q.dropRevokedTops(&q.future)
		if q.future.Len() > 0 {
			return true
		}

		q.dropRevokedTops(&q.overflow)
		if q.overflow.Len() == 0 {
			return false
		}

		q.future, q.overflow = q.overflow, q.future
		q.epoch++
	}
}

func (q *EventQueue) dropRevokedTops(h *eventHeap) {
	for h.Len() > 0 && (*h)[0].revoked {
		heap.Pop(h)
	}
}

type eventHeap []*queuedEvent

// Len returns the length of the event queue
func (h eventHeap) Len() int {
	return len(h)
}

// Less determines the order between two events. Events at the same time are
// popped in the order they were scheduled.
func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}

	return h[i].ID < h[j].ID
}

// Swap changes the position of two events in the event queue
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds an event into the event queue
func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*queuedEvent))
}

// Pop removes and returns the next event to happen
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	event := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]

	return event
}
