package sim

// Timepoint is a point on the simulated timeline, counted in picoseconds.
type Timepoint uint64

// Duration is a span of simulated time, counted in picoseconds.
type Duration uint64

// Units of Duration.
const (
	Picosecond  Duration = 1
	Nanosecond           = 1000 * Picosecond
	Microsecond          = 1000 * Nanosecond
	Millisecond          = 1000 * Microsecond
)

// Add returns t+d. The second return value reports whether the sum wrapped
// past the largest representable Timepoint.
func (t Timepoint) Add(d Duration) (Timepoint, bool) {
	sum := t + Timepoint(d)
	return sum, sum < t
}

// An Event is something that is going to happen at a certain Timepoint.
//
// Events are owned by the EventQueue once scheduled. Callers only keep a
// RevokeToken for delayed events.
type Event struct {
	Time    Timepoint
	ID      uint64
	Handler Handler
	Payload any
}

// A Handler defines a domain for the events.
//
// One event is always delivered to exactly one Handler.
type Handler interface {
	Handle(evt Event) error
}

// HandlerFunc lets an ordinary function act as a Handler.
type HandlerFunc func(evt Event) error

// Handle calls f(evt).
func (f HandlerFunc) Handle(evt Event) error {
	return f(evt)
}

// RevokeToken identifies a scheduled future event so that it can be revoked
// before it fires.
type RevokeToken struct {
	time Timepoint
	id   uint64
}

// Time returns the time the revocable event is scheduled at.
func (t RevokeToken) Time() Timepoint {
	return t.time
}

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() Timepoint
}

// CycleTeller can be used to get the number of clock edges run so far.
type CycleTeller interface {
	CurrentCycle() uint64
}

// EventScheduler can be used to schedule events.
type EventScheduler interface {
	TimeTeller

	// Schedule registers a payload to be delivered to the handler after the
	// given delay. Only delayed events return a valid RevokeToken.
	Schedule(delay Duration, handler Handler, payload any) (RevokeToken, bool)

	// Revoke removes a previously scheduled future event. It does nothing if
	// the event already fired.
	Revoke(token RevokeToken)
}
