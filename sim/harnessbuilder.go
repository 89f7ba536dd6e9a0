package sim

import "log"

// HarnessBuilder can build harnesses.
type HarnessBuilder struct {
	freq        Freq
	nowCapacity int
	skipAhead   bool
}

// MakeHarnessBuilder returns a HarnessBuilder with default parameters.
func MakeHarnessBuilder() HarnessBuilder {
	return HarnessBuilder{
		freq:        48 * MHz,
		nowCapacity: 1024,
	}
}

// WithFreq sets the clock frequency.
func (b HarnessBuilder) WithFreq(freq Freq) HarnessBuilder {
	b.freq = freq
	return b
}

// WithNowQueueCapacity sets how many zero-delay events can be pending at the
// same time.
func (b HarnessBuilder) WithNowQueueCapacity(n int) HarnessBuilder {
	b.nowCapacity = n
	return b
}

// WithSkipAhead lets StepUntil and Run jump over edges at which every
// component is idle.
func (b HarnessBuilder) WithSkipAhead() HarnessBuilder {
	b.skipAhead = true
	return b
}

// Build creates a harness.
func (b HarnessBuilder) Build() *Harness {
	if b.freq <= 0 {
		log.Panicf("invalid harness frequency %f", float64(b.freq))
	}

	h := &Harness{
		freq:      b.freq,
		period:    b.freq.Period(),
		queue:     NewEventQueue(b.nowCapacity),
		byName:    make(map[string]Component),
		skipAhead: b.skipAhead,
	}

	return h
}
