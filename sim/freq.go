package sim

import (
	"log"
	"math"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks, rounded to the
// nearest picosecond.
func (f Freq) Period() Duration {
	if f <= 0 || math.IsNaN(float64(f)) {
		log.Panicf("invalid frequency %f", float64(f))
	}

	p := Duration(math.Round(1e12 / float64(f)))
	if p == 0 {
		log.Panicf("frequency %f is too high to be represented in picoseconds",
			float64(f))
	}

	return p
}

// Cycle converts a time to the number of whole cycles passed since time 0.
func (f Freq) Cycle(time Timepoint) uint64 {
	return uint64(time) / uint64(f.Period())
}

// ThisTick returns the current tick time
//
//	           Input
//	           (          ]
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (f Freq) ThisTick(now Timepoint) Timepoint {
	p := Timepoint(f.Period())
	count := (now + p - 1) / p

	return count * p
}

// NextTick returns the next tick time.
//
//	           Input
//	           [          )
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (f Freq) NextTick(now Timepoint) Timepoint {
	p := Timepoint(f.Period())
	count := now / p

	return (count + 1) * p
}

// NCyclesLater returns the time after N cycles
//
// This function will always return a time of an integer number of cycles
func (f Freq) NCyclesLater(n uint64, now Timepoint) Timepoint {
	return f.ThisTick(now) + Timepoint(n)*Timepoint(f.Period())
}
