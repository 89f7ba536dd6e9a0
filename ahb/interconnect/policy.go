// Package interconnect routes transfers between masters and slaves. A
// Decoder picks a slave by address. An Arbiter picks one master per cycle.
package interconnect

import (
	"github.com/sarchlab/ahbsim/ahb"
)

// Request is one master asking for the bus in the current cycle. Index is the
// position of the master in the connection order of the arbiter.
type Request struct {
	Index int
	Meta  ahb.TransferMeta
}

// A Policy decides which of the simultaneous requests wins. Policies must be
// deterministic: the same requests and history always give the same winner.
type Policy interface {
	// Arbitrate returns the position in reqs of the winner. Requests are
	// sorted by Index and there is at least one.
	Arbitrate(reqs []Request) int

	// Granted tells the policy that the winner was accepted downstream.
	Granted(req Request)
}

// FixedPriority always picks the requester with the lowest index.
type FixedPriority struct{}

// Arbitrate picks the lowest index.
func (FixedPriority) Arbitrate(reqs []Request) int {
	return 0
}

// Granted does nothing.
func (FixedPriority) Granted(req Request) {}

// ReversedFixedPriority always picks the requester with the highest index.
type ReversedFixedPriority struct{}

// Arbitrate picks the highest index.
func (ReversedFixedPriority) Arbitrate(reqs []Request) int {
	return len(reqs) - 1
}

// Granted does nothing.
func (ReversedFixedPriority) Granted(req Request) {}

// RoundRobin starts looking for a requester right after the last master
// granted.
type RoundRobin struct {
	next int
}

// Arbitrate picks the first requester at or after the rotating start point.
func (p *RoundRobin) Arbitrate(reqs []Request) int {
	for i, r := range reqs {
		if r.Index >= p.next {
			return i
		}
	}

	return 0
}

// Granted moves the start point past the winner.
func (p *RoundRobin) Granted(req Request) {
	p.next = req.Index + 1
}
