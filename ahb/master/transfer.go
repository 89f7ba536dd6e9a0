// Package master tracks the transfers of one bus master through the address
// and data phases of the pipeline.
package master

import "github.com/sarchlab/ahbsim/ahb"

// Status tells where a transfer is in the pipeline.
type Status int

// Statuses of a transfer.
const (
	// StatusAddrPhaseNew means the address phase has never been presented.
	StatusAddrPhaseNew Status = iota

	// StatusAddrPhaseWaiting means the address phase was presented and
	// denied. It is presented again, unchanged, at the next cycle.
	StatusAddrPhaseWaiting

	// StatusDataPhase means the address phase was accepted.
	StatusDataPhase
)

func (s Status) String() string {
	switch s {
	case StatusAddrPhaseNew:
		return "AddrPhaseNew"
	case StatusAddrPhaseWaiting:
		return "AddrPhaseWaiting"
	case StatusDataPhase:
		return "DataPhase"
	default:
		return "Unknown"
	}
}

// A Transfer is one single-beat access in flight. It belongs to exactly one
// Driver and is gone once its data phase completes or aborts.
type Transfer struct {
	ID      string
	Meta    ahb.TransferMeta
	Status  Status
	Data    ahb.Data
	Payload any

	RequestedAt uint64
	AcceptedAt  uint64

	// Denials counts the cycles in which the address phase was presented
	// with HREADY high and not accepted. Cycles that the data phase before
	// it stretches with HREADY low are not counted.
	Denials int

	hasWriteData bool
}

// Owner is the component a Driver works for. The Driver calls back the Owner
// during Tock, after its own state is updated, so the Owner may request new
// transfers from within the callbacks.
type Owner interface {
	// TransferDone reports a data phase that ended with Success. For reads,
	// data is the value read.
	TransferDone(t *Transfer, data ahb.Data)

	// TransferAborted reports a data phase that ended with Error.
	TransferAborted(t *Transfer)

	// TransfersWillStall reports a cycle in which no phase advanced.
	TransfersWillStall()

	// WriteNeedsDataThisCycle asks for the value of a write. It is called
	// once, at the first cycle of the write's data phase.
	WriteNeedsDataThisCycle(t *Transfer) ahb.Data
}
