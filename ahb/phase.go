package ahb

import "fmt"

// TransferType is HTRANS.
type TransferType uint8

// Transfer types.
const (
	TransIdle TransferType = iota
	TransBusy
	TransNonSeq
	TransSeq
)

func (t TransferType) String() string {
	switch t {
	case TransIdle:
		return "IDLE"
	case TransBusy:
		return "BUSY"
	case TransNonSeq:
		return "NONSEQ"
	case TransSeq:
		return "SEQ"
	default:
		return fmt.Sprintf("HTRANS(%d)", uint8(t))
	}
}

// IsActive tells if the transfer type carries a real transfer.
func (t TransferType) IsActive() bool {
	return t == TransNonSeq || t == TransSeq
}

// AddrPhase is what a master drives on the address-phase wires in one cycle.
// Ready is the HREADY the master observes this cycle. An address phase can
// only be accepted when Ready is true.
type AddrPhase struct {
	Type  TransferType
	Meta  TransferMeta
	Ready bool
}

// NonSeq creates an active address phase.
func NonSeq(meta TransferMeta, ready bool) AddrPhase {
	return AddrPhase{Type: TransNonSeq, Meta: meta, Ready: ready}
}

func (a AddrPhase) String() string {
	if !a.Type.IsActive() {
		return a.Type.String()
	}

	return fmt.Sprintf("%s %s ready=%t", a.Type, a.Meta, a.Ready)
}

// DataPhase is what a master drives on the data-phase wires in one cycle.
// WriteData is right-aligned and only meaningful for writes.
type DataPhase struct {
	Meta      TransferMeta
	WriteData Data
}

// Response is HRESP together with HREADYOUT.
type Response uint8

// Responses.
const (
	Success Response = iota
	Pending
	Error
)

// Ready tells if the data phase finishes this cycle.
func (r Response) Ready() bool {
	return r != Pending
}

func (r Response) String() string {
	switch r {
	case Success:
		return "Success"
	case Pending:
		return "Pending"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("Response(%d)", uint8(r))
	}
}

// DataResponse is what a slave answers to a data phase. Data is right-aligned
// and only meaningful for a successful read.
type DataResponse struct {
	Resp Response
	Data Data
}

// Respond creates a DataResponse.
func Respond(resp Response, data Data) DataResponse {
	return DataResponse{Resp: resp, Data: data}
}
