package memory

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/sarchlab/ahbsim/ahb"
)

// ErrUnmapped means that no single memory covers the accessed bytes.
var ErrUnmapped = errors.New("address range not covered by exactly one memory")

// AddressError is returned by host accesses that cannot be served.
type AddressError struct {
	Addr   uint32
	Len    int
	Reason error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("cannot access %d bytes at 0x%08x: %v", e.Len, e.Addr, e.Reason)
}

func (e *AddressError) Unwrap() error {
	return e.Reason
}

// HostAccessor is a memory that the host can read and write directly.
type HostAccessor interface {
	Name() string
	Range() ahb.AddressRange
	ReadMemory(addr uint32, buf []byte) error
	WriteMemory(addr uint32, data []byte) error
}

// An AddressSpace routes host accesses to the memory that covers them.
type AddressSpace struct {
	regions []HostAccessor
}

// NewAddressSpace creates an empty AddressSpace.
func NewAddressSpace() *AddressSpace {
	return &AddressSpace{}
}

// Map adds a memory. Memories must not overlap.
func (s *AddressSpace) Map(r HostAccessor) {
	for _, o := range s.regions {
		if o.Range().Overlaps(r.Range()) {
			log.Panicf("%s overlaps %s", r.Name(), o.Name())
		}
	}

	s.regions = append(s.regions, r)
	sort.Slice(s.regions, func(i, j int) bool {
		return s.regions[i].Range().Low < s.regions[j].Range().Low
	})
}

// Regions returns the mapped memories ordered by address.
func (s *AddressSpace) Regions() []HostAccessor {
	return s.regions
}

// Find returns the memory that covers all n bytes starting at addr.
func (s *AddressSpace) Find(addr uint32, n int) (HostAccessor, error) {
	end := uint64(addr) + uint64(n)

	for _, r := range s.regions {
		rng := r.Range()
		if rng.Contains(addr) && end <= rng.High {
			return r, nil
		}
	}

	return nil, &AddressError{Addr: addr, Len: n, Reason: ErrUnmapped}
}

// ReadMemory fills buf from the memory that covers it.
func (s *AddressSpace) ReadMemory(addr uint32, buf []byte) error {
	r, err := s.Find(addr, len(buf))
	if err != nil {
		return err
	}

	return r.ReadMemory(addr, buf)
}

// WriteMemory writes data into the memory that covers it.
func (s *AddressSpace) WriteMemory(addr uint32, data []byte) error {
	r, err := s.Find(addr, len(data))
	if err != nil {
		return err
	}

	return r.WriteMemory(addr, data)
}
