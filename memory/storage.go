// Package memory provides the backing stores of the simulated system and the
// handlers that serve them on the bus.
package memory

import (
	"errors"
)

// ErrBeyondCapacity is returned when an access does not fit in a storage.
var ErrBeyondCapacity = errors.New("access beyond the storage capacity")

// A Storage keeps the bytes of one memory.
//
// The storage is managed in units. Units that no access ever touched are
// not allocated and read as zero.
type Storage struct {
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage with the given capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: 4096,
		capacity: capacity,
		data:     make(map[uint64][]byte),
	}
}

// Capacity returns the size of the storage in bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) mustFit(offset, n uint64) error {
	if offset > s.capacity || n > s.capacity-offset {
		return ErrBeyondCapacity
	}

	return nil
}

func (s *Storage) unit(offset uint64, create bool) []byte {
	base := offset - offset%s.unitSize

	u, found := s.data[base]
	if !found && create {
		u = make([]byte, s.unitSize)
		s.data[base] = u
	}

	return u
}

// Read returns n bytes starting at offset.
func (s *Storage) Read(offset uint64, n uint64) ([]byte, error) {
	if err := s.mustFit(offset, n); err != nil {
		return nil, err
	}

	res := make([]byte, n)

	for done := uint64(0); done < n; {
		curr := offset + done
		inUnit := curr % s.unitSize
		chunk := min(n-done, s.unitSize-inUnit)

		if u := s.unit(curr, false); u != nil {
			copy(res[done:done+chunk], u[inUnit:inUnit+chunk])
		}

		done += chunk
	}

	return res, nil
}

// Write stores data starting at offset.
func (s *Storage) Write(offset uint64, data []byte) error {
	n := uint64(len(data))
	if err := s.mustFit(offset, n); err != nil {
		return err
	}

	for done := uint64(0); done < n; {
		curr := offset + done
		inUnit := curr % s.unitSize
		chunk := min(n-done, s.unitSize-inUnit)

		copy(s.unit(curr, true)[inUnit:inUnit+chunk], data[done:done+chunk])

		done += chunk
	}

	return nil
}
