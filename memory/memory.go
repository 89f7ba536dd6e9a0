package memory

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sarchlab/ahbsim/ahb"
)

// ErrReadOnly is the error of bus writes to a read-only memory.
var ErrReadOnly = errors.New("memory is read only")

// A Memory is a storage mapped at a base address. It serves the bus as a
// faking handler with fixed read and write wait states, and the host through
// ReadMemory and WriteMemory.
type Memory struct {
	name       string
	base       uint32
	storage    *Storage
	readWaits  int
	writeWaits int
	readOnly   bool
}

// Name returns the name of the memory.
func (m *Memory) Name() string {
	return m.name
}

// Range returns the addresses the memory covers.
func (m *Memory) Range() ahb.AddressRange {
	return ahb.AddressRange{
		Low:  m.base,
		High: uint64(m.base) + m.storage.Capacity(),
	}
}

// Storage returns the backing storage.
func (m *Memory) Storage() *Storage {
	return m.storage
}

func (m *Memory) check(meta ahb.TransferMeta) error {
	if !m.Range().Covers(meta) {
		return &AddressError{
			Addr:   meta.Addr,
			Len:    int(meta.Size.Bytes()),
			Reason: fmt.Errorf("%w by %s", ErrUnmapped, m.name),
		}
	}

	return nil
}

// PreRead returns the read wait states.
func (m *Memory) PreRead(meta ahb.TransferMeta) (int, error) {
	if err := m.check(meta); err != nil {
		return 0, err
	}

	return m.readWaits, nil
}

// Read returns the bytes of the transfer, right aligned.
func (m *Memory) Read(meta ahb.TransferMeta) ahb.Data {
	buf, err := m.storage.Read(uint64(meta.Addr-m.base), uint64(meta.Size.Bytes()))
	if err != nil {
		panic(err)
	}

	var word [4]byte
	copy(word[:], buf)

	return ahb.Data(binary.LittleEndian.Uint32(word[:]))
}

// PreWrite returns the write wait states.
func (m *Memory) PreWrite(meta ahb.TransferMeta) (int, error) {
	if m.readOnly {
		return 0, ErrReadOnly
	}

	if err := m.check(meta); err != nil {
		return 0, err
	}

	return m.writeWaits, nil
}

// Write stores the bytes of the transfer.
func (m *Memory) Write(meta ahb.TransferMeta, data ahb.Data) {
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], uint32(data))

	err := m.storage.Write(uint64(meta.Addr-m.base), word[:meta.Size.Bytes()])
	if err != nil {
		panic(err)
	}
}

func (m *Memory) hostRange(addr uint32, n int) (uint64, error) {
	r := m.Range()
	if !r.Contains(addr) || uint64(addr)+uint64(n) > r.High {
		return 0, &AddressError{Addr: addr, Len: n, Reason: ErrUnmapped}
	}

	return uint64(addr - m.base), nil
}

// ReadMemory copies bytes out of the memory without a bus transfer.
func (m *Memory) ReadMemory(addr uint32, buf []byte) error {
	offset, err := m.hostRange(addr, len(buf))
	if err != nil {
		return err
	}

	data, err := m.storage.Read(offset, uint64(len(buf)))
	if err != nil {
		return &AddressError{Addr: addr, Len: len(buf), Reason: err}
	}

	copy(buf, data)

	return nil
}

// WriteMemory copies bytes into the memory without a bus transfer. It works
// on read-only memories too, as loaders use it to place images.
func (m *Memory) WriteMemory(addr uint32, data []byte) error {
	offset, err := m.hostRange(addr, len(data))
	if err != nil {
		return err
	}

	if err := m.storage.Write(offset, data); err != nil {
		return &AddressError{Addr: addr, Len: len(data), Reason: err}
	}

	return nil
}
