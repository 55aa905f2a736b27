package sim

import "encoding/binary"

// Peripheral is a memory-mapped device: reads and writes are
// dispatched to it with an address offset relative to its own base.
type Peripheral interface {
	Read(offset uint32, width int) (uint32, error)
	Write(offset uint32, width int, value uint32) error
}

type peripheralRange struct {
	base uint32
	size uint32
	dev  Peripheral
}

// MemoryUnit is the CPU's address space: a range-keyed registry of
// peripherals searched before falling back to flat user memory. An
// ordered slice rather than a per-address map, per the permitted
// efficiency improvement over a dict keyed by every individual
// address.
type MemoryUnit struct {
	baseAddress uint32
	memSize     uint32
	data        []byte
	peripherals []peripheralRange
}

// NewMemoryUnit creates a memory unit whose user region is
// [baseAddress, baseAddress+memSize), initialized from image and
// zero-padded to memSize.
func NewMemoryUnit(baseAddress, memSize uint32, image []byte) *MemoryUnit {
	data := make([]byte, memSize)
	copy(data, image)
	return &MemoryUnit{baseAddress: baseAddress, memSize: memSize, data: data}
}

// RegisterPeripheral maps dev at [base, base+size) in the address
// space, taking priority over user memory.
func (m *MemoryUnit) RegisterPeripheral(base, size uint32, dev Peripheral) {
	m.peripherals = append(m.peripherals, peripheralRange{base: base, size: size, dev: dev})
}

func (m *MemoryUnit) findPeripheral(addr uint32) (Peripheral, uint32, bool) {
	for _, p := range m.peripherals {
		if addr >= p.base && addr < p.base+p.size {
			return p.dev, addr - p.base, true
		}
	}
	return nil, 0, false
}

// ReadInstruction reads a 4-byte little-endian word from user memory
// at addr (instruction fetches never target peripherals).
func (m *MemoryUnit) ReadInstruction(addr uint32) (uint32, error) {
	if addr%4 != 0 {
		return 0, &MemoryAlignError{Addr: addr, Width: 4}
	}
	off, err := m.userOffset(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[off : off+4]), nil
}

// ReadMem reads width (1, 2, or 4) bytes at addr, dispatching to a
// registered peripheral if addr falls within its range.
func (m *MemoryUnit) ReadMem(addr uint32, width int) (uint32, error) {
	if dev, offset, ok := m.findPeripheral(addr); ok {
		return dev.Read(offset, width)
	}
	if addr%uint32(width) != 0 {
		return 0, &MemoryAlignError{Addr: addr, Width: width}
	}
	off, err := m.userOffset(addr, width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint32(m.data[off]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(m.data[off : off+2])), nil
	case 4:
		return binary.LittleEndian.Uint32(m.data[off : off+4]), nil
	default:
		return 0, &MemoryAlignError{Addr: addr, Width: width}
	}
}

// WriteMem writes the low width bytes of value at addr, dispatching
// to a registered peripheral if addr falls within its range.
func (m *MemoryUnit) WriteMem(addr uint32, width int, value uint32) error {
	if dev, offset, ok := m.findPeripheral(addr); ok {
		return dev.Write(offset, width, value)
	}
	if addr%uint32(width) != 0 {
		return &MemoryAlignError{Addr: addr, Width: width}
	}
	off, err := m.userOffset(addr, width)
	if err != nil {
		return err
	}
	switch width {
	case 1:
		m.data[off] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(m.data[off:off+2], uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(m.data[off:off+4], value)
	default:
		return &MemoryAlignError{Addr: addr, Width: width}
	}
	return nil
}

func (m *MemoryUnit) userOffset(addr uint32, width int) (uint32, error) {
	if addr < m.baseAddress || uint64(addr)+uint64(width) > uint64(m.baseAddress)+uint64(m.memSize) {
		return 0, &MemoryAccessError{Addr: addr}
	}
	return addr - m.baseAddress, nil
}
