package sim

// Core register addresses, memory-mapped in [0x000, 0xFFF].
const (
	RegExceptionVector     uint32 = 0x004
	RegControl1            uint32 = 0x100
	RegExceptionCause      uint32 = 0x108
	RegExceptionReturnAddr uint32 = 0x10C
	RegInterruptEnable     uint32 = 0x120
	RegInterruptPending    uint32 = 0x124
)

// CoreRegistersBase/Size is the peripheral range the simulator
// registers CoreRegisters at.
const (
	CoreRegistersBase uint32 = 0x000
	CoreRegistersSize uint32 = 0x1000
)

var userWritableCoreReg = map[uint32]bool{
	RegExceptionVector: true,
	RegControl1:        true,
	RegInterruptEnable: true,
}

var knownCoreReg = map[uint32]bool{
	RegExceptionVector:     true,
	RegControl1:            true,
	RegExceptionCause:      true,
	RegExceptionReturnAddr: true,
	RegInterruptEnable:     true,
	RegInterruptPending:    true,
}

// CoreRegisters is the memory-mapped register file the exception
// model and interrupt controller read and write through. User
// writes to read-only registers are silently ignored; the CPU
// itself writes exception_cause/exception_return_addr directly via
// the exported setter methods, bypassing the read-only check.
type CoreRegisters struct {
	values map[uint32]uint32
}

// NewCoreRegisters returns a CoreRegisters peripheral with every
// known register zeroed.
func NewCoreRegisters() *CoreRegisters {
	c := &CoreRegisters{values: make(map[uint32]uint32)}
	c.Reset()
	return c
}

// Reset zeros every known core register.
func (c *CoreRegisters) Reset() {
	for addr := range knownCoreReg {
		c.values[addr] = 0
	}
}

func (c *CoreRegisters) Read(offset uint32, width int) (uint32, error) {
	if width != 4 || offset%4 != 0 {
		return 0, &PeripheralMemoryAlignError{Addr: CoreRegistersBase + offset, Width: width}
	}
	if !knownCoreReg[offset] {
		return 0, &PeripheralMemoryAccessError{Addr: CoreRegistersBase + offset}
	}
	return c.values[offset], nil
}

func (c *CoreRegisters) Write(offset uint32, width int, value uint32) error {
	if width != 4 || offset%4 != 0 {
		return &PeripheralMemoryAlignError{Addr: CoreRegistersBase + offset, Width: width}
	}
	if !knownCoreReg[offset] {
		return &PeripheralMemoryAccessError{Addr: CoreRegistersBase + offset}
	}
	if !userWritableCoreReg[offset] {
		return nil
	}
	c.values[offset] = value
	return nil
}

// Get reads a register's value directly, bypassing the peripheral
// interface's width/alignment checks — used by the CPU's own
// exception logic.
func (c *CoreRegisters) Get(addr uint32) uint32 { return c.values[addr] }

// Set writes a register's value directly, bypassing the
// user-writable check — used by the CPU's own exception logic to
// update read-only registers like exception_cause.
func (c *CoreRegisters) Set(addr, value uint32) { c.values[addr] = value }
