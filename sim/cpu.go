// Package sim implements the Luz cycle-accurate instruction-set
// simulator: register file, memory-mapped peripherals, per-opcode
// dispatch, and the exception enter/exit model.
package sim

import (
	"errors"

	"github.com/eliben/luz-cpu/encoding"
)

// Exception cause codes, per §4.5.
const (
	CauseTrap          uint32 = 1
	CauseDivideByZero  uint32 = 2
	CauseMemoryAccess  uint32 = 3
	CauseInvalidOpcode uint32 = 4
	CauseInterrupt     uint32 = 32
)

// Default base address and memory size, matching the linker's
// defaults (link.DefaultBaseAddress/DefaultMemSize) so an image built
// with default link.New() settings runs unmodified under default
// sim.New().
const (
	DefaultBaseAddress uint32 = 0x100000
	DefaultMemSize     uint32 = 0x40000
)

// CPU is the simulator's full machine state: register file, program
// counter, exception flags, memory unit, and the peripherals it owns.
type CPU struct {
	GPR [encoding.NumRegisters]uint32
	PC  uint32

	Halted      bool
	InException bool

	Mem    *MemoryUnit
	Cregs  *CoreRegisters
	DebugQ *DebugQueue

	baseAddress uint32
}

// New constructs a CPU over image using the default base address and
// memory size.
func New(image []byte) *CPU {
	return NewWithConfig(image, DefaultBaseAddress, DefaultMemSize)
}

// NewWithConfig constructs a CPU over image, loaded at baseAddress
// with a user memory region of memSize bytes, and registers the
// CoreRegisters and DebugQueue peripherals at their fixed addresses.
func NewWithConfig(image []byte, baseAddress, memSize uint32) *CPU {
	c := &CPU{
		Mem:         NewMemoryUnit(baseAddress, memSize, image),
		Cregs:       NewCoreRegisters(),
		DebugQ:      NewDebugQueue(),
		baseAddress: baseAddress,
	}
	c.Mem.RegisterPeripheral(CoreRegistersBase, CoreRegistersSize, c.Cregs)
	c.Mem.RegisterPeripheral(DebugQueueBase, DebugQueueSize, c.DebugQ)
	c.PC = baseAddress
	return c
}

// Restart re-zeros the GPRs and core registers, resets the PC to the
// base address, and clears halted/in_exception. User memory and the
// DebugQueue are left as they are; only a fresh New call reloads the
// image.
func (c *CPU) Restart() {
	for i := range c.GPR {
		c.GPR[i] = 0
	}
	c.Cregs.Reset()
	c.PC = c.baseAddress
	c.Halted = false
	c.InException = false
}

// RegValue returns the current value of general-purpose register n.
func (c *CPU) RegValue(n int) uint32 {
	return c.GPR[n]
}

// setReg writes v to register n, silently discarding writes to
// register 0.
func (c *CPU) setReg(n int, v uint32) {
	if n == 0 {
		return
	}
	c.GPR[n] = v
}

// Run steps the CPU until it halts.
func (c *CPU) Run() {
	for !c.Halted {
		c.Step()
	}
}

// Step executes exactly one instruction, or enters an exception if
// the fetch/decode/execute fails.
func (c *CPU) Step() {
	if c.Halted {
		return
	}

	instr, err := c.Mem.ReadInstruction(c.PC)
	if err != nil {
		c.enter(CauseMemoryAccess, false)
		return
	}

	op := encoding.Opcode(encoding.ExtractBitfield(instr, 31, 26))
	handler, ok := opTable[op]
	if !ok {
		c.enter(CauseInvalidOpcode, false)
		return
	}

	if err := handler(c, instr); err != nil {
		if errors.Is(err, errDivisionByZero) {
			c.enter(CauseDivideByZero, false)
			return
		}
		c.enter(CauseMemoryAccess, false)
	}
}

// enter invokes the exception model per §4.5: a nested exception
// halts the CPU instead of re-entering.
func (c *CPU) enter(cause uint32, fromInterrupt bool) {
	if c.InException {
		c.Halted = true
		return
	}
	c.InException = true
	returnAddr := c.PC + 4
	if fromInterrupt {
		returnAddr = c.PC
	}
	c.Cregs.Set(RegExceptionReturnAddr, returnAddr)
	c.Cregs.Set(RegExceptionCause, cause)
	c.PC = c.Cregs.Get(RegExceptionVector)
}

// exit implements ERET: return from the current exception.
func (c *CPU) exit() {
	c.PC = c.Cregs.Get(RegExceptionReturnAddr)
	c.InException = false
}
