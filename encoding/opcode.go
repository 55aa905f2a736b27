// Package encoding defines the Luz 32-bit fixed-width instruction
// encoding: opcode constants, instruction formats, bitfield packing,
// and register aliases. It has no notion of assembly source, symbols,
// or object files — those live in instrset, asmir, and asm.
package encoding

// Opcode is the 6-bit operation code occupying bits [31:26] of every
// Luz instruction word.
type Opcode byte

const (
	OpAdd  Opcode = 0x00
	OpSub  Opcode = 0x01
	OpMulu Opcode = 0x02
	OpMul  Opcode = 0x03
	OpDivu Opcode = 0x04
	OpDiv  Opcode = 0x05
	OpLui  Opcode = 0x06
	OpSll  Opcode = 0x07
	OpSrl  Opcode = 0x08
	OpAnd  Opcode = 0x09
	OpOr   Opcode = 0x0A
	OpNor  Opcode = 0x0B
	OpXor  Opcode = 0x0C
	OpLb   Opcode = 0x0D
	OpLh   Opcode = 0x0E
	OpLw   Opcode = 0x0F
	OpLbu  Opcode = 0x10
	OpLhu  Opcode = 0x11
	OpSb   Opcode = 0x12
	OpSh   Opcode = 0x13
	OpSw   Opcode = 0x14
	OpB    Opcode = 0x15
	OpJr   Opcode = 0x16
	OpBeq  Opcode = 0x17
	OpBne  Opcode = 0x18
	OpBge  Opcode = 0x19
	OpBgt  Opcode = 0x1A
	OpBle  Opcode = 0x1B
	OpBlt  Opcode = 0x1C
	OpCall Opcode = 0x1D
	OpAddi Opcode = 0x20
	OpSubi Opcode = 0x21
	OpBgeu Opcode = 0x22
	OpBgtu Opcode = 0x23
	OpBleu Opcode = 0x24
	OpBltu Opcode = 0x25
	OpAndi Opcode = 0x29
	OpOri  Opcode = 0x2A
	OpSlli Opcode = 0x2B
	OpSrli Opcode = 0x2C
	OpEret Opcode = 0x3E
	OpHalt Opcode = 0x3F
)

var opcodeNames = map[Opcode]string{
	OpAdd: "add", OpSub: "sub", OpMulu: "mulu", OpMul: "mul",
	OpDivu: "divu", OpDiv: "div", OpLui: "lui", OpSll: "sll",
	OpSrl: "srl", OpAnd: "and", OpOr: "or", OpNor: "nor", OpXor: "xor",
	OpLb: "lb", OpLh: "lh", OpLw: "lw", OpLbu: "lbu", OpLhu: "lhu",
	OpSb: "sb", OpSh: "sh", OpSw: "sw", OpB: "b", OpJr: "jr",
	OpBeq: "beq", OpBne: "bne", OpBge: "bge", OpBgt: "bgt", OpBle: "ble",
	OpBlt: "blt", OpCall: "call", OpAddi: "addi", OpSubi: "subi",
	OpBgeu: "bgeu", OpBgtu: "bgtu", OpBleu: "bleu", OpBltu: "bltu",
	OpAndi: "andi", OpOri: "ori", OpSlli: "slli", OpSrli: "srli",
	OpEret: "eret", OpHalt: "halt",
}

var namesToOpcode map[string]Opcode

func init() {
	namesToOpcode = make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		namesToOpcode[name] = op
	}
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "?unknown-opcode?"
}

// Valid reports whether op is one of the defined 6-bit opcodes.
func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// LookupOpcode returns the opcode bound to a real (non-pseudo)
// mnemonic, if any.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	op, ok := namesToOpcode[mnemonic]
	return op, ok
}
