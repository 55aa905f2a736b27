// Package disasm decodes a 32-bit Luz instruction word back into
// mnemonic and operand text, the inverse of encoding/instrset. Used
// by the luzrun driver's --trace mode.
package disasm

import (
	"fmt"

	"github.com/eliben/luz-cpu/encoding"
)

// Disassemble decodes word into a line of assembly text such as
// "add $r8, $r6, $r4". Unrecognized opcodes print as
// ".word 0x<hex> # unknown opcode".
func Disassemble(word uint32) string {
	op := encoding.Opcode(encoding.ExtractBitfield(word, 31, 26))
	if !op.Valid() {
		return fmt.Sprintf(".word 0x%08X # unknown opcode", word)
	}

	switch encoding.FormatOf(op) {
	case encoding.FormatR:
		f := encoding.DecodeRType(word)
		return fmt.Sprintf("%s $r%d, $r%d, $r%d", op, f.Rd, f.Rs, f.Rt)

	case encoding.FormatI:
		f := encoding.DecodeIType(word)
		return disassembleIType(op, f)

	case encoding.FormatJ:
		f := encoding.DecodeJType(word)
		if op == encoding.OpCall {
			return fmt.Sprintf("call 0x%X # absolute word address", f.Imm26)
		}
		delta := encoding.SignExtend(f.Imm26, 26)
		return fmt.Sprintf("b %d # pc-relative word offset", delta)

	case encoding.FormatOneReg:
		f := encoding.DecodeOneRegType(word)
		return fmt.Sprintf("jr $r%d", f.Rd)

	case encoding.FormatLUI:
		f := encoding.DecodeLUIType(word)
		return fmt.Sprintf("lui $r%d, 0x%04X", f.Rd, f.Imm16)

	case encoding.FormatNoOperand:
		return op.String()

	default:
		return fmt.Sprintf(".word 0x%08X # unrecognized format", word)
	}
}

var loadOps = map[encoding.Opcode]bool{
	encoding.OpLb: true, encoding.OpLh: true, encoding.OpLw: true,
	encoding.OpLbu: true, encoding.OpLhu: true,
}

var storeOps = map[encoding.Opcode]bool{
	encoding.OpSb: true, encoding.OpSh: true, encoding.OpSw: true,
}

var branchOps = map[encoding.Opcode]bool{
	encoding.OpBeq: true, encoding.OpBne: true, encoding.OpBge: true,
	encoding.OpBgt: true, encoding.OpBle: true, encoding.OpBlt: true,
	encoding.OpBgeu: true, encoding.OpBgtu: true, encoding.OpBleu: true,
	encoding.OpBltu: true,
}

func disassembleIType(op encoding.Opcode, f encoding.IType) string {
	switch {
	case loadOps[op]:
		imm := encoding.SignExtend(f.Imm16, 16)
		return fmt.Sprintf("%s $r%d, %d($r%d)", op, f.Rd, imm, f.Rs)
	case storeOps[op]:
		imm := encoding.SignExtend(f.Imm16, 16)
		return fmt.Sprintf("%s $r%d, %d($r%d)", op, f.Rs, imm, f.Rd)
	case branchOps[op]:
		delta := encoding.SignExtend(f.Imm16, 16)
		return fmt.Sprintf("%s $r%d, $r%d, %d # pc-relative word offset", op, f.Rd, f.Rs, delta)
	default:
		return fmt.Sprintf("%s $r%d, $r%d, 0x%04X", op, f.Rd, f.Rs, f.Imm16)
	}
}
