package disasm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/eliben/luz-cpu/encoding"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestDisassembleRType(t *testing.T) {
	word := encoding.EncodeRType(encoding.RType{Op: encoding.OpAdd, Rd: 8, Rs: 6, Rt: 4})
	text := Disassemble(word)
	assert(t, text == "add $r8, $r6, $r4", "unexpected disassembly: %q", text)
}

func TestDisassembleLoad(t *testing.T) {
	word := encoding.EncodeIType(encoding.IType{Op: encoding.OpLw, Rd: 2, Rs: 29, Imm16: encoding.MaskToBits(-4, 16)})
	text := Disassemble(word)
	assert(t, text == "lw $r2, -4($r29)", "unexpected disassembly: %q", text)
}

func TestDisassembleStoreUsesRsAsValueAndRdAsBase(t *testing.T) {
	word := encoding.EncodeIType(encoding.IType{Op: encoding.OpSw, Rd: 29, Rs: 8, Imm16: 0})
	text := Disassemble(word)
	assert(t, text == "sw $r8, 0($r29)", "unexpected disassembly: %q", text)
}

func TestDisassembleBranch(t *testing.T) {
	word := encoding.EncodeIType(encoding.IType{Op: encoding.OpBeq, Rd: 1, Rs: 2, Imm16: encoding.MaskToBits(-2, 16)})
	text := Disassemble(word)
	assert(t, strings.HasPrefix(text, "beq $r1, $r2, -2"), "unexpected disassembly: %q", text)
}

func TestDisassembleCallPrintsAbsoluteWordAddress(t *testing.T) {
	word := encoding.EncodeJType(encoding.JType{Op: encoding.OpCall, Imm26: 0x1000})
	text := Disassemble(word)
	assert(t, strings.HasPrefix(text, "call 0x1000"), "unexpected disassembly: %q", text)
}

func TestDisassembleJr(t *testing.T) {
	word := encoding.EncodeOneRegType(encoding.OneRegType{Op: encoding.OpJr, Rd: 31})
	text := Disassemble(word)
	assert(t, text == "jr $r31", "unexpected disassembly: %q", text)
}

func TestDisassembleLui(t *testing.T) {
	word := encoding.EncodeLUIType(encoding.LUIType{Op: encoding.OpLui, Rd: 5, Imm16: 0xBEEF})
	text := Disassemble(word)
	assert(t, text == "lui $r5, 0xBEEF", "unexpected disassembly: %q", text)
}

func TestDisassembleNoOperand(t *testing.T) {
	text := Disassemble(encoding.EncodeNoOperand(encoding.OpHalt))
	assert(t, text == "halt", "unexpected disassembly: %q", text)
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	word := encoding.BuildBitfield(31, 26, 0x3D)
	text := Disassemble(word)
	assert(t, strings.Contains(text, "unknown opcode"), "expected unknown-opcode fallback, got %q", text)
}
