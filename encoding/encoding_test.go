package encoding

import (
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestBitfieldRoundTrip(t *testing.T) {
	word := BuildBitfield(31, 26, 0x3F) | BuildBitfield(25, 21, 17) | BuildBitfield(20, 16, 3)
	assert(t, ExtractBitfield(word, 31, 26) == 0x3F, "opcode field corrupted: %08X", word)
	assert(t, ExtractBitfield(word, 25, 21) == 17, "rd field corrupted: %08X", word)
	assert(t, ExtractBitfield(word, 20, 16) == 3, "rs field corrupted: %08X", word)
}

func TestBuildBitfieldMasksOverflow(t *testing.T) {
	v := BuildBitfield(4, 0, 0xFF)
	assert(t, v == 0x1F, "expected value truncated to 5 bits, got %X", v)
}

func TestSignExtend(t *testing.T) {
	assert(t, SignExtend(0x7FFF, 16) == 32767, "positive imm16 sign-extended wrong")
	assert(t, SignExtend(0xFFFF, 16) == -1, "negative imm16 sign-extended wrong")
	assert(t, SignExtend(0x2000000, 26) == -33554432, "negative imm26 sign-extended wrong: %d", SignExtend(0x2000000, 26))
}

func TestFitsField(t *testing.T) {
	assert(t, FitsUnsigned(65535, 16), "65535 should fit unsigned 16 bits")
	assert(t, !FitsUnsigned(65536, 16), "65536 should not fit unsigned 16 bits")
	assert(t, FitsSigned(-32768, 16), "-32768 should fit signed 16 bits")
	assert(t, !FitsSigned(-32769, 16), "-32769 should not fit signed 16 bits")
	assert(t, FitsField(-1, 16), "-1 should fit as signed 16 bits")
	assert(t, FitsField(65535, 16), "65535 should fit as unsigned 16 bits")
}

func TestMaskToBits(t *testing.T) {
	assert(t, MaskToBits(-1, 16) == 0xFFFF, "expected -1 masked to 0xFFFF, got %X", MaskToBits(-1, 16))
	assert(t, MaskToBits(256, 8) == 0, "expected 256 masked to 0 in 8 bits, got %X", MaskToBits(256, 8))
}

func TestOpcodeNameRoundTrip(t *testing.T) {
	for name, op := range namesToOpcode {
		assert(t, op.Valid(), "opcode for %s should be valid", name)
		assert(t, op.String() == name, "opcode %v should print back as %s, got %s", op, name, op.String())
		looked, ok := LookupOpcode(name)
		assert(t, ok && looked == op, "LookupOpcode(%s) should return %v", name, op)
	}
}

func TestUnknownOpcode(t *testing.T) {
	unknown := Opcode(0x3D)
	assert(t, !unknown.Valid(), "0x3D should not be a valid opcode")
	assert(t, unknown.String() == "?unknown-opcode?", "unknown opcode should report the placeholder name")
}

func TestRTypeRoundTrip(t *testing.T) {
	want := RType{Op: OpAdd, Rd: 5, Rs: 6, Rt: 7}
	word := EncodeRType(want)
	got := DecodeRType(word)
	assert(t, got == want, "RType round trip mismatch: got %+v want %+v", got, want)
}

func TestITypeRoundTrip(t *testing.T) {
	want := IType{Op: OpAddi, Rd: 1, Rs: 2, Imm16: 0xFFFE}
	word := EncodeIType(want)
	got := DecodeIType(word)
	assert(t, got == want, "IType round trip mismatch: got %+v want %+v", got, want)
}

func TestJTypeRoundTrip(t *testing.T) {
	want := JType{Op: OpCall, Imm26: 0x3FFFFFF}
	word := EncodeJType(want)
	got := DecodeJType(word)
	assert(t, got == want, "JType round trip mismatch: got %+v want %+v", got, want)
}

func TestOneRegRoundTrip(t *testing.T) {
	want := OneRegType{Op: OpJr, Rd: 31}
	word := EncodeOneRegType(want)
	got := DecodeOneRegType(word)
	assert(t, got == want, "OneRegType round trip mismatch: got %+v want %+v", got, want)
}

func TestLUIRoundTrip(t *testing.T) {
	want := LUIType{Op: OpLui, Rd: 4, Imm16: 0xBEEF}
	word := EncodeLUIType(want)
	got := DecodeLUIType(word)
	assert(t, got == want, "LUIType round trip mismatch: got %+v want %+v", got, want)
}

func TestFormatOfCoversEveryOpcode(t *testing.T) {
	for op := range opcodeNames {
		_, ok := formatOf[op]
		assert(t, ok, "opcode %v has no format entry", op)
	}
}
