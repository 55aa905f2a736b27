package instrset

import (
	"fmt"
	"testing"

	"github.com/eliben/luz-cpu/asmir"
	"github.com/eliben/luz-cpu/encoding"
	"github.com/eliben/luz-cpu/objfile"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func here() objfile.SegAddr { return objfile.SegAddr{Segment: "text", Offset: 0} }

func TestAddEncodesRType(t *testing.T) {
	args := []asmir.Argument{asmir.Id("$t0"), asmir.Id("$t1"), asmir.Id("$t2")}
	ais, err := Assemble("add", args, here(), SymTab{}, Defines{})
	assert(t, err == nil, "add should assemble: %v", err)
	assert(t, len(ais) == 1, "add should produce one word")

	got := encoding.DecodeRType(ais[0].Word)
	want := encoding.RType{Op: encoding.OpAdd, Rd: 8, Rs: 9, Rt: 10}
	assert(t, got == want, "decoded add mismatch: got %+v want %+v", got, want)
}

func TestNegExpandsToSub(t *testing.T) {
	args := []asmir.Argument{asmir.Id("$t0"), asmir.Id("$t1")}
	ais, err := Assemble("neg", args, here(), SymTab{}, Defines{})
	assert(t, err == nil, "neg should assemble: %v", err)
	assert(t, len(ais) == 1, "neg should produce one word")

	got := encoding.DecodeRType(ais[0].Word)
	assert(t, got.Op == encoding.OpSub, "neg must expand to SUB, got opcode %v", got.Op)
	assert(t, got.Rd == 8 && got.Rs == 0 && got.Rt == 9,
		"neg $t0, $t1 should compute $t0 = $zero - $t1, got %+v", got)
}

func TestLiExpandsToLuiOri(t *testing.T) {
	args := []asmir.Argument{asmir.Id("$t0"), asmir.Number(0xDEADBEEF)}
	ais, err := Assemble("li", args, here(), SymTab{}, Defines{})
	assert(t, err == nil, "li should assemble: %v", err)
	assert(t, len(ais) == 2, "li should produce two words, got %d", len(ais))

	lui := encoding.DecodeLUIType(ais[0].Word)
	assert(t, lui.Op == encoding.OpLui && lui.Imm16 == 0xDEAD, "li high half wrong: %+v", lui)

	ori := encoding.DecodeIType(ais[1].Word)
	assert(t, ori.Op == encoding.OpOri && ori.Imm16 == 0xBEEF, "li low half wrong: %+v", ori)
}

func TestLiWithUndefinedSymbolProducesImport(t *testing.T) {
	args := []asmir.Argument{asmir.Id("$t0"), asmir.Id("undefined_symbol")}
	ais, err := Assemble("li", args, here(), SymTab{}, Defines{})
	assert(t, err == nil, "li with an undefined symbol should still assemble: %v", err)
	assert(t, ais[0].ImportReq != nil, "expected an ImportReq for an undefined li target")
	assert(t, ais[0].ImportReq.Kind == objfile.ImportLI, "expected ImportLI kind")
	assert(t, ais[0].ImportReq.Symbol == "undefined_symbol", "expected symbol name preserved")
}

func TestCallWithLocalSymbolProducesReloc(t *testing.T) {
	symtab := SymTab{"target": objfile.SegAddr{Segment: "text", Offset: 40}}
	args := []asmir.Argument{asmir.Id("target")}
	ais, err := Assemble("call", args, here(), symtab, Defines{})
	assert(t, err == nil, "call should assemble: %v", err)
	assert(t, ais[0].RelocReq != nil, "expected a RelocReq for a same-segment call target")
	assert(t, ais[0].RelocReq.Kind == objfile.RelocCall, "expected RelocCall kind")

	got := encoding.DecodeJType(ais[0].Word)
	assert(t, got.Imm26 == 10, "expected encoded word offset 40/4=10, got %d", got.Imm26)
}

func TestBranchOffsetMustBeWordAligned(t *testing.T) {
	symtab := SymTab{"target": objfile.SegAddr{Segment: "text", Offset: 6}}
	args := []asmir.Argument{asmir.Id("$t0"), asmir.Id("$t1"), asmir.Id("target")}
	_, err := Assemble("beq", args, objfile.SegAddr{Segment: "text", Offset: 0}, symtab, Defines{})
	assert(t, err != nil, "expected an error for a non-word-aligned branch target")
}

func TestBranchAcrossSegmentsRejected(t *testing.T) {
	symtab := SymTab{"target": objfile.SegAddr{Segment: "data", Offset: 0}}
	args := []asmir.Argument{asmir.Id("$t0"), asmir.Id("$t1"), asmir.Id("target")}
	_, err := Assemble("beq", args, objfile.SegAddr{Segment: "text", Offset: 0}, symtab, Defines{})
	assert(t, err != nil, "expected an error for a cross-segment branch")
}

func TestRegisterZeroAliasResolves(t *testing.T) {
	n, ok := encoding.RegisterNumber("$zero")
	assert(t, ok && n == 0, "expected $zero to resolve to register 0")
	n, ok = encoding.RegisterNumber("$r0")
	assert(t, ok && n == 0, "expected $r0 to resolve to register 0")
}

func TestUnknownMnemonicRejected(t *testing.T) {
	_, err := Assemble("frobnicate", nil, here(), SymTab{}, Defines{})
	assert(t, err != nil, "expected an error for an unknown mnemonic")
}

func TestExistsAndLength(t *testing.T) {
	assert(t, Exists("add"), "add should be a known mnemonic")
	assert(t, Exists("li"), "li should be a known pseudo-mnemonic")
	assert(t, !Exists("frobnicate"), "frobnicate should not be a known mnemonic")

	n, ok := Length("add")
	assert(t, ok && n == 4, "add should be 4 bytes, got %d", n)
	n, ok = Length("li")
	assert(t, ok && n == 8, "li should be 8 bytes, got %d", n)
}

func TestMoveExpandsToAddWithZero(t *testing.T) {
	args := []asmir.Argument{asmir.Id("$t0"), asmir.Id("$t1")}
	ais, err := Assemble("move", args, here(), SymTab{}, Defines{})
	assert(t, err == nil, "move should assemble: %v", err)
	got := encoding.DecodeRType(ais[0].Word)
	assert(t, got.Op == encoding.OpAdd && got.Rt == 0, "move should add with $zero, got %+v", got)
}

func TestRetExpandsToJrRa(t *testing.T) {
	ais, err := Assemble("ret", nil, here(), SymTab{}, Defines{})
	assert(t, err == nil, "ret should assemble: %v", err)
	got := encoding.DecodeOneRegType(ais[0].Word)
	assert(t, got.Op == encoding.OpJr && got.Rd == 31, "ret should be jr $ra, got %+v", got)
}
