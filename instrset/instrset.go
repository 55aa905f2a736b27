// Package instrset implements the Luz instruction set: operand
// validation, per-mnemonic instruction construction, pseudo-
// instruction expansion, and CALL/LI import/relocation resolution.
// It has no notion of segments-as-a-whole or object files beyond the
// addressing types it borrows from objfile.
package instrset

import (
	"github.com/eliben/luz-cpu/asmir"
	"github.com/eliben/luz-cpu/encoding"
	"github.com/eliben/luz-cpu/objfile"
)

// ImportReq and RelocReq mirror objfile's entry types but without the
// patch address, which the assembler fills in once it knows the
// current emission offset.
type ImportReq struct {
	Kind   objfile.ImportKind
	Symbol string
}

type RelocReq struct {
	Kind    objfile.RelocKind
	Segment string
}

// AssembledInstruction is one encoded 32-bit word plus, optionally, an
// outstanding import or relocation request against it.
type AssembledInstruction struct {
	Word      uint32
	ImportReq *ImportReq
	RelocReq  *RelocReq
}

type constructor func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error)

type entry struct {
	length      int // 4 or 8 bytes
	build       constructor
}

var table map[string]entry

func init() {
	table = make(map[string]entry)

	reg3 := func(op encoding.Opcode) constructor {
		return func(mnemonic string, args []asmir.Argument, _ objfile.SegAddr, _ SymTab, _ Defines) ([]AssembledInstruction, error) {
			if len(args) != 3 {
				return nil, errf(mnemonic, "expects 3 register operands")
			}
			rd, err := regOperand(mnemonic, args[0])
			if err != nil {
				return nil, err
			}
			rs, err := regOperand(mnemonic, args[1])
			if err != nil {
				return nil, err
			}
			rt, err := regOperand(mnemonic, args[2])
			if err != nil {
				return nil, err
			}
			word := encoding.EncodeRType(encoding.RType{Op: op, Rd: rd, Rs: rs, Rt: rt})
			return []AssembledInstruction{{Word: word}}, nil
		}
	}

	regImm := func(op encoding.Opcode) constructor {
		return func(mnemonic string, args []asmir.Argument, _ objfile.SegAddr, _ SymTab, defines Defines) ([]AssembledInstruction, error) {
			if len(args) != 3 {
				return nil, errf(mnemonic, "expects rd, rs, imm16")
			}
			rd, err := regOperand(mnemonic, args[0])
			if err != nil {
				return nil, err
			}
			rs, err := regOperand(mnemonic, args[1])
			if err != nil {
				return nil, err
			}
			imm, err := defineOrConstOperand(mnemonic, args[2], defines, 16)
			if err != nil {
				return nil, err
			}
			word := encoding.EncodeIType(encoding.IType{Op: op, Rd: rd, Rs: rs, Imm16: encoding.MaskToBits(imm, 16)})
			return []AssembledInstruction{{Word: word}}, nil
		}
	}

	load := func(op encoding.Opcode) constructor {
		return func(mnemonic string, args []asmir.Argument, _ objfile.SegAddr, _ SymTab, defines Defines) ([]AssembledInstruction, error) {
			if len(args) != 2 {
				return nil, errf(mnemonic, "expects rd, offset(rs)")
			}
			rd, err := regOperand(mnemonic, args[0])
			if err != nil {
				return nil, err
			}
			base, offset, err := memRefOperand(mnemonic, args[1], defines)
			if err != nil {
				return nil, err
			}
			word := encoding.EncodeIType(encoding.IType{Op: op, Rd: rd, Rs: base, Imm16: encoding.MaskToBits(offset, 16)})
			return []AssembledInstruction{{Word: word}}, nil
		}
	}

	store := func(op encoding.Opcode) constructor {
		return func(mnemonic string, args []asmir.Argument, _ objfile.SegAddr, _ SymTab, defines Defines) ([]AssembledInstruction, error) {
			if len(args) != 2 {
				return nil, errf(mnemonic, "expects rs, offset(rd)")
			}
			valueReg, err := regOperand(mnemonic, args[0])
			if err != nil {
				return nil, err
			}
			base, offset, err := memRefOperand(mnemonic, args[1], defines)
			if err != nil {
				return nil, err
			}
			word := encoding.EncodeIType(encoding.IType{Op: op, Rd: base, Rs: valueReg, Imm16: encoding.MaskToBits(offset, 16)})
			return []AssembledInstruction{{Word: word}}, nil
		}
	}

	branch16 := func(op encoding.Opcode) constructor {
		return func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, _ Defines) ([]AssembledInstruction, error) {
			if len(args) != 3 {
				return nil, errf(mnemonic, "expects rd, rs, label")
			}
			rd, err := regOperand(mnemonic, args[0])
			if err != nil {
				return nil, err
			}
			rs, err := regOperand(mnemonic, args[1])
			if err != nil {
				return nil, err
			}
			delta, err := branchOffsetOperand(mnemonic, args[2], 16, instrAddr, symtab)
			if err != nil {
				return nil, err
			}
			word := encoding.EncodeIType(encoding.IType{Op: op, Rd: rd, Rs: rs, Imm16: encoding.MaskToBits(delta, 16)})
			return []AssembledInstruction{{Word: word}}, nil
		}
	}

	jr := func(mnemonic string, args []asmir.Argument, _ objfile.SegAddr, _ SymTab, _ Defines) ([]AssembledInstruction, error) {
		if len(args) != 1 {
			return nil, errf(mnemonic, "expects a single register operand")
		}
		rd, err := regOperand(mnemonic, args[0])
		if err != nil {
			return nil, err
		}
		word := encoding.EncodeOneRegType(encoding.OneRegType{Op: encoding.OpJr, Rd: rd})
		return []AssembledInstruction{{Word: word}}, nil
	}

	lui := func(mnemonic string, args []asmir.Argument, _ objfile.SegAddr, _ SymTab, defines Defines) ([]AssembledInstruction, error) {
		if len(args) != 2 {
			return nil, errf(mnemonic, "expects rd, imm16")
		}
		rd, err := regOperand(mnemonic, args[0])
		if err != nil {
			return nil, err
		}
		imm, err := defineOrConstOperand(mnemonic, args[1], defines, 16)
		if err != nil {
			return nil, err
		}
		word := encoding.EncodeLUIType(encoding.LUIType{Op: encoding.OpLui, Rd: rd, Imm16: encoding.MaskToBits(imm, 16)})
		return []AssembledInstruction{{Word: word}}, nil
	}

	noOperand := func(op encoding.Opcode) constructor {
		return func(mnemonic string, args []asmir.Argument, _ objfile.SegAddr, _ SymTab, _ Defines) ([]AssembledInstruction, error) {
			if len(args) != 0 {
				return nil, errf(mnemonic, "expects no operands")
			}
			return []AssembledInstruction{{Word: encoding.EncodeNoOperand(op)}}, nil
		}
	}

	b := func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, _ Defines) ([]AssembledInstruction, error) {
		if len(args) != 1 {
			return nil, errf(mnemonic, "expects a single label or offset operand")
		}
		delta, err := branchOffsetOperand(mnemonic, args[0], 26, instrAddr, symtab)
		if err != nil {
			return nil, err
		}
		word := encoding.EncodeJType(encoding.JType{Op: encoding.OpB, Imm26: encoding.MaskToBits(delta, 26)})
		return []AssembledInstruction{{Word: word}}, nil
	}

	call := func(mnemonic string, args []asmir.Argument, _ objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
		if len(args) != 1 {
			return nil, errf(mnemonic, "expects a single target operand")
		}
		imm26, req, err := resolveCallTarget(mnemonic, args[0], symtab, defines)
		if err != nil {
			return nil, err
		}
		word := encoding.EncodeJType(encoding.JType{Op: encoding.OpCall, Imm26: encoding.MaskToBits(imm26, 26)})
		ai := AssembledInstruction{Word: word}
		if req != nil {
			ai.ImportReq, ai.RelocReq = req.asImportOrReloc()
		}
		return []AssembledInstruction{ai}, nil
	}

	table["add"] = entry{4, reg3(encoding.OpAdd)}
	table["sub"] = entry{4, reg3(encoding.OpSub)}
	table["mulu"] = entry{4, reg3(encoding.OpMulu)}
	table["mul"] = entry{4, reg3(encoding.OpMul)}
	table["divu"] = entry{4, reg3(encoding.OpDivu)}
	table["div"] = entry{4, reg3(encoding.OpDiv)}
	table["and"] = entry{4, reg3(encoding.OpAnd)}
	table["or"] = entry{4, reg3(encoding.OpOr)}
	table["nor"] = entry{4, reg3(encoding.OpNor)}
	table["xor"] = entry{4, reg3(encoding.OpXor)}
	table["sll"] = entry{4, reg3(encoding.OpSll)}
	table["srl"] = entry{4, reg3(encoding.OpSrl)}

	table["addi"] = entry{4, regImm(encoding.OpAddi)}
	table["subi"] = entry{4, regImm(encoding.OpSubi)}
	table["andi"] = entry{4, regImm(encoding.OpAndi)}
	table["ori"] = entry{4, regImm(encoding.OpOri)}
	table["slli"] = entry{4, regImm(encoding.OpSlli)}
	table["srli"] = entry{4, regImm(encoding.OpSrli)}

	table["lb"] = entry{4, load(encoding.OpLb)}
	table["lh"] = entry{4, load(encoding.OpLh)}
	table["lw"] = entry{4, load(encoding.OpLw)}
	table["lbu"] = entry{4, load(encoding.OpLbu)}
	table["lhu"] = entry{4, load(encoding.OpLhu)}
	table["sb"] = entry{4, store(encoding.OpSb)}
	table["sh"] = entry{4, store(encoding.OpSh)}
	table["sw"] = entry{4, store(encoding.OpSw)}

	table["beq"] = entry{4, branch16(encoding.OpBeq)}
	table["bne"] = entry{4, branch16(encoding.OpBne)}
	table["bge"] = entry{4, branch16(encoding.OpBge)}
	table["bgt"] = entry{4, branch16(encoding.OpBgt)}
	table["ble"] = entry{4, branch16(encoding.OpBle)}
	table["blt"] = entry{4, branch16(encoding.OpBlt)}
	table["bgeu"] = entry{4, branch16(encoding.OpBgeu)}
	table["bgtu"] = entry{4, branch16(encoding.OpBgtu)}
	table["bleu"] = entry{4, branch16(encoding.OpBleu)}
	table["bltu"] = entry{4, branch16(encoding.OpBltu)}

	table["jr"] = entry{4, jr}
	table["lui"] = entry{4, lui}
	table["eret"] = entry{4, noOperand(encoding.OpEret)}
	table["halt"] = entry{4, noOperand(encoding.OpHalt)}
	table["b"] = entry{4, b}
	table["call"] = entry{4, call}

	registerPseudoInstructions()
}

// Exists reports whether name is a known mnemonic, real or pseudo.
func Exists(name string) bool {
	_, ok := table[name]
	return ok
}

// Length returns the byte length (4 or 8) that name expands to.
func Length(name string) (int, bool) {
	e, ok := table[name]
	if !ok {
		return 0, false
	}
	return e.length, true
}

// Assemble constructs the instruction word(s) for name applied to
// args at instrAddr, consulting symtab/defines for label and .define
// resolution. It returns one AssembledInstruction for every mnemonic
// except li, which returns two (LUI then ORI).
func Assemble(name string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
	e, ok := table[name]
	if !ok {
		return nil, errf(name, "unknown mnemonic")
	}
	return e.build(name, args, instrAddr, symtab, defines)
}
