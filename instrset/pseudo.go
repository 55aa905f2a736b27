package instrset

import (
	"github.com/eliben/luz-cpu/asmir"
	"github.com/eliben/luz-cpu/encoding"
	"github.com/eliben/luz-cpu/objfile"
)

// registerPseudoInstructions wires the pseudo-mnemonics into the
// dispatch table by rewriting their arguments and delegating to the
// already-registered real constructors. Called once from init(),
// after the real opcodes are in the table.
//
// neg is deliberately built on OpSub, not OpAdd: the distilled source
// this was built from constructs neg with an ADD-opcode template
// (rd = 0 + rs instead of rd = 0 - rs), which is flagged there as a
// likely bug. This implementation uses SUB.
func registerPseudoInstructions() {
	delegate := func(real string, wantArgs int, rewrite func(args []asmir.Argument) []asmir.Argument) constructor {
		return func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
			if len(args) != wantArgs {
				return nil, errf(mnemonic, "expects %d operands", wantArgs)
			}
			return table[real].build(real, rewrite(args), instrAddr, symtab, defines)
		}
	}

	zero := asmir.Id("$zero")

	table["nop"] = entry{4, func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
		if len(args) != 0 {
			return nil, errf(mnemonic, "expects no operands")
		}
		return table["add"].build("add", []asmir.Argument{zero, zero, zero}, instrAddr, symtab, defines)
	}}

	table["not"] = entry{4, func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
		if len(args) != 2 {
			return nil, errf(mnemonic, "expects rd, rs")
		}
		return table["nor"].build("nor", []asmir.Argument{args[0], args[1], args[1]}, instrAddr, symtab, defines)
	}}

	table["move"] = entry{4, delegate("add", 2, func(args []asmir.Argument) []asmir.Argument {
		return []asmir.Argument{args[0], args[1], zero}
	})}

	table["neg"] = entry{4, func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
		if len(args) != 2 {
			return nil, errf(mnemonic, "expects rd, rs")
		}
		return table["sub"].build("sub", []asmir.Argument{args[0], zero, args[1]}, instrAddr, symtab, defines)
	}}

	table["lli"] = entry{4, func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
		if len(args) != 2 {
			return nil, errf(mnemonic, "expects rd, imm")
		}
		return table["ori"].build("ori", []asmir.Argument{args[0], zero, args[1]}, instrAddr, symtab, defines)
	}}

	table["ret"] = entry{4, func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
		if len(args) != 0 {
			return nil, errf(mnemonic, "expects no operands")
		}
		return table["jr"].build("jr", []asmir.Argument{asmir.Id("$ra")}, instrAddr, symtab, defines)
	}}

	table["beqz"] = entry{4, func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
		if len(args) != 2 {
			return nil, errf(mnemonic, "expects rd, label")
		}
		return table["beq"].build("beq", []asmir.Argument{args[0], zero, args[1]}, instrAddr, symtab, defines)
	}}

	table["bnez"] = entry{4, func(mnemonic string, args []asmir.Argument, instrAddr objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
		if len(args) != 2 {
			return nil, errf(mnemonic, "expects rd, label")
		}
		return table["bne"].build("bne", []asmir.Argument{args[0], zero, args[1]}, instrAddr, symtab, defines)
	}}

	table["li"] = entry{8, buildLI}
}

func buildLI(mnemonic string, args []asmir.Argument, _ objfile.SegAddr, symtab SymTab, defines Defines) ([]AssembledInstruction, error) {
	if len(args) != 2 {
		return nil, errf(mnemonic, "expects rd, imm32")
	}
	rd, err := regOperand(mnemonic, args[0])
	if err != nil {
		return nil, err
	}
	value, ref, err := resolveLITarget(mnemonic, args[1], symtab, defines)
	if err != nil {
		return nil, err
	}
	high16 := (value >> 16) & 0xFFFF
	low16 := value & 0xFFFF

	luiWord := encoding.EncodeLUIType(encoding.LUIType{Op: encoding.OpLui, Rd: rd, Imm16: high16})
	oriWord := encoding.EncodeIType(encoding.IType{Op: encoding.OpOri, Rd: rd, Rs: rd, Imm16: low16})

	first := AssembledInstruction{Word: luiWord}
	if ref != nil {
		first.ImportReq, first.RelocReq = ref.asImportOrReloc()
	}
	second := AssembledInstruction{Word: oriWord}
	return []AssembledInstruction{first, second}, nil
}
