package instrset

import (
	"strings"

	"github.com/eliben/luz-cpu/asmir"
	"github.com/eliben/luz-cpu/encoding"
	"github.com/eliben/luz-cpu/objfile"
)

// SymTab maps a label to the segment address it was defined at. It is
// populated by the assembler's pass 1 and consulted read-only here.
type SymTab map[string]objfile.SegAddr

// Defines maps a .define identifier to its bound numeric value.
type Defines map[string]int64

func regOperand(mnemonic string, arg asmir.Argument) (int, error) {
	id, ok := arg.(asmir.Id)
	if !ok {
		return 0, errf(mnemonic, "expected a register operand")
	}
	name := string(id)
	if !strings.HasPrefix(name, "$") {
		return 0, errf(mnemonic, "register operand %q must start with '$'", name)
	}
	n, ok := encoding.RegisterNumber(name)
	if !ok {
		return 0, errf(mnemonic, "unknown register %q", name)
	}
	return n, nil
}

func constOperand(mnemonic string, arg asmir.Argument, maxbits uint) (int64, error) {
	num, ok := arg.(asmir.Number)
	if !ok {
		return 0, errf(mnemonic, "expected a numeric operand")
	}
	v := int64(num)
	if !encoding.FitsField(v, maxbits) {
		return 0, errf(mnemonic, "value %d does not fit in %d bits", v, maxbits)
	}
	return v, nil
}

func defineOrConstOperand(mnemonic string, arg asmir.Argument, defines Defines, maxbits uint) (int64, error) {
	if id, ok := arg.(asmir.Id); ok {
		v, ok := defines[string(id)]
		if !ok {
			return 0, errf(mnemonic, "undefined symbol %q", string(id))
		}
		if !encoding.FitsField(v, maxbits) {
			return 0, errf(mnemonic, "defined value %d (%s) does not fit in %d bits", v, string(id), maxbits)
		}
		return v, nil
	}
	return constOperand(mnemonic, arg, maxbits)
}

func memRefOperand(mnemonic string, arg asmir.Argument, defines Defines) (baseReg int, offset int64, err error) {
	ref, ok := arg.(asmir.MemRef)
	if !ok {
		return 0, 0, errf(mnemonic, "expected a memory reference")
	}
	baseReg, err = regOperand(mnemonic, ref.Base)
	if err != nil {
		return 0, 0, err
	}
	offset, err = defineOrConstOperand(mnemonic, ref.Offset, defines, 16)
	if err != nil {
		return 0, 0, err
	}
	return baseReg, offset, nil
}

// branchOffsetOperand resolves a branch target to a signed word delta
// that fits in nbits, either directly (a Number) or via the symbol
// table (an Id), enforcing same-segment and word-alignment.
func branchOffsetOperand(mnemonic string, arg asmir.Argument, nbits uint, instrAddr objfile.SegAddr, symtab SymTab) (int64, error) {
	if num, ok := arg.(asmir.Number); ok {
		v := int64(num)
		if !encoding.FitsSigned(v, nbits) {
			return 0, errf(mnemonic, "branch offset %d does not fit in %d bits", v, nbits)
		}
		return v, nil
	}
	id, ok := arg.(asmir.Id)
	if !ok {
		return 0, errf(mnemonic, "expected a label or numeric branch offset")
	}
	label := string(id)
	target, ok := symtab[label]
	if !ok {
		return 0, errf(mnemonic, "undefined label %q", label)
	}
	if target.Segment != instrAddr.Segment {
		return 0, errf(mnemonic, "branch to %q crosses segments (%q -> %q)", label, instrAddr.Segment, target.Segment)
	}
	delta := target.Offset - instrAddr.Offset
	if delta%4 != 0 {
		return 0, errf(mnemonic, "branch target %q is not word-aligned relative to instruction", label)
	}
	word := int64(delta / 4)
	if !encoding.FitsSigned(word, nbits) {
		return 0, errf(mnemonic, "branch offset to %q (%d words) does not fit in %d bits", label, word, nbits)
	}
	return word, nil
}
