package instrset

import (
	"github.com/eliben/luz-cpu/asmir"
	"github.com/eliben/luz-cpu/objfile"
)

// symbolRef captures which of the three CALL/LI resolution cases
// applied: a plain numeric value needs no import/reloc entry at all,
// a symtab hit needs a RelocReq, and a miss needs an ImportReq.
type symbolRef struct {
	imp   *ImportReq
	reloc *RelocReq
}

func (r *symbolRef) asImportOrReloc() (*ImportReq, *RelocReq) {
	if r == nil {
		return nil, nil
	}
	return r.imp, r.reloc
}

// resolveCallTarget implements §4.2's three-case CALL resolution:
// a numeric/define value, a same-module symtab hit (-> RelocEntry),
// or an unresolved symbol (-> ImportEntry).
func resolveCallTarget(mnemonic string, arg asmir.Argument, symtab SymTab, defines Defines) (int64, *symbolRef, error) {
	if num, ok := arg.(asmir.Number); ok {
		return constrainCallImm(mnemonic, int64(num))
	}
	id, ok := arg.(asmir.Id)
	if !ok {
		return 0, nil, errf(mnemonic, "expects a numeric, defined, or label target")
	}
	name := string(id)
	if v, ok := defines[name]; ok {
		return constrainCallImm(mnemonic, v)
	}
	if addr, ok := symtab[name]; ok {
		return int64(addr.Offset / 4), &symbolRef{reloc: &RelocReq{Kind: objfile.RelocCall, Segment: addr.Segment}}, nil
	}
	return 0, &symbolRef{imp: &ImportReq{Kind: objfile.ImportCall, Symbol: name}}, nil
}

func constrainCallImm(mnemonic string, v int64) (int64, *symbolRef, error) {
	if _, err := fitsField26(mnemonic, v); err != nil {
		return 0, nil, err
	}
	return v, nil, nil
}

// resolveLITarget implements §4.2's three-case LI resolution: the
// same three cases as CALL, but over a full 32-bit value.
func resolveLITarget(mnemonic string, arg asmir.Argument, symtab SymTab, defines Defines) (uint32, *symbolRef, error) {
	if num, ok := arg.(asmir.Number); ok {
		return constrainLIImm(mnemonic, int64(num))
	}
	id, ok := arg.(asmir.Id)
	if !ok {
		return 0, nil, errf(mnemonic, "expects a numeric, defined, or label target")
	}
	name := string(id)
	if v, ok := defines[name]; ok {
		return constrainLIImm(mnemonic, v)
	}
	if addr, ok := symtab[name]; ok {
		return uint32(addr.Offset), &symbolRef{reloc: &RelocReq{Kind: objfile.RelocLI, Segment: addr.Segment}}, nil
	}
	return 0, &symbolRef{imp: &ImportReq{Kind: objfile.ImportLI, Symbol: name}}, nil
}

func constrainLIImm(mnemonic string, v int64) (uint32, *symbolRef, error) {
	if v < 0 || v > 0xFFFFFFFF {
		return 0, nil, errf(mnemonic, "value %d does not fit in 32 bits", v)
	}
	return uint32(v), nil, nil
}

func fitsField26(mnemonic string, v int64) (int64, error) {
	if v < 0 || v > 0x3FFFFFF {
		return 0, errf(mnemonic, "value %d does not fit in 26 bits", v)
	}
	return v, nil
}
