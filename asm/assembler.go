// Package asm implements the two-pass Luz assembler: pass 1 computes
// segment-relative addresses and the symbol table; pass 2 emits
// instruction words and directive bytes into an objfile.ObjectFile,
// recording import and relocation requests along the way.
package asm

import (
	"encoding/binary"

	"github.com/eliben/luz-cpu/asmir"
	"github.com/eliben/luz-cpu/instrset"
	"github.com/eliben/luz-cpu/objfile"
)

const (
	dirSegment = ".segment"
	dirDefine  = ".define"
	dirGlobal  = ".global"
	dirWord    = ".word"
	dirByte    = ".byte"
	dirString  = ".string"
	dirAlloc   = ".alloc"
)

type addrLine struct {
	addr objfile.SegAddr
	line asmir.ParsedLine
}

// Assembler runs the two-pass translation described in §4.3.
type Assembler struct {
	Name string
}

// New returns an Assembler that will tag its output ObjectFile with
// name (purely informational, used in error messages from the
// linker).
func New(name string) *Assembler {
	return &Assembler{Name: name}
}

// Assemble runs both passes over lines and returns a fully formed
// (but as-yet-unlinked) ObjectFile.
func (a *Assembler) Assemble(lines []asmir.ParsedLine) (*objfile.ObjectFile, error) {
	symtab, addrIMF, segOrder, err := a.pass1(lines)
	if err != nil {
		return nil, err
	}
	return a.pass2(symtab, addrIMF, segOrder)
}

func roundUp4(n int) int {
	return (n + 3) &^ 3
}

func (a *Assembler) pass1(lines []asmir.ParsedLine) (instrset.SymTab, []addrLine, []string, error) {
	symtab := make(instrset.SymTab)
	segAddr := make(map[string]int)
	var segOrder []string
	curSeg := ""
	haveSeg := false
	var addrIMF []addrLine

	recordLabel := func(label string, lineno int) error {
		if label == "" {
			return nil
		}
		if _, exists := symtab[label]; exists {
			return errf(lineno, "duplicate label %q", label)
		}
		symtab[label] = objfile.SegAddr{Segment: curSeg, Offset: segAddr[curSeg]}
		return nil
	}

	for _, pl := range lines {
		switch line := pl.(type) {
		case asmir.Directive:
			if line.Name == dirSegment {
				if line.Label != "" {
					return nil, nil, nil, errf(line.LineNo, ".segment directive cannot carry a label")
				}
				if len(line.Args) != 1 {
					return nil, nil, nil, errf(line.LineNo, ".segment expects exactly one segment name")
				}
				id, ok := line.Args[0].(asmir.Id)
				if !ok {
					return nil, nil, nil, errf(line.LineNo, ".segment argument must be an identifier")
				}
				name := string(id)
				if _, seen := segAddr[name]; !seen {
					segAddr[name] = 0
					segOrder = append(segOrder, name)
				}
				curSeg = name
				haveSeg = true
				continue
			}
			if !haveSeg {
				return nil, nil, nil, errf(line.LineNo, "directive %q appears before any .segment", line.Name)
			}
			if err := recordLabel(line.Label, line.LineNo); err != nil {
				return nil, nil, nil, err
			}
			size, err := directiveSize(line)
			if err != nil {
				return nil, nil, nil, err
			}
			addrIMF = append(addrIMF, addrLine{addr: objfile.SegAddr{Segment: curSeg, Offset: segAddr[curSeg]}, line: line})
			segAddr[curSeg] += size

		case asmir.Instruction:
			if !haveSeg {
				return nil, nil, nil, errf(line.LineNo, "instruction appears before any .segment")
			}
			if err := recordLabel(line.Label, line.LineNo); err != nil {
				return nil, nil, nil, err
			}
			if line.IsBareLabel() {
				addrIMF = append(addrIMF, addrLine{addr: objfile.SegAddr{Segment: curSeg, Offset: segAddr[curSeg]}, line: line})
				continue
			}
			if !instrset.Exists(line.Mnemonic) {
				return nil, nil, nil, errf(line.LineNo, "unknown mnemonic %q", line.Mnemonic)
			}
			size, _ := instrset.Length(line.Mnemonic)
			addrIMF = append(addrIMF, addrLine{addr: objfile.SegAddr{Segment: curSeg, Offset: segAddr[curSeg]}, line: line})
			segAddr[curSeg] += size

		default:
			return nil, nil, nil, errf(0, "unrecognized parsed line type")
		}
	}

	return symtab, addrIMF, segOrder, nil
}

func directiveSize(d asmir.Directive) (int, error) {
	switch d.Name {
	case dirWord:
		return 4 * len(d.Args), nil
	case dirByte:
		return roundUp4(len(d.Args)), nil
	case dirAlloc:
		if len(d.Args) != 1 {
			return 0, errf(d.LineNo, ".alloc expects exactly one argument")
		}
		n, ok := d.Args[0].(asmir.Number)
		if !ok {
			return 0, errf(d.LineNo, ".alloc argument must be a number")
		}
		if n < 0 {
			return 0, errf(d.LineNo, ".alloc argument must be non-negative")
		}
		return roundUp4(int(n)), nil
	case dirString:
		if len(d.Args) != 1 {
			return 0, errf(d.LineNo, ".string expects exactly one argument")
		}
		s, ok := d.Args[0].(asmir.StringArg)
		if !ok {
			return 0, errf(d.LineNo, ".string argument must be a string literal")
		}
		return roundUp4(len(s) + 1), nil
	case dirGlobal, dirDefine:
		return 0, nil
	default:
		return 0, errf(d.LineNo, "unknown directive %q", d.Name)
	}
}

func (a *Assembler) pass2(symtab instrset.SymTab, addrIMF []addrLine, segOrder []string) (*objfile.ObjectFile, error) {
	obj := objfile.New(a.Name)
	for _, seg := range segOrder {
		obj.SegData[seg] = []byte{}
	}
	defines := make(instrset.Defines)

	for _, al := range addrIMF {
		seg := al.addr.Segment
		switch line := al.line.(type) {
		case asmir.Instruction:
			if line.IsBareLabel() {
				continue
			}
			if len(obj.SegData[seg]) != al.addr.Offset {
				return nil, errf(line.LineNo, "internal error: pass 1/2 offset mismatch in segment %q", seg)
			}
			assembled, err := instrset.Assemble(line.Mnemonic, line.Args, al.addr, symtab, defines)
			if err != nil {
				return nil, errf(line.LineNo, "%s", err)
			}
			offset := al.addr.Offset
			for _, ai := range assembled {
				var word [4]byte
				binary.LittleEndian.PutUint32(word[:], ai.Word)
				obj.SegData[seg] = append(obj.SegData[seg], word[:]...)
				if ai.ImportReq != nil {
					obj.ImportTable = append(obj.ImportTable, objfile.ImportEntry{
						Symbol: ai.ImportReq.Symbol,
						Kind:   ai.ImportReq.Kind,
						Addr:   objfile.SegAddr{Segment: seg, Offset: offset},
					})
				}
				if ai.RelocReq != nil {
					obj.RelocTable = append(obj.RelocTable, objfile.RelocEntry{
						RelocSegment: ai.RelocReq.Segment,
						Kind:         ai.RelocReq.Kind,
						Addr:         objfile.SegAddr{Segment: seg, Offset: offset},
					})
				}
				offset += 4
			}

		case asmir.Directive:
			if err := a.emitDirective(obj, seg, line, symtab, defines); err != nil {
				return nil, err
			}

		default:
			return nil, errf(0, "unrecognized parsed line type")
		}
	}

	return obj, nil
}

func (a *Assembler) emitDirective(obj *objfile.ObjectFile, seg string, d asmir.Directive, symtab instrset.SymTab, defines instrset.Defines) error {
	switch d.Name {
	case dirDefine:
		if len(d.Args) != 2 {
			return errf(d.LineNo, ".define expects id, value")
		}
		id, ok := d.Args[0].(asmir.Id)
		if !ok {
			return errf(d.LineNo, ".define first argument must be an identifier")
		}
		num, ok := d.Args[1].(asmir.Number)
		if !ok {
			return errf(d.LineNo, ".define second argument must be a number")
		}
		defines[string(id)] = int64(num)
		return nil

	case dirGlobal:
		if len(d.Args) != 1 {
			return errf(d.LineNo, ".global expects exactly one identifier")
		}
		id, ok := d.Args[0].(asmir.Id)
		if !ok {
			return errf(d.LineNo, ".global argument must be an identifier")
		}
		addr, ok := symtab[string(id)]
		if !ok {
			return errf(d.LineNo, ".global of undefined symbol %q", string(id))
		}
		obj.ExportTable = append(obj.ExportTable, objfile.ExportEntry{Symbol: string(id), Addr: addr})
		return nil

	case dirAlloc:
		n := int(d.Args[0].(asmir.Number))
		obj.SegData[seg] = append(obj.SegData[seg], make([]byte, roundUp4(n))...)
		return nil

	case dirByte:
		buf := make([]byte, 0, roundUp4(len(d.Args)))
		for _, arg := range d.Args {
			num, ok := arg.(asmir.Number)
			if !ok {
				return errf(d.LineNo, ".byte arguments must be numbers")
			}
			if num < 0 || num > 255 {
				return errf(d.LineNo, ".byte value %d out of range 0..255", num)
			}
			buf = append(buf, byte(num))
		}
		for len(buf) < roundUp4(len(d.Args)) {
			buf = append(buf, 0)
		}
		obj.SegData[seg] = append(obj.SegData[seg], buf...)
		return nil

	case dirWord:
		buf := make([]byte, 0, 4*len(d.Args))
		for _, arg := range d.Args {
			num, ok := arg.(asmir.Number)
			if !ok {
				return errf(d.LineNo, ".word arguments must be numbers")
			}
			if num < 0 || num > 0xFFFFFFFF {
				return errf(d.LineNo, ".word value %d out of range 0..2^32-1", num)
			}
			var w [4]byte
			binary.LittleEndian.PutUint32(w[:], uint32(num))
			buf = append(buf, w[:]...)
		}
		obj.SegData[seg] = append(obj.SegData[seg], buf...)
		return nil

	case dirString:
		s := []byte(d.Args[0].(asmir.StringArg))
		buf := make([]byte, 0, roundUp4(len(s)+1))
		buf = append(buf, s...)
		buf = append(buf, 0)
		for len(buf) < roundUp4(len(s)+1) {
			buf = append(buf, 0)
		}
		obj.SegData[seg] = append(obj.SegData[seg], buf...)
		return nil

	default:
		return errf(d.LineNo, "unknown directive %q", d.Name)
	}
}
