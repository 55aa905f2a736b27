package link

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/eliben/luz-cpu/asm"
	"github.com/eliben/luz-cpu/asmparse"
	"github.com/eliben/luz-cpu/encoding"
	"github.com/eliben/luz-cpu/objfile"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func assembleOne(t *testing.T, name, source string) *objfile.ObjectFile {
	lines, err := asmparse.Parse(source)
	assert(t, err == nil, "parse failed for %s: %v", name, err)
	obj, err := asm.New(name).Assemble(lines)
	assert(t, err == nil, "assemble failed for %s: %v", name, err)
	return obj
}

func TestLinkSingleModuleProducesStartupAndMain(t *testing.T) {
	obj := assembleOne(t, "main.lasm", `
.segment text
.global asm_main
asm_main:
	add $v0, $zero, $zero
	halt
`)
	l := New()
	image, err := l.Link([]*objfile.ObjectFile{obj})
	assert(t, err == nil, "link failed: %v", err)
	assert(t, len(image) > 0, "expected a non-empty image")

	// __startup is always placed first: its first word is li $sp, ...
	// which expands to a LUI.
	word0 := binary.LittleEndian.Uint32(image[0:4])
	op := encoding.Opcode(encoding.ExtractBitfield(word0, 31, 26))
	assert(t, op == encoding.OpLui, "expected startup's first word to be LUI, got %v", op)
}

func TestLinkResolvesCrossModuleCall(t *testing.T) {
	caller := assembleOne(t, "caller.lasm", `
.segment text
.global asm_main
asm_main:
	call helper
	halt
`)
	callee := assembleOne(t, "callee.lasm", `
.segment text
.global helper
helper:
	ret
`)
	l := New()
	_, err := l.Link([]*objfile.ObjectFile{caller, callee})
	assert(t, err == nil, "expected cross-module call to resolve, got %v", err)
}

func TestLinkUnresolvedImportFails(t *testing.T) {
	obj := assembleOne(t, "orphan.lasm", `
.segment text
.global asm_main
asm_main:
	call nowhere
	halt
`)
	l := New()
	_, err := l.Link([]*objfile.ObjectFile{obj})
	assert(t, err != nil, "expected an error for an unresolved import")
}

func TestLinkDuplicateExportFails(t *testing.T) {
	a := assembleOne(t, "a.lasm", `
.segment text
.global dup
dup:
	nop
`)
	b := assembleOne(t, "b.lasm", `
.segment text
.global dup
dup:
	nop
`)
	l := New()
	_, err := l.Link([]*objfile.ObjectFile{a, b})
	assert(t, err != nil, "expected an error for a duplicate export")
}

func TestSegmentLayoutOrdersStartupFirstHeapLast(t *testing.T) {
	obj := assembleOne(t, "m.lasm", `
.segment zzz_late
.global asm_main
asm_main:
	halt
`)
	startup, err := buildStartupObject(DefaultBaseAddress, DefaultMemSize)
	assert(t, err == nil, "building startup object failed: %v", err)

	order, _, _ := computeSegmentLayout([]*objfile.ObjectFile{obj, startup}, DefaultBaseAddress)
	assert(t, len(order) == 3, "expected 3 segments in layout, got %v", order)
	assert(t, order[0] == startupSegment, "expected __startup first, got %v", order)
	assert(t, order[len(order)-1] == heapSegment, "expected __heap last, got %v", order)
}

func TestLinkDeterministicAcrossRuns(t *testing.T) {
	obj := assembleOne(t, "m.lasm", `
.segment text
.global asm_main
asm_main:
	add $v0, $zero, $zero
	halt
`)
	img1, err := New().Link([]*objfile.ObjectFile{obj})
	assert(t, err == nil, "first link failed: %v", err)

	obj2 := assembleOne(t, "m.lasm", `
.segment text
.global asm_main
asm_main:
	add $v0, $zero, $zero
	halt
`)
	img2, err := New().Link([]*objfile.ObjectFile{obj2})
	assert(t, err == nil, "second link failed: %v", err)

	assert(t, len(img1) == len(img2), "expected identical image lengths across runs")
	for i := range img1 {
		assert(t, img1[i] == img2[i], "expected byte-identical images at offset %d", i)
	}
}
