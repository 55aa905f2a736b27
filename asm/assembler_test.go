package asm

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/eliben/luz-cpu/asmparse"
	"github.com/eliben/luz-cpu/encoding"
	"github.com/eliben/luz-cpu/objfile"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func assembleSource(t *testing.T, source string) *objfile.ObjectFile {
	lines, err := asmparse.Parse(source)
	assert(t, err == nil, "parse failed: %v", err)
	obj, err := New("test.lasm").Assemble(lines)
	assert(t, err == nil, "assemble failed: %v", err)
	return obj
}

func TestAssembleSimpleTextSegment(t *testing.T) {
	src := `
.segment text
.global main
main:
	add $t0, $t1, $t2
	sw $t0, 0($sp)
	halt
`
	obj := assembleSource(t, src)
	text := obj.SegData["text"]
	assert(t, len(text) == 12, "expected 3 words (12 bytes), got %d", len(text))
	assert(t, len(obj.ExportTable) == 1 && obj.ExportTable[0].Symbol == "main",
		"expected main exported, got %+v", obj.ExportTable)

	word0 := binary.LittleEndian.Uint32(text[0:4])
	rtype := encoding.DecodeRType(word0)
	assert(t, rtype.Op == encoding.OpAdd, "expected first word to be add, got %v", rtype.Op)
}

func TestAssembleDataDirectives(t *testing.T) {
	src := `
.segment data
buf:
	.word 1, 2, 3
	.byte 1, 2
	.string "hi"
`
	obj := assembleSource(t, src)
	data := obj.SegData["data"]
	// 3 words (12) + 2 bytes rounded to 4 + "hi\0" rounded to 4 = 12+4+4 = 20
	assert(t, len(data) == 20, "expected 20 bytes of data, got %d", len(data))
}

func TestDuplicateLabelRejected(t *testing.T) {
	src := `
.segment text
foo:
	nop
foo:
	nop
`
	lines, err := asmparse.Parse(src)
	assert(t, err == nil, "parse failed: %v", err)
	_, err = New("test.lasm").Assemble(lines)
	assert(t, err != nil, "expected a duplicate label error")
}

func TestCallToUndefinedSymbolProducesImport(t *testing.T) {
	src := `
.segment text
	call external_fn
`
	obj := assembleSource(t, src)
	assert(t, len(obj.ImportTable) == 1, "expected one import entry, got %d", len(obj.ImportTable))
	assert(t, obj.ImportTable[0].Symbol == "external_fn", "expected import of external_fn")
}

func TestGlobalOfUndefinedSymbolRejected(t *testing.T) {
	src := `
.segment text
.global nonexistent
	nop
`
	lines, err := asmparse.Parse(src)
	assert(t, err == nil, "parse failed: %v", err)
	_, err = New("test.lasm").Assemble(lines)
	assert(t, err != nil, "expected an error exporting an undefined symbol")
}

func TestDirectiveBeforeSegmentRejected(t *testing.T) {
	src := `.word 1
`
	lines, err := asmparse.Parse(src)
	assert(t, err == nil, "parse failed: %v", err)
	_, err = New("test.lasm").Assemble(lines)
	assert(t, err != nil, "expected an error for a directive before any .segment")
}
