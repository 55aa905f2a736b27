package link

import (
	"github.com/eliben/luz-cpu/asm"
	"github.com/eliben/luz-cpu/asmir"
	"github.com/eliben/luz-cpu/objfile"
)

const (
	startupSegment = "__startup"
	heapSegment    = "__heap"
)

// buildStartupObject synthesizes the object the linker always
// appends to the object list before laying out segments: it sets up
// the stack pointer and calls the user's exported asm_main, then
// exports a zero-initialized __heap word. Built directly as IR
// (rather than text run back through a lexer/parser) since the
// source is fixed and known at link time.
func buildStartupObject(baseAddress, memSize uint32) (*objfile.ObjectFile, error) {
	spValue := int64(baseAddress) + int64(memSize) - 4

	lines := []asmir.ParsedLine{
		asmir.Directive{Name: ".segment", Args: []asmir.Argument{asmir.Id(startupSegment)}},
		asmir.Instruction{Mnemonic: "li", Args: []asmir.Argument{asmir.Id("$sp"), asmir.Number(spValue)}},
		asmir.Instruction{Mnemonic: "call", Args: []asmir.Argument{asmir.Id("asm_main")}},
		asmir.Directive{Name: ".segment", Args: []asmir.Argument{asmir.Id(heapSegment)}},
		asmir.Directive{Name: ".global", Args: []asmir.Argument{asmir.Id(heapSegment)}},
		asmir.Directive{Label: heapSegment, Name: ".word", Args: []asmir.Argument{asmir.Number(0)}},
	}

	return asm.New(startupSegment).Assemble(lines)
}
