package asmparse

import (
	"fmt"
	"testing"

	"github.com/eliben/luz-cpu/asmir"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestParseInstructionWithLabel(t *testing.T) {
	lines, err := Parse("loop:\n\tadd $t0, $t1, $t2\n")
	assert(t, err == nil, "parse failed: %v", err)
	assert(t, len(lines) == 2, "expected 2 parsed lines, got %d", len(lines))

	bare, ok := lines[0].(asmir.Instruction)
	assert(t, ok && bare.IsBareLabel() && bare.Label == "loop", "expected a bare label line, got %+v", lines[0])

	instr, ok := lines[1].(asmir.Instruction)
	assert(t, ok && instr.Mnemonic == "add", "expected an add instruction, got %+v", lines[1])
	assert(t, len(instr.Args) == 3, "expected 3 arguments, got %d", len(instr.Args))
	assert(t, instr.Args[0] == asmir.Argument(asmir.Id("$t0")), "expected first arg $t0, got %v", instr.Args[0])
}

func TestParseLabelAttachedToInstruction(t *testing.T) {
	lines, err := Parse("main: add $t0, $t1, $t2\n")
	assert(t, err == nil, "parse failed: %v", err)
	assert(t, len(lines) == 1, "expected label and instruction to share one line, got %d", len(lines))
	instr := lines[0].(asmir.Instruction)
	assert(t, instr.Label == "main" && instr.Mnemonic == "add", "expected label+mnemonic on one line, got %+v", instr)
}

func TestParseDirectiveWithStringArg(t *testing.T) {
	lines, err := Parse(`.string "hello"` + "\n")
	assert(t, err == nil, "parse failed: %v", err)
	d, ok := lines[0].(asmir.Directive)
	assert(t, ok && d.Name == ".string", "expected a .string directive, got %+v", lines[0])
	s, ok := d.Args[0].(asmir.StringArg)
	assert(t, ok && string(s) == "hello", "expected string arg 'hello', got %v", d.Args[0])
}

func TestParseMemoryReferenceArgument(t *testing.T) {
	lines, err := Parse("lw $t0, 8($sp)\n")
	assert(t, err == nil, "parse failed: %v", err)
	instr := lines[0].(asmir.Instruction)
	mr, ok := instr.Args[1].(asmir.MemRef)
	assert(t, ok, "expected second arg to be a MemRef, got %v", instr.Args[1])
	assert(t, mr.Offset == asmir.Argument(asmir.Number(8)), "expected offset 8, got %v", mr.Offset)
	assert(t, mr.Base == asmir.Id("$sp"), "expected base $sp, got %v", mr.Base)
}

func TestParseDefineDirective(t *testing.T) {
	lines, err := Parse(".define FOO, 42\n")
	assert(t, err == nil, "parse failed: %v", err)
	d := lines[0].(asmir.Directive)
	assert(t, d.Name == ".define", "expected .define directive, got %s", d.Name)
	assert(t, len(d.Args) == 2, "expected 2 args, got %d", len(d.Args))
}

func TestParseEmptyLinesSkipped(t *testing.T) {
	lines, err := Parse("\n\nnop\n\n")
	assert(t, err == nil, "parse failed: %v", err)
	assert(t, len(lines) == 1, "expected blank lines to be skipped, got %d lines", len(lines))
}

func TestParseMissingArgumentFails(t *testing.T) {
	_, err := Parse("add $t0,\n")
	assert(t, err != nil, "expected a parse error for a trailing comma with no argument")
}

func TestParseMemRefRequiresIdentifierBase(t *testing.T) {
	_, err := Parse("lw $t0, 4(5)\n")
	assert(t, err != nil, "expected an error when a memory reference base is not an identifier")
}
