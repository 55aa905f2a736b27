// Package asmir defines the intermediate representation that an
// external lexer/parser produces and the assembler consumes: parsed
// source lines and their arguments, as tagged variants.
//
// This package supplies the sum types sketched in the toolchain's
// design notes ("tagged variants over class hierarchies") via small
// sealed interfaces rather than a parser-generator's AST nodes.
package asmir

// Argument is the sum type of operand syntax the parser can produce:
// Number, Id, StringArg, or MemRef.
type Argument interface {
	argument()
}

// Number is a literal integer operand (decimal or 0x-hex in source,
// already parsed to an int64 by the time it reaches the assembler).
type Number int64

func (Number) argument() {}

// Id is a bare identifier: a register ("$r5", "$sp"), a label, or a
// name bound via .define.
type Id string

func (Id) argument() {}

// StringArg is a double-quoted string literal's decoded bytes.
type StringArg []byte

func (StringArg) argument() {}

// MemRef is an "offset(reg)" memory reference; Offset is a Number or
// an Id resolved later via .define.
type MemRef struct {
	Offset Argument
	Base   Id
}

func (MemRef) argument() {}

// ParsedLine is the sum type of a single source line: Instruction or
// Directive.
type ParsedLine interface {
	parsedLine()
	Line() int
}

// Instruction is an instruction (or bare label) line. Mnemonic is
// empty for a bare label line.
type Instruction struct {
	Label    string
	Mnemonic string
	Args     []Argument
	LineNo   int
}

func (Instruction) parsedLine()  {}
func (i Instruction) Line() int  { return i.LineNo }

// IsBareLabel reports whether this line carries only a label with no
// mnemonic.
func (i Instruction) IsBareLabel() bool {
	return i.Mnemonic == ""
}

// Directive is a "." directive line: .segment, .define, .global,
// .word, .byte, .string, .alloc.
type Directive struct {
	Label  string
	Name   string
	Args   []Argument
	LineNo int
}

func (Directive) parsedLine() {}
func (d Directive) Line() int { return d.LineNo }
