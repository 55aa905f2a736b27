package asm

import "fmt"

// AssemblyError reports a duplicate label, an unknown directive or
// instruction, a missing current segment, a bad directive argument,
// or an undefined .global symbol — anything the two-pass assembler
// itself rejects.
type AssemblyError struct {
	LineNo int
	Msg    string
}

func (e *AssemblyError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("line %d: %s", e.LineNo, e.Msg)
	}
	return e.Msg
}

func errf(lineno int, format string, args ...any) error {
	return &AssemblyError{LineNo: lineno, Msg: fmt.Sprintf(format, args...)}
}
