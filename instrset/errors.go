package instrset

import "fmt"

// InstructionError reports a bad operand, an out-of-range value, an
// unknown register, an unaligned branch target, or a cross-segment
// branch — anything the instruction-set layer itself rejects before
// the assembler ever sees a resulting word.
type InstructionError struct {
	Mnemonic string
	Msg      string
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %q: %s", e.Mnemonic, e.Msg)
}

func errf(mnemonic, format string, args ...any) error {
	return &InstructionError{Mnemonic: mnemonic, Msg: fmt.Sprintf(format, args...)}
}
