package link

import "fmt"

// LinkerError reports a duplicate export, an unresolved import, a
// patch value out of range, or a segment overlap/gap in the final
// image — anything the linker itself rejects.
type LinkerError struct {
	Msg string
}

func (e *LinkerError) Error() string { return e.Msg }

func errf(format string, args ...any) error {
	return &LinkerError{Msg: fmt.Sprintf(format, args...)}
}
