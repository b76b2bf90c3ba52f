package job

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks a missing or unreadable input directory or file.
	ErrInput = errors.New("input I/O error")
	// ErrOutput marks an output directory or report file that could not be
	// created or written.
	ErrOutput = errors.New("output I/O error")
)

// Error is returned by Driver.Run. Kind is ErrInput, ErrOutput or nil when
// the job was cancelled.
type Error struct {
	State State
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == nil {
		return fmt.Sprintf("job failed in %s: %v", e.State, e.Err)
	}
	return fmt.Sprintf("job failed in %s: %v: %v", e.State, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}
