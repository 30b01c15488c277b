package lesson

import (
	"errors"
	"fmt"
)

var (
	// ErrIO indicates the course root or a lesson file could not be read.
	ErrIO = errors.New("io error")

	// ErrMalformedHeader indicates a lesson file has no usable header block.
	ErrMalformedHeader = errors.New("malformed header")
)

// IOError is a fatal filesystem failure. It matches ErrIO with errors.Is.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// HeaderError describes why a header could not be parsed. Recoverable errors
// still produce a placeholder LessonFile and are reported as warnings.
type HeaderError struct {
	Path        string
	Reason      string
	Recoverable bool
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *HeaderError) Unwrap() error { return ErrMalformedHeader }

// Issue converts the error into a MalformedHeader issue.
func (e *HeaderError) Issue() Issue {
	severity := SeverityError
	if e.Recoverable {
		severity = SeverityWarning
	}
	return Issue{
		Kind:     MalformedHeader,
		Severity: severity,
		Paths:    []string{e.Path},
		Message:  e.Reason,
	}
}
