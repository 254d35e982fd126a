package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInput marks malformed or missing call arguments
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupported marks requests the planner has no template for
	ErrUnsupported = errors.New("unsupported operation")
)

// AcquisitionError is returned when a repository snapshot cannot be produced.
type AcquisitionError struct {
	URL    string
	Branch string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire %s@%s: %v", e.URL, e.Branch, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when a command exceeds its deadline.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %v", e.Command, e.Timeout)
}

// NonZeroExitError carries the captured output of a failed command.
type NonZeroExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *NonZeroExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// InvalidInputf builds an input error that matches ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
