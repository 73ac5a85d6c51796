package reconciler

import (
	"errors"
	"fmt"
)

// ErrModeSwitch is wrapped by the error returned when a deployment changes between session and application mode.
var ErrModeSwitch = errors.New("cluster mode cannot be changed")

// InvariantViolationError is a fatal reconciliation error. Retrying cannot fix it.
type InvariantViolationError struct {
	Reason string
	Err    error
}

func (e *InvariantViolationError) Error() string {
	return e.Reason
}

func (e *InvariantViolationError) Unwrap() error {
	return e.Err
}

func modeSwitchError(from, to string) error {
	return &InvariantViolationError{
		Reason: fmt.Sprintf("cannot switch from %s to %s cluster", from, to),
		Err:    ErrModeSwitch,
	}
}

// IsInvariantViolation reports whether err is, or wraps, an InvariantViolationError.
func IsInvariantViolation(err error) bool {
	var iv *InvariantViolationError
	return errors.As(err, &iv)
}
