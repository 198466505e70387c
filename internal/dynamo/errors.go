package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates state that cannot be acted on: a non-finite
	// bob position or velocity, a bob that could not be grabbed, or a message
	// of unknown type.
	ErrInvalidState = errors.New("dynamo: invalid state")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownBody indicates a body reference that is not part of the world.
	ErrUnknownBody = errors.New("dynamo: unknown body")

	// ErrUnknownPreset indicates a preset name with no registered configuration.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")

	// ErrUnknownScenario indicates a scenario name with no registered runner.
	ErrUnknownScenario = errors.New("dynamo: unknown scenario")
)

// StepError wraps an error with the frame it was detected on.
type StepError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("frame %d (t=%.3fs): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
