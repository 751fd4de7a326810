package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for boundary building and time stepping.
var (
	// ErrPropertyKind indicates a property collection returned an object of
	// the wrong concrete kind for the requested property type.
	ErrPropertyKind = errors.New("dynamo: property has unexpected kind")

	// ErrInvalidMesh indicates a mesh with fewer than two lines on an axis or
	// lines that are not strictly increasing.
	ErrInvalidMesh = errors.New("dynamo: invalid mesh")

	// ErrInvalidTimestep indicates a non-positive or non-finite timestep.
	ErrInvalidTimestep = errors.New("dynamo: invalid timestep")

	// ErrUnstable indicates the field update diverged.
	ErrUnstable = errors.New("dynamo: simulation unstable (field diverged)")

	// ErrUnknownPreset indicates a scene preset name that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")

	// ErrInvalidScene indicates a scene description that fails validation.
	ErrInvalidScene = errors.New("dynamo: invalid scene")
)

// BuildError wraps an error with the property that triggered it.
type BuildError struct {
	Property string
	Wrapped  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("property %q: %v", e.Property, e.Wrapped)
}

func (e *BuildError) Unwrap() error {
	return e.Wrapped
}

// StepError wraps an error with the timestep at which it occurred.
type StepError struct {
	Step    uint
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
