package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConstraint reports inconsistent field options, such as min > max.
	ErrInvalidConstraint = errors.New("invalid constraint")

	// ErrGenerationFailed reports that a generation request did not complete.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidRequest reports malformed request parameters.
	ErrInvalidRequest = errors.New("invalid generation request")
)

// ConstraintError describes a field option that cannot be satisfied.
type ConstraintError struct {
	Field  string
	Option string
	Reason string
}

func (e *ConstraintError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("invalid constraint on field '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid constraint '%s' on field '%s': %s", e.Option, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConstraint) match.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrInvalidConstraint
}

// GenerationError wraps the first failure observed while running a request.
// Batch is -1 when the failure happened before any batch ran.
type GenerationError struct {
	Batch int
	Field string
	Err   error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Field != "" && e.Batch >= 0:
		return fmt.Sprintf("generation failed in batch %d, field '%s': %v", e.Batch, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("generation failed for field '%s': %v", e.Field, e.Err)
	case e.Batch >= 0:
		return fmt.Sprintf("generation failed in batch %d: %v", e.Batch, e.Err)
	default:
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrGenerationFailed) match.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}
