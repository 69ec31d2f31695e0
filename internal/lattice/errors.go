package lattice

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter indicates a construction or configuration input outside its domain.
var ErrInvalidParameter = errors.New("lattice: invalid parameter")

// ParameterError wraps ErrInvalidParameter with the offending input.
type ParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
