package sizing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParameter is returned when an input is outside its allowed range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDivisionByZero is returned when a value used as a divisor is zero.
	// It also matches ErrInvalidParameter.
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", ErrInvalidParameter)
)

// ParamError describes the offending parameter.
type ParamError struct {
	Name   string
	Value  float64
	Reason string
	err    error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: %s = %v (%s)", e.err, e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return e.err }

func invalid(name string, value float64, reason string) error {
	return &ParamError{Name: name, Value: value, Reason: reason, err: ErrInvalidParameter}
}

func zeroDivisor(name string, value float64) error {
	return &ParamError{Name: name, Value: value, Reason: "must be > 0", err: ErrDivisionByZero}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// requirePositive guards a value that is later used as a divisor.
func requirePositive(name string, v float64) error {
	if !finite(v) {
		return invalid(name, v, "must be finite")
	}
	if v <= 0 {
		return zeroDivisor(name, v)
	}
	return nil
}

func requireNonNegative(name string, v float64) error {
	if !finite(v) || v < 0 {
		return invalid(name, v, "must be a finite value >= 0")
	}
	return nil
}
