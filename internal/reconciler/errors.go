package reconciler

import (
	"errors"
	"fmt"
)

var (
	ErrTooManyHooks       = errors.New("rendered more hooks than during the previous render")
	ErrTooFewHooks        = errors.New("rendered fewer hooks than during the previous render")
	ErrInvalidHookCall    = errors.New("hooks can only be called while a function component renders")
	ErrNoHostParent       = errors.New("expected to find a host parent")
	ErrUnknownFiberTag    = errors.New("unknown fiber tag")
	ErrInvalidElementType = errors.New("element type is invalid")
)

// PanicError wraps a value recovered from a panicking component, effect or handler.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("fiber: recovered panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
