package dispatch

import (
	"errors"
	"fmt"

	"slotwise/internal/typesys"
)

// ErrMalformedType signals a corrupt or self-inconsistent type graph.
var ErrMalformedType = errors.New("malformed type")

// MalformedTypeError carries the context of a malformed-type failure.
type MalformedTypeError struct {
	Type   *typesys.Type
	Method *typesys.Method
	Reason string
}

func (e *MalformedTypeError) Error() string {
	switch {
	case e.Type != nil && e.Method != nil:
		return fmt.Sprintf("%s %s: %s (method %s)", ErrMalformedType, e.Type, e.Reason, e.Method)
	case e.Method != nil:
		return fmt.Sprintf("%s: %s (method %s)", ErrMalformedType, e.Reason, e.Method)
	case e.Type != nil:
		return fmt.Sprintf("%s %s: %s", ErrMalformedType, e.Type, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedType, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedType.
func (e *MalformedTypeError) Unwrap() error { return ErrMalformedType }
