package manifest

import (
	"errors"

	"slotwise/internal/diag"
	"slotwise/internal/typesys"
)

var (
	// ErrInvalidManifest is returned by Load when validation reported errors.
	ErrInvalidManifest = errors.New("manifest: invalid manifest")
	// ErrUnknownFormat indicates a file extension other than .toml, .yaml or .yml.
	ErrUnknownFormat = errors.New("manifest: unknown format")
	// ErrSyntax indicates a malformed type or method reference.
	ErrSyntax = errors.New("manifest: malformed reference")
	// ErrUnknownType indicates a reference to an undeclared type.
	ErrUnknownType = errors.New("manifest: unknown type")
	// ErrUnknownMethod indicates a method reference with no candidate.
	ErrUnknownMethod = errors.New("manifest: unknown method")
	// ErrAmbiguousMethod indicates a method reference with several candidates.
	ErrAmbiguousMethod = errors.New("manifest: ambiguous method reference")
	// ErrMethodArity indicates a method instantiation with the wrong argument count.
	ErrMethodArity = errors.New("manifest: method generic arity mismatch")
)

// RefCode maps a reference resolution error to its diagnostic code.
func RefCode(err error) diag.Code {
	switch {
	case errors.Is(err, ErrSyntax):
		return diag.RefSyntax
	case errors.Is(err, ErrMethodArity):
		return diag.RefMethodArity
	case errors.Is(err, typesys.ErrArity), errors.Is(err, typesys.ErrNotGeneric):
		return diag.RefArity
	case errors.Is(err, ErrUnknownType):
		return diag.RefUnknownType
	case errors.Is(err, ErrAmbiguousMethod):
		return diag.RefAmbiguousMethod
	case errors.Is(err, ErrUnknownMethod):
		return diag.RefUnknownMethod
	}
	return diag.UnknownCode
}
