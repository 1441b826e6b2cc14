package typesys

import "errors"

var (
	// ErrFrozen is returned by builder methods once the universe is frozen.
	ErrFrozen = errors.New("typesys: universe is frozen")
	// ErrArity indicates a generic instantiation with the wrong number of arguments.
	ErrArity = errors.New("typesys: generic arity mismatch")
	// ErrNotGeneric indicates an instantiation of a non-generic definition.
	ErrNotGeneric = errors.New("typesys: not a generic definition")
	// ErrDuplicateType indicates a second definition with the same name.
	ErrDuplicateType = errors.New("typesys: duplicate type")
	// ErrCycle indicates that a base or interface edge would make the hierarchy cyclic.
	ErrCycle = errors.New("typesys: cyclic hierarchy")
	// ErrMaterialized is returned when a definition is edited after its
	// members or override records were read.
	ErrMaterialized = errors.New("typesys: definition already read")
	// ErrInvalidMember indicates a member that does not fit its owner.
	ErrInvalidMember = errors.New("typesys: invalid member")
)
