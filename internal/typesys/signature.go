package typesys

import "strings"

// Signature is the shape of a method: return type (nil for void), parameter
// types, staticness and method generic arity.
type Signature struct {
	Return *Type
	Params []*Type
	Static bool
	Arity  int
}

// Equal reports exact equality.
func (s Signature) Equal(o Signature) bool {
	return s.Return == o.Return && s.sameShape(o)
}

// EquivalentTo reports equality up to a covariant return type difference in
// either direction.
func (s Signature) EquivalentTo(o Signature) bool {
	if !s.sameShape(o) {
		return false
	}
	return s.Return == o.Return || IsAssignableTo(s.Return, o.Return) || IsAssignableTo(o.Return, s.Return)
}

// CovariantTo reports whether s can stand in for o: same parameters and a
// return type assignable to o's return type.
func (s Signature) CovariantTo(o Signature) bool {
	return s.sameShape(o) && (s.Return == o.Return || IsAssignableTo(s.Return, o.Return))
}

func (s Signature) sameShape(o Signature) bool {
	if s.Static != o.Static || s.Arity != o.Arity || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if s.Params[i] != o.Params[i] {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(") ")
	if s.Return == nil {
		sb.WriteString("void")
	} else {
		sb.WriteString(s.Return.String())
	}
	return sb.String()
}
