package typesys

// IsAssignableTo reports whether a value of type src can be used where dst is
// expected: identity, base class chain, implemented interfaces (with
// variance), and object as the top of every reference type.
func IsAssignableTo(src, dst *Type) bool {
	if src == nil || dst == nil {
		return src == dst
	}
	if src == dst {
		return true
	}
	if dst == dst.u.builtins.Object {
		return src.kind == KindClass || src.kind == KindInterface
	}
	switch dst.kind {
	case KindClass:
		if src.kind != KindClass {
			return false
		}
		for cur := src.Base(); cur != nil; cur = cur.Base() {
			if cur == dst {
				return true
			}
		}
		return false
	case KindInterface:
		if src.kind == KindInterface && CanCastTo(src, dst) {
			return true
		}
		if src.kind != KindClass && src.kind != KindInterface {
			return false
		}
		for _, i := range src.RuntimeInterfaces() {
			if CanCastTo(i, dst) {
				return true
			}
		}
		return false
	}
	return false
}

// CanCastTo reports whether src is usable as dst when both are
// instantiations of the same generic definition, honoring the declared
// variance of each parameter. Identical types always cast.
func CanCastTo(src, dst *Type) bool {
	if src == nil || dst == nil {
		return false
	}
	if src == dst {
		return true
	}
	if src.def != dst.def || len(src.args) == 0 || len(src.args) != len(dst.args) {
		return false
	}
	params := src.def.params
	for i := range src.args {
		a, b := src.args[i], dst.args[i]
		if a == b {
			continue
		}
		switch params[i].Variance {
		case Covariant:
			if !a.IsReference() || !IsAssignableTo(a, b) {
				return false
			}
		case Contravariant:
			if !b.IsReference() || !IsAssignableTo(b, a) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
