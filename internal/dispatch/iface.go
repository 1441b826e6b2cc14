package dispatch

import "slotwise/internal/typesys"

// ResolveInterfaceToVirtual maps interface method im to the slot-defining
// virtual method that implements it on class t.
//
// Policy, in order:
//  1. An override record on t for im wins.
//  2. When t declares im's interface itself, t is searched forward for a
//     public name/sig match. Failing that, a base that implements the
//     interface answers; otherwise the base chain is searched by name/sig.
//  3. When the interface is only inherited, the first ancestor that supplies
//     an answer wins; only then is t searched forward, then its bases.
//
// Nil is returned for interface types and for types that do not implement
// the interface.
func ResolveInterfaceToVirtual(im *typesys.Method, t *typesys.Type) *typesys.Method {
	if im == nil || t == nil || t.IsInterface() {
		return nil
	}
	if impl := findImplFromDecl(t, im); impl != nil {
		return impl
	}

	iface := im.Owner()
	base := t.Base()

	if t.DeclaresInterface(iface) {
		found := FindSlotDefiningMethod(findMatchingVirtualMethod(im, t, forwardSearch, isPublicCandidate))
		if found != nil || base == nil {
			return found
		}
		if base.Implements(iface) {
			return ResolveInterfaceToVirtual(im, base)
		}
		return findNameSigOverrideForInterface(im, base)
	}

	if !t.Implements(iface) {
		return nil
	}
	if inherited := resolveInterfaceOnAncestors(im, base); inherited != nil {
		return inherited
	}
	if found := FindSlotDefiningMethod(findMatchingVirtualMethod(im, t, forwardSearch, isPublicCandidate)); found != nil {
		return found
	}
	return findNameSigOverrideForInterface(im, base)
}

// ResolveVariantInterfaceToVirtual is ResolveInterfaceToVirtual extended to
// runtime interfaces of t that share im's generic definition and are
// variance compatible with im's owner.
func ResolveVariantInterfaceToVirtual(im *typesys.Method, t *typesys.Type) *typesys.Method {
	if im == nil || t == nil {
		return nil
	}
	iface := im.Owner()
	if t.Implements(iface) {
		if impl := ResolveInterfaceToVirtual(im, t); impl != nil {
			return impl
		}
	}
	for _, candidate := range t.RuntimeInterfaces() {
		if !candidate.HasSameDefinition(iface) || !typesys.CanCastTo(candidate, iface) {
			continue
		}
		variant := candidate.FindMethodWithMatchingTypical(im)
		if variant == nil {
			continue
		}
		if impl := ResolveInterfaceToVirtual(variant, t); impl != nil {
			return impl
		}
	}
	return nil
}

// resolveInterfaceOnAncestors returns the answer of the nearest type in the
// chain starting at t, stopping at the first type that no longer implements
// the interface. ResolveInterfaceToVirtual already defers to ancestors, so a
// nil answer from t covers the whole chain.
func resolveInterfaceOnAncestors(im *typesys.Method, t *typesys.Type) *typesys.Method {
	if t == nil || !t.Implements(im.Owner()) {
		return nil
	}
	return ResolveInterfaceToVirtual(im, t)
}

// findNameSigOverrideForInterface searches t and its ancestors in reverse
// declaration order for a public name/sig match of im.
func findNameSigOverrideForInterface(im *typesys.Method, t *typesys.Type) *typesys.Method {
	for cur := t; cur != nil; cur = cur.Base() {
		if m := findMatchingVirtualMethod(im, cur, reverseSearch, isPublicCandidate); m != nil {
			return FindSlotDefiningMethod(m)
		}
	}
	return nil
}
