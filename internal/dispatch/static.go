package dispatch

import "slotwise/internal/typesys"

// ResolveInterfaceToStaticVirtual resolves a static virtual interface method
// against a constrained type: the first override record for im's definition
// found on t or one of its ancestors supplies the body. A nil result means
// the call must go through a runtime generic lookup.
func ResolveInterfaceToStaticVirtual(im *typesys.Method, t *typesys.Type) *typesys.Method {
	if im == nil || t == nil || t.IsInterface() {
		return nil
	}
	for cur := t; cur != nil; cur = cur.Base() {
		if impl := resolveStaticOnType(cur, im); impl != nil {
			return impl
		}
	}
	return nil
}

// ResolveVariantInterfaceToStaticVirtual also tries, at every level of the
// hierarchy, each runtime interface that shares im's generic definition and
// is variance compatible with im's owner. Unlike the exact form it accepts
// an interface as t and consults that interface's own override records.
func ResolveVariantInterfaceToStaticVirtual(im *typesys.Method, t *typesys.Type) *typesys.Method {
	if im == nil || t == nil {
		return nil
	}
	owner := im.Owner()
	for cur := t; cur != nil; cur = cur.Base() {
		if impl := resolveStaticOnType(cur, im); impl != nil {
			return impl
		}
		for _, candidate := range cur.RuntimeInterfaces() {
			if candidate == owner || !candidate.HasSameDefinition(owner) {
				continue
			}
			if !typesys.CanCastTo(candidate, owner) {
				continue
			}
			variant := candidate.FindMethodWithMatchingTypical(im)
			if variant == nil {
				continue
			}
			if im.HasInstantiation() {
				inst, err := variant.Instantiate(im.Instantiation()...)
				if err != nil {
					continue
				}
				variant = inst
			}
			if impl := resolveStaticOnType(cur, variant); impl != nil {
				return impl
			}
		}
	}
	return nil
}

func resolveStaticOnType(t *typesys.Type, im *typesys.Method) *typesys.Method {
	imDef := im.Definition()
	for _, rec := range t.MethodImplsByDeclName(im.Name()) {
		if rec.Decl != imDef {
			continue
		}
		if im == imDef {
			return rec.Body
		}
		inst, err := rec.Body.Instantiate(im.Instantiation()...)
		if err != nil {
			return nil
		}
		return inst
	}
	return nil
}
