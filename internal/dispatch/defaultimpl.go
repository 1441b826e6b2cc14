package dispatch

import (
	"fmt"
	"slices"

	"slotwise/internal/typesys"
)

// DefaultResolution is the outcome of default interface method resolution.
type DefaultResolution uint8

const (
	// DefaultNone means no interface provides a body.
	DefaultNone DefaultResolution = iota
	// DefaultImplementation means a unique most specific body exists.
	DefaultImplementation
	// Reabstraction means the most specific provider re-declares the method abstract.
	Reabstraction
	// Diamond means two unrelated interfaces provide equally specific bodies.
	Diamond
)

func (r DefaultResolution) String() string {
	switch r {
	case DefaultNone:
		return "none"
	case DefaultImplementation:
		return "default"
	case Reabstraction:
		return "reabstraction"
	case Diamond:
		return "diamond"
	default:
		return fmt.Sprintf("DefaultResolution(%d)", r)
	}
}

// ResolveInterfaceToDefaultImplementation picks the most specific default
// body for im among the interfaces t implements (t included when it is an
// interface). Interface A is more specific than B when B is one of A's
// runtime interfaces. The body is returned only with DefaultImplementation.
func ResolveInterfaceToDefaultImplementation(im *typesys.Method, t *typesys.Type) (DefaultResolution, *typesys.Method) {
	if im == nil || t == nil {
		return DefaultNone, nil
	}
	owner := im.Owner()
	imDef := im.Definition()

	considered := t.RuntimeInterfaces()
	if t.IsInterface() {
		considered = append(slices.Clip(considered), t)
	}

	var (
		mostSpecific *typesys.Type
		impl         *typesys.Method
		diamond      bool
	)
	for _, candidate := range considered {
		if candidate == owner {
			// The declaring interface's own body counts only if nothing else has been found.
			if mostSpecific == nil && !im.IsAbstract() {
				mostSpecific = candidate
				impl = imDef
			}
			continue
		}
		if !candidate.Implements(owner) {
			continue
		}
		body := findDefaultBody(candidate, imDef)
		if body == nil {
			continue
		}
		switch {
		case mostSpecific == nil || candidate.Implements(mostSpecific):
			mostSpecific = candidate
			impl = body
			diamond = false
		case !mostSpecific.Implements(candidate):
			diamond = true
		}
	}

	switch {
	case diamond:
		return Diamond, nil
	case impl == nil:
		return DefaultNone, nil
	case impl.IsAbstract():
		return Reabstraction, nil
	}
	if im != imDef {
		inst, err := impl.Instantiate(im.Instantiation()...)
		if err != nil {
			return DefaultNone, nil
		}
		impl = inst
	}
	return DefaultImplementation, impl
}

// findDefaultBody returns the body of the first override record on iface
// whose Decl is imDef.
func findDefaultBody(iface *typesys.Type, imDef *typesys.Method) *typesys.Method {
	for _, rec := range iface.MethodImplsByDeclName(imDef.Name()) {
		if rec.Decl == imDef {
			return rec.Body
		}
	}
	return nil
}

// ResolveVariantInterfaceToDefaultImplementation retries default resolution
// against every runtime interface of t sharing im's generic definition and
// variance compatible with im's owner. The first outcome other than
// DefaultNone wins.
func ResolveVariantInterfaceToDefaultImplementation(im *typesys.Method, t *typesys.Type) (DefaultResolution, *typesys.Method) {
	if im == nil || t == nil {
		return DefaultNone, nil
	}
	owner := im.Owner()
	if t.Implements(owner) {
		if res, impl := ResolveInterfaceToDefaultImplementation(im, t); res != DefaultNone {
			return res, impl
		}
	}

	imDef := im.Definition()
	for _, candidate := range t.RuntimeInterfaces() {
		if !candidate.HasSameDefinition(owner) || !typesys.CanCastTo(candidate, owner) {
			continue
		}
		variant := candidate.FindMethodWithMatchingTypical(imDef)
		if variant == nil {
			continue
		}
		if im != imDef {
			inst, err := variant.Instantiate(im.Instantiation()...)
			if err != nil {
				continue
			}
			variant = inst
		}
		if res, impl := ResolveInterfaceToDefaultImplementation(variant, t); res != DefaultNone {
			return res, impl
		}
	}
	return DefaultNone, nil
}
