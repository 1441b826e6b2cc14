package dispatch

import (
	"fmt"

	"slotwise/internal/typesys"
)

// CallKind classifies the target of an interface call.
type CallKind uint8

const (
	// CallUnresolved means the call cannot be bound statically.
	CallUnresolved CallKind = iota
	// CallClassMethod binds to a method declared on the class hierarchy.
	CallClassMethod
	// CallDefaultMethod binds to a default interface body.
	CallDefaultMethod
	// CallAmbiguous means two default bodies are equally specific.
	CallAmbiguous
	// CallReabstracted means the most specific interface re-declares the method abstract.
	CallReabstracted
)

func (k CallKind) String() string {
	switch k {
	case CallUnresolved:
		return "unresolved"
	case CallClassMethod:
		return "class"
	case CallDefaultMethod:
		return "default"
	case CallAmbiguous:
		return "ambiguous"
	case CallReabstracted:
		return "reabstracted"
	default:
		return fmt.Sprintf("CallKind(%d)", k)
	}
}

// CallTarget is the static binding of an interface call.
type CallTarget struct {
	Kind   CallKind
	Method *typesys.Method // body to execute; nil unless Kind is CallClassMethod or CallDefaultMethod
	Slot   *typesys.Method // virtual slot the interface method mapped to, if any
}

// ResolveInterfaceCall binds a call through interface method im on an
// instance of t. Instance methods map to a virtual slot which is then
// resolved on t; when t provides no slot, default interface bodies are
// considered. Static methods use static virtual resolution.
func ResolveInterfaceCall(im *typesys.Method, t *typesys.Type) (CallTarget, error) {
	if im == nil || t == nil {
		return CallTarget{}, nil
	}
	if im.IsStatic() {
		if body := ResolveVariantInterfaceToStaticVirtual(im, t); body != nil {
			return CallTarget{Kind: CallClassMethod, Method: body}, nil
		}
		return CallTarget{}, nil
	}

	if !t.IsInterface() {
		if slot := ResolveVariantInterfaceToVirtual(im.Definition(), t); slot != nil {
			target := slot
			if im.HasInstantiation() {
				inst, err := slot.Instantiate(im.Instantiation()...)
				if err != nil {
					return CallTarget{}, &MalformedTypeError{Type: t, Method: slot, Reason: err.Error()}
				}
				target = inst
			}
			body, err := ResolveVirtual(target, t)
			if err != nil {
				return CallTarget{}, err
			}
			if body == nil {
				return CallTarget{Slot: slot}, nil
			}
			return CallTarget{Kind: CallClassMethod, Method: body, Slot: slot}, nil
		}
	}

	switch res, impl := ResolveVariantInterfaceToDefaultImplementation(im, t); res {
	case DefaultImplementation:
		return CallTarget{Kind: CallDefaultMethod, Method: impl}, nil
	case Diamond:
		return CallTarget{Kind: CallAmbiguous}, nil
	case Reabstraction:
		return CallTarget{Kind: CallReabstracted}, nil
	}
	return CallTarget{}, nil
}
