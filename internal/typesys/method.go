package typesys

import (
	"fmt"
	"strings"
)

// Flags describe method attributes.
type Flags uint8

const (
	FlagVirtual Flags = 1 << iota
	FlagNewSlot
	FlagAbstract
	FlagStatic
	FlagPublic
)

func (f Flags) String() string {
	var parts []string
	if f&FlagPublic != 0 {
		parts = append(parts, "public")
	}
	if f&FlagStatic != 0 {
		parts = append(parts, "static")
	}
	if f&FlagVirtual != 0 {
		parts = append(parts, "virtual")
	}
	if f&FlagNewSlot != 0 {
		parts = append(parts, "newslot")
	}
	if f&FlagAbstract != 0 {
		parts = append(parts, "abstract")
	}
	return strings.Join(parts, " ")
}

// Method is a method descriptor. Descriptors are compared by pointer identity.
type Method struct {
	owner   *Type
	name    string
	sig     Signature
	flags   Flags
	index   int     // declaration position on the owner
	typical *Method // declaration on the uninstantiated owner
	def     *Method // same owner, method instantiation stripped
	inst    []*Type
}

// Owner returns the declaring type.
func (m *Method) Owner() *Type { return m.owner }

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// Signature returns the (substituted) signature.
func (m *Method) Signature() Signature { return m.sig }

// Flags returns the method attributes.
func (m *Method) Flags() Flags { return m.flags }

// Index returns the declaration position on the owning type.
func (m *Method) Index() int { return m.index }

// IsVirtual reports whether m occupies a dispatch slot.
func (m *Method) IsVirtual() bool { return m.flags&FlagVirtual != 0 }

// IsNewSlot reports whether m starts a new dispatch slot.
func (m *Method) IsNewSlot() bool { return m.flags&FlagNewSlot != 0 }

func (m *Method) IsAbstract() bool { return m.flags&FlagAbstract != 0 }

func (m *Method) IsStatic() bool { return m.flags&FlagStatic != 0 }

func (m *Method) IsPublic() bool { return m.flags&FlagPublic != 0 }

// Definition strips the method instantiation, keeping the owner as is.
func (m *Method) Definition() *Method { return m.def }

// Typical returns the declaration on the uninstantiated owner.
func (m *Method) Typical() *Method { return m.typical }

// HasInstantiation reports whether m is an instantiated generic method.
func (m *Method) HasInstantiation() bool { return len(m.inst) > 0 }

// Instantiation returns the method instantiation arguments.
func (m *Method) Instantiation() []*Type { return m.inst }

// Instantiate returns the interned instantiation of m's definition over args.
func (m *Method) Instantiate(args ...*Type) (*Method, error) {
	base := m.def
	if base.sig.Arity == 0 {
		return nil, fmt.Errorf("%w: method %s", ErrNotGeneric, base)
	}
	if len(args) != base.sig.Arity {
		return nil, fmt.Errorf("%w: %s expects %d method argument(s), got %d", ErrArity, base, base.sig.Arity, len(args))
	}
	for i, a := range args {
		if a == nil {
			return nil, fmt.Errorf("%w: nil method argument %d for %s", ErrInvalidMember, i, base)
		}
	}
	u := base.owner.u
	key := methodInstKey{method: base, args: argsKey(args)}
	u.mu.Lock()
	if got, ok := u.methodInsts[key]; ok {
		u.mu.Unlock()
		return got, nil
	}
	u.mu.Unlock()

	inst := &Method{
		owner:   base.owner,
		name:    base.name,
		sig:     u.substSig(base.sig, nil, args),
		flags:   base.flags,
		index:   base.index,
		typical: base.typical,
		def:     base,
		inst:    append([]*Type(nil), args...),
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if got, ok := u.methodInsts[key]; ok {
		return got, nil
	}
	u.methodInsts[key] = inst
	return inst, nil
}

// MustInstantiate is Instantiate for callers that already validated the arity.
func (m *Method) MustInstantiate(args ...*Type) *Method {
	inst, err := m.Instantiate(args...)
	if err != nil {
		panic(err)
	}
	return inst
}

// String renders m as a method reference, e.g. "IFace<Base>.M<int>".
func (m *Method) String() string {
	if m == nil {
		return "<nil>"
	}
	s := m.owner.String() + "." + m.name
	if len(m.inst) > 0 {
		parts := make([]string, len(m.inst))
		for i, a := range m.inst {
			parts[i] = a.String()
		}
		s += "<" + strings.Join(parts, ", ") + ">"
	}
	return s
}
