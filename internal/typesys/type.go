package typesys

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// TypeID uniquely identifies a descriptor inside its universe.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates the kinds of type descriptors.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindClass
	KindInterface
	KindPrimitive
	KindVar       // generic parameter of a type definition
	KindMethodVar // generic parameter of a method
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindPrimitive:
		return "primitive"
	case KindVar:
		return "var"
	case KindMethodVar:
		return "method-var"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Variance describes how a generic parameter relates instantiations.
type Variance uint8

const (
	Invariant Variance = iota
	Covariant          // out T
	Contravariant      // in T
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "out"
	case Contravariant:
		return "in"
	default:
		return ""
	}
}

// GenericParam is a generic parameter of a type definition.
type GenericParam struct {
	Name     string
	Variance Variance
	Var      *Type // filled by DefineType
}

// MethodImpl is an override record: calls through Decl execute Body on the owning type.
type MethodImpl struct {
	Decl *Method
	Body *Method
}

// Type is a class, interface, primitive or generic variable descriptor.
type Type struct {
	u        *Universe
	id       TypeID
	kind     Kind
	name     string
	abstract bool

	params []GenericParam // definitions only
	args   []*Type        // instantiations only
	def    *Type          // generic definition; self for definitions
	index  int            // position of a KindVar / KindMethodVar
	owner  *Type          // definition owning a KindVar

	// Declared directly on definitions, substituted on instantiations.
	membersOnce sync.Once
	membersRead atomic.Bool
	base        *Type
	explicit    []*Type
	methods     []*Method
	virtuals    []*Method

	implsOnce   sync.Once
	implsRead   atomic.Bool
	impls       []MethodImpl
	implsByName map[string][]MethodImpl

	runtimeOnce sync.Once
	runtime     []*Type
}

// ID returns the descriptor id.
func (t *Type) ID() TypeID { return t.id }

// Kind returns the descriptor kind.
func (t *Type) Kind() Kind { return t.kind }

// Name returns the unqualified definition name.
func (t *Type) Name() string { return t.name }

// Universe returns the owning universe.
func (t *Type) Universe() *Universe { return t.u }

// IsInterface reports whether t is an interface.
func (t *Type) IsInterface() bool { return t.kind == KindInterface }

// IsClass reports whether t is a class.
func (t *Type) IsClass() bool { return t.kind == KindClass }

// IsAbstract reports whether the class was declared abstract.
func (t *Type) IsAbstract() bool { return t.abstract }

// IsReference reports whether values of t are references (variance applies to them only).
func (t *Type) IsReference() bool {
	return t.kind == KindClass || t.kind == KindInterface || t == t.u.builtins.Object
}

// Definition returns the generic definition of t, or t itself.
func (t *Type) Definition() *Type { return t.def }

// IsDefinition reports whether t is its own definition.
func (t *Type) IsDefinition() bool { return t.def == t }

// IsInstantiated reports whether t is a generic instantiation.
func (t *Type) IsInstantiated() bool { return len(t.args) > 0 }

// HasSameDefinition reports whether t and o share a generic definition.
func (t *Type) HasSameDefinition(o *Type) bool {
	return o != nil && t.def == o.def
}

// Params returns the generic parameters of the definition.
func (t *Type) Params() []GenericParam { return t.def.params }

// Param returns the variable standing for the i-th generic parameter of t's definition.
func (t *Type) Param(i int) *Type {
	if i < 0 || i >= len(t.def.params) {
		return nil
	}
	return t.def.params[i].Var
}

// Args returns the instantiation arguments.
func (t *Type) Args() []*Type { return t.args }

// Base returns the base class, or nil.
func (t *Type) Base() *Type {
	t.materialize()
	return t.base
}

// ExplicitInterfaces returns the interfaces declared directly on t.
func (t *Type) ExplicitInterfaces() []*Type {
	t.materialize()
	return t.explicit
}

// Methods returns the methods declared on t in declaration order.
func (t *Type) Methods() []*Method {
	t.materialize()
	return t.methods
}

// VirtualMethods returns the virtual methods declared on t in declaration order.
func (t *Type) VirtualMethods() []*Method {
	t.materialize()
	return t.virtuals
}

// MethodsByName returns the declared methods called name.
func (t *Type) MethodsByName(name string) []*Method {
	var out []*Method
	for _, m := range t.Methods() {
		if m.name == name {
			out = append(out, m)
		}
	}
	return out
}

// MethodImpls returns the override records declared on t.
func (t *Type) MethodImpls() []MethodImpl {
	t.materializeImpls()
	return t.impls
}

// MethodImplsByDeclName returns the override records whose Decl is called name.
func (t *Type) MethodImplsByDeclName(name string) []MethodImpl {
	t.materializeImpls()
	return t.implsByName[name]
}

// RuntimeInterfaces returns every interface t implements, transitively, base type first.
func (t *Type) RuntimeInterfaces() []*Type {
	t.runtimeOnce.Do(func() {
		seen := make(map[*Type]struct{})
		add := func(i *Type) {
			if _, ok := seen[i]; ok {
				return
			}
			seen[i] = struct{}{}
			t.runtime = append(t.runtime, i)
		}
		if base := t.Base(); base != nil {
			for _, i := range base.RuntimeInterfaces() {
				add(i)
			}
		}
		for _, i := range t.ExplicitInterfaces() {
			add(i)
			for _, j := range i.RuntimeInterfaces() {
				add(j)
			}
		}
	})
	return t.runtime
}

// Implements reports whether iface is one of t's runtime interfaces.
func (t *Type) Implements(iface *Type) bool {
	for _, i := range t.RuntimeInterfaces() {
		if i == iface {
			return true
		}
	}
	return false
}

// DeclaresInterface reports whether iface is declared directly on t.
func (t *Type) DeclaresInterface(iface *Type) bool {
	for _, i := range t.ExplicitInterfaces() {
		if i == iface {
			return true
		}
	}
	return false
}

// FindMethodWithMatchingTypical finds the method on t's hierarchy (t, its
// bases, then its runtime interfaces) that shares m's typical definition.
// Method instantiation is not re-applied.
func (t *Type) FindMethodWithMatchingTypical(m *Method) *Method {
	if m == nil {
		return nil
	}
	typical := m.Typical()
	var host *Type
	for cur := t; cur != nil; cur = cur.Base() {
		if cur.def == typical.owner {
			host = cur
			break
		}
	}
	if host == nil {
		for _, i := range t.RuntimeInterfaces() {
			if i.def == typical.owner {
				host = i
				break
			}
		}
	}
	if host == nil {
		return nil
	}
	methods := host.Methods()
	if typical.index >= len(methods) {
		return nil
	}
	return methods[typical.index]
}

func (t *Type) materialize() {
	t.membersOnce.Do(func() {
		t.membersRead.Store(true)
		if t.def != t {
			d := t.def
			d.materialize()
			t.base = t.u.subst(d.base, t.args, nil)
			if len(d.explicit) > 0 {
				t.explicit = make([]*Type, len(d.explicit))
				for i, iface := range d.explicit {
					t.explicit[i] = t.u.subst(iface, t.args, nil)
				}
			}
			t.methods = make([]*Method, len(d.methods))
			for i, dm := range d.methods {
				m := &Method{
					owner:   t,
					name:    dm.name,
					sig:     t.u.substSig(dm.sig, t.args, nil),
					flags:   dm.flags,
					index:   dm.index,
					typical: dm,
				}
				m.def = m
				t.methods[i] = m
			}
		}
		for _, m := range t.methods {
			if m.IsVirtual() {
				t.virtuals = append(t.virtuals, m)
			}
		}
	})
}

func (t *Type) materializeImpls() {
	t.implsOnce.Do(func() {
		t.implsRead.Store(true)
		if t.def != t {
			d := t.def
			d.materializeImpls()
			own := t.Methods()
			t.impls = make([]MethodImpl, 0, len(d.impls))
			for _, rec := range d.impls {
				declOwner := t.u.subst(rec.Decl.owner, t.args, nil)
				decl := declOwner.Methods()[rec.Decl.index]
				t.impls = append(t.impls, MethodImpl{Decl: decl, Body: own[rec.Body.index]})
			}
		}
		t.implsByName = make(map[string][]MethodImpl, len(t.impls))
		for _, rec := range t.impls {
			t.implsByName[rec.Decl.name] = append(t.implsByName[rec.Decl.name], rec)
		}
	})
}

// String renders t as a type reference, e.g. "IFace<Derived>".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch {
	case len(t.args) > 0:
		parts := make([]string, len(t.args))
		for i, a := range t.args {
			parts[i] = a.String()
		}
		return t.name + "<" + strings.Join(parts, ", ") + ">"
	case len(t.params) > 0:
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = p.Name
		}
		return t.name + "<" + strings.Join(parts, ", ") + ">"
	}
	return t.name
}

// Builder methods ------------------------------------------------------------

// SetAbstract marks a class definition abstract.
func (t *Type) SetAbstract(abstract bool) error {
	if err := t.u.checkMutable(); err != nil {
		return err
	}
	t.abstract = abstract
	return nil
}

// SetBase sets the base class of a class definition.
func (t *Type) SetBase(base *Type) error {
	if err := t.checkMembersOpen(); err != nil {
		return err
	}
	if t.kind != KindClass {
		return fmt.Errorf("%w: interface %s cannot have a base class", ErrInvalidMember, t.name)
	}
	if base == nil {
		t.base = nil
		return nil
	}
	if base.kind != KindClass {
		return fmt.Errorf("%w: base of %s must be a class, got %s %s", ErrInvalidMember, t.name, base.kind, base)
	}
	for cur := base; cur != nil; cur = cur.def.base {
		if cur.def == t {
			return fmt.Errorf("%w: %s cannot derive from %s", ErrCycle, t.name, base)
		}
	}
	t.base = base
	return nil
}

// AddInterface declares iface on t.
func (t *Type) AddInterface(iface *Type) error {
	if err := t.checkMembersOpen(); err != nil {
		return err
	}
	if iface == nil || iface.kind != KindInterface {
		return fmt.Errorf("%w: %s is not an interface", ErrInvalidMember, iface)
	}
	if reachesDefinition(iface.def, t, make(map[*Type]bool)) {
		return fmt.Errorf("%w: %s cannot implement %s", ErrCycle, t.name, iface)
	}
	t.explicit = append(t.explicit, iface)
	return nil
}

func reachesDefinition(from, target *Type, seen map[*Type]bool) bool {
	if from == target {
		return true
	}
	if seen[from] {
		return false
	}
	seen[from] = true
	for _, i := range from.explicit {
		if reachesDefinition(i.def, target, seen) {
			return true
		}
	}
	return false
}

// MethodSpec describes a method to declare with AddMethod.
type MethodSpec struct {
	Name   string
	Return *Type
	Params []*Type
	Flags  Flags
	Arity  int // number of method generic parameters
}

// AddMethod declares a method on t and returns its descriptor.
func (t *Type) AddMethod(spec MethodSpec) (*Method, error) {
	if err := t.checkMembersOpen(); err != nil {
		return nil, err
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: method without a name on %s", ErrInvalidMember, t.name)
	}
	flags := spec.Flags
	if flags&FlagAbstract != 0 {
		flags |= FlagVirtual
	}
	if t.kind == KindInterface && flags&FlagStatic == 0 {
		flags |= FlagVirtual
	}
	m := &Method{
		owner: t,
		name:  spec.Name,
		sig: Signature{
			Return: spec.Return,
			Params: append([]*Type(nil), spec.Params...),
			Static: flags&FlagStatic != 0,
			Arity:  spec.Arity,
		},
		flags: flags,
		index: len(t.methods),
	}
	m.def = m
	m.typical = m
	t.methods = append(t.methods, m)
	return m, nil
}

// AddMethodImpl records that calls through decl execute body on t.
// body must be declared on t.
func (t *Type) AddMethodImpl(decl, body *Method) error {
	if err := t.checkDefinition(); err != nil {
		return err
	}
	if t.implsRead.Load() {
		return fmt.Errorf("%w: override records of %s", ErrMaterialized, t.name)
	}
	if decl == nil || body == nil {
		return fmt.Errorf("%w: incomplete override record on %s", ErrInvalidMember, t.name)
	}
	if body.owner != t {
		return fmt.Errorf("%w: body %s of an override on %s must be declared on %s", ErrInvalidMember, body, t.name, t.name)
	}
	if decl.HasInstantiation() || body.HasInstantiation() {
		return fmt.Errorf("%w: override records refer to method definitions", ErrInvalidMember)
	}
	t.impls = append(t.impls, MethodImpl{Decl: decl, Body: body})
	return nil
}

func (t *Type) checkDefinition() error {
	if err := t.u.checkMutable(); err != nil {
		return err
	}
	if t.def != t || (t.kind != KindClass && t.kind != KindInterface) {
		return fmt.Errorf("%w: %s is not a class or interface definition", ErrInvalidMember, t)
	}
	return nil
}

// checkMembersOpen rejects edits to members, base or interfaces that a
// reader has already observed.
func (t *Type) checkMembersOpen() error {
	if err := t.checkDefinition(); err != nil {
		return err
	}
	if t.membersRead.Load() {
		return fmt.Errorf("%w: members of %s", ErrMaterialized, t.name)
	}
	return nil
}
