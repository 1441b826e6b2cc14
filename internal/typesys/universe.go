package typesys

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// Builtins stores the primitive types every universe is seeded with.
type Builtins struct {
	Object *Type
	Int    *Type
	Bool   *Type
	String *Type
	Float  *Type
}

// Universe owns all descriptors and interns generic instantiations.
type Universe struct {
	mu          sync.Mutex
	frozen      bool
	types       []*Type
	defs        []*Type
	byName      map[string]*Type
	insts       map[instKey]*Type
	methodInsts map[methodInstKey]*Method
	methodVars  []*Type
	builtins    Builtins
}

type instKey struct {
	def  TypeID
	args string
}

type methodInstKey struct {
	method *Method
	args   string
}

// NewUniverse constructs a universe seeded with the built-in primitives.
func NewUniverse() *Universe {
	u := &Universe{
		byName:      make(map[string]*Type, 64),
		insts:       make(map[instKey]*Type, 64),
		methodInsts: make(map[methodInstKey]*Method),
	}
	u.types = append(u.types, nil) // reserve 0 as NoTypeID
	u.builtins.Object = u.primitive("object")
	u.builtins.Int = u.primitive("int")
	u.builtins.Bool = u.primitive("bool")
	u.builtins.String = u.primitive("string")
	u.builtins.Float = u.primitive("float")
	return u
}

func (u *Universe) primitive(name string) *Type {
	t := &Type{u: u, kind: KindPrimitive, name: name}
	t.def = t
	u.register(t)
	u.byName[name] = t
	return t
}

// register assigns the next TypeID. Callers hold u.mu or own u exclusively.
func (u *Universe) register(t *Type) {
	n, err := safecast.Conv[uint32](len(u.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	t.id = TypeID(n)
	u.types = append(u.types, t)
}

// Builtins returns the primitive types.
func (u *Universe) Builtins() Builtins {
	return u.builtins
}

// Object returns the built-in object type.
func (u *Universe) Object() *Type { return u.builtins.Object }

// Int returns the built-in int type.
func (u *Universe) Int() *Type { return u.builtins.Int }

// Freeze ends the build phase. Builder methods fail with ErrFrozen afterwards.
func (u *Universe) Freeze() {
	u.mu.Lock()
	u.frozen = true
	u.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (u *Universe) Frozen() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.frozen
}

func (u *Universe) checkMutable() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.frozen {
		return ErrFrozen
	}
	return nil
}

// DefineType declares a new class or interface definition.
func (u *Universe) DefineType(name string, kind Kind, params ...GenericParam) (*Type, error) {
	if kind != KindClass && kind != KindInterface {
		return nil, fmt.Errorf("%w: %s cannot be declared as %s", ErrInvalidMember, name, kind)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.frozen {
		return nil, ErrFrozen
	}
	if _, exists := u.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	t := &Type{u: u, kind: kind, name: name}
	t.def = t
	u.register(t)
	if len(params) > 0 {
		t.params = make([]GenericParam, len(params))
		for i, p := range params {
			v := &Type{u: u, kind: KindVar, name: p.Name, index: i, owner: t}
			v.def = v
			u.register(v)
			p.Var = v
			t.params[i] = p
		}
	}
	u.byName[name] = t
	u.defs = append(u.defs, t)
	return t, nil
}

// Lookup finds a definition or primitive by name.
func (u *Universe) Lookup(name string) (*Type, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	t, ok := u.byName[name]
	return t, ok
}

// Definitions returns the declared class and interface definitions in declaration order.
func (u *Universe) Definitions() []*Type {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*Type, len(u.defs))
	copy(out, u.defs)
	return out
}

// MethodVar returns the i-th method generic parameter (!!i).
func (u *Universe) MethodVar(i int) *Type {
	u.mu.Lock()
	defer u.mu.Unlock()
	for len(u.methodVars) <= i {
		v := &Type{u: u, kind: KindMethodVar, index: len(u.methodVars)}
		v.name = "!!" + strconv.Itoa(v.index)
		v.def = v
		u.register(v)
		u.methodVars = append(u.methodVars, v)
	}
	return u.methodVars[i]
}

// Instantiate returns the interned instantiation of def over args.
// Instantiating a definition over its own parameters yields the definition.
func (u *Universe) Instantiate(def *Type, args ...*Type) (*Type, error) {
	if def == nil || def.def != def || len(def.params) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotGeneric, def)
	}
	if len(args) != len(def.params) {
		return nil, fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrArity, def.name, len(def.params), len(args))
	}
	open := true
	for i, a := range args {
		if a == nil {
			return nil, fmt.Errorf("%w: nil argument %d for %s", ErrInvalidMember, i, def.name)
		}
		if a != def.params[i].Var {
			open = false
		}
	}
	if open {
		return def, nil
	}
	key := instKey{def: def.id, args: argsKey(args)}

	u.mu.Lock()
	defer u.mu.Unlock()
	if t, ok := u.insts[key]; ok {
		return t, nil
	}
	t := &Type{
		u:        u,
		kind:     def.kind,
		name:     def.name,
		abstract: def.abstract,
		def:      def,
		args:     append([]*Type(nil), args...),
	}
	u.register(t)
	u.insts[key] = t
	return t, nil
}

func (u *Universe) mustInstantiate(def *Type, args []*Type) *Type {
	t, err := u.Instantiate(def, args...)
	if err != nil {
		panic(fmt.Errorf("typesys: substitution produced an invalid instantiation: %w", err))
	}
	return t
}

func argsKey(args []*Type) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(a.id), 10))
	}
	return sb.String()
}

// subst replaces type variables with targs and method variables with margs.
// A nil slice leaves the corresponding variables untouched.
func (u *Universe) subst(x *Type, targs, margs []*Type) *Type {
	if x == nil {
		return nil
	}
	switch x.kind {
	case KindVar:
		if x.index < len(targs) {
			return targs[x.index]
		}
		return x
	case KindMethodVar:
		if x.index < len(margs) {
			return margs[x.index]
		}
		return x
	}
	if len(x.args) == 0 {
		return x
	}
	changed := false
	args := make([]*Type, len(x.args))
	for i, a := range x.args {
		args[i] = u.subst(a, targs, margs)
		if args[i] != a {
			changed = true
		}
	}
	if !changed {
		return x
	}
	return u.mustInstantiate(x.def, args)
}

func (u *Universe) substSig(s Signature, targs, margs []*Type) Signature {
	out := Signature{
		Return: u.subst(s.Return, targs, margs),
		Static: s.Static,
		Arity:  s.Arity,
	}
	if len(s.Params) > 0 {
		out.Params = make([]*Type, len(s.Params))
		for i, p := range s.Params {
			out.Params[i] = u.subst(p, targs, margs)
		}
	}
	return out
}
