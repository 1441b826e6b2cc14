package dispatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"slotwise/internal/typesys"
)

const (
	fVirtual  = typesys.FlagVirtual | typesys.FlagPublic
	fNewSlot  = typesys.FlagVirtual | typesys.FlagNewSlot | typesys.FlagPublic
	fAbstract = typesys.FlagAbstract | typesys.FlagNewSlot | typesys.FlagPublic
	fStatic   = typesys.FlagStatic | typesys.FlagPublic
)

// methodIdentity compares descriptors by pointer.
var methodIdentity = cmp.Comparer(func(a, b *typesys.Method) bool { return a == b })

// fixture builds small hierarchies for resolver tests; every helper fails
// the test on a builder error.
type fixture struct {
	t *testing.T
	u *typesys.Universe
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, u: typesys.NewUniverse()}
}

func (f *fixture) define(name string, kind typesys.Kind, params ...typesys.GenericParam) *typesys.Type {
	f.t.Helper()
	ty, err := f.u.DefineType(name, kind, params...)
	if err != nil {
		f.t.Fatalf("define %s: %v", name, err)
	}
	return ty
}

func (f *fixture) class(name string, base *typesys.Type, ifaces ...*typesys.Type) *typesys.Type {
	f.t.Helper()
	ty := f.define(name, typesys.KindClass)
	f.extend(ty, base, ifaces...)
	return ty
}

func (f *fixture) iface(name string, ifaces ...*typesys.Type) *typesys.Type {
	f.t.Helper()
	ty := f.define(name, typesys.KindInterface)
	f.extend(ty, nil, ifaces...)
	return ty
}

func (f *fixture) extend(ty, base *typesys.Type, ifaces ...*typesys.Type) {
	f.t.Helper()
	if base != nil {
		if err := ty.SetBase(base); err != nil {
			f.t.Fatalf("base of %s: %v", ty, err)
		}
	}
	for _, i := range ifaces {
		if err := ty.AddInterface(i); err != nil {
			f.t.Fatalf("interface %s on %s: %v", i, ty, err)
		}
	}
}

func (f *fixture) abstract(ty *typesys.Type) {
	f.t.Helper()
	if err := ty.SetAbstract(true); err != nil {
		f.t.Fatalf("abstract %s: %v", ty, err)
	}
}

func (f *fixture) method(owner *typesys.Type, name string, ret *typesys.Type, flags typesys.Flags, params ...*typesys.Type) *typesys.Method {
	f.t.Helper()
	m, err := owner.AddMethod(typesys.MethodSpec{Name: name, Return: ret, Params: params, Flags: flags})
	if err != nil {
		f.t.Fatalf("method %s.%s: %v", owner, name, err)
	}
	return m
}

func (f *fixture) genericMethod(owner *typesys.Type, name string, ret *typesys.Type, flags typesys.Flags, arity int) *typesys.Method {
	f.t.Helper()
	m, err := owner.AddMethod(typesys.MethodSpec{Name: name, Return: ret, Flags: flags, Arity: arity})
	if err != nil {
		f.t.Fatalf("method %s.%s: %v", owner, name, err)
	}
	return m
}

func (f *fixture) override(owner *typesys.Type, decl, body *typesys.Method) {
	f.t.Helper()
	if err := owner.AddMethodImpl(decl, body); err != nil {
		f.t.Fatalf("override %s -> %s: %v", decl, body, err)
	}
}

func (f *fixture) inst(def *typesys.Type, args ...*typesys.Type) *typesys.Type {
	f.t.Helper()
	ty, err := f.u.Instantiate(def, args...)
	if err != nil {
		f.t.Fatalf("instantiate %s: %v", def, err)
	}
	return ty
}

func (f *fixture) freeze() { f.u.Freeze() }

// methodOf returns the declared method called name on ty (an instantiation
// included), failing when it is missing or ambiguous.
func methodOf(t *testing.T, ty *typesys.Type, name string) *typesys.Method {
	t.Helper()
	ms := ty.MethodsByName(name)
	if len(ms) != 1 {
		t.Fatalf("%s has %d methods called %s", ty, len(ms), name)
	}
	return ms[0]
}

// requireMethod fails unless got is want.
func requireMethod(t *testing.T, what string, got, want *typesys.Method) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: got %s, want %s", what, got, want)
	}
}
