package dispatch

import (
	"testing"

	"slotwise/internal/typesys"
)

// defaultHierarchy declares I0.X with a body, and I1, I2 : I0 that both
// override it. I3 : I1, I2 settles the diamond with its own body and IRe : I0
// re-abstracts X.
type defaultHierarchy struct {
	i0, i1, i2, i3, re *typesys.Type
	x, x1, x2, x3      *typesys.Method
}

func newDefaultHierarchy(f *fixture) *defaultHierarchy {
	h := &defaultHierarchy{}
	h.i0 = f.iface("I0")
	h.x = f.method(h.i0, "X", nil, fVirtual)
	h.i1 = f.iface("I1", h.i0)
	h.x1 = f.method(h.i1, "X", nil, fVirtual)
	f.override(h.i1, h.x, h.x1)
	h.i2 = f.iface("I2", h.i0)
	h.x2 = f.method(h.i2, "X", nil, fVirtual)
	f.override(h.i2, h.x, h.x2)
	h.i3 = f.iface("I3", h.i1, h.i2)
	h.x3 = f.method(h.i3, "X", nil, fVirtual)
	f.override(h.i3, h.x, h.x3)
	h.re = f.iface("IRe", h.i0)
	f.override(h.re, h.x, f.method(h.re, "X", nil, fAbstract))
	return h
}

func TestResolveDefaultImplementation(t *testing.T) {
	f := newFixture(t)
	h := newDefaultHierarchy(f)
	only0 := f.class("Only0", nil, h.i0)
	only1 := f.class("Only1", nil, h.i1)
	both := f.class("Both", nil, h.i1, h.i2)
	settled := f.class("Settled", nil, h.i3)
	settledToo := f.class("SettledToo", nil, h.i1, h.i3)
	reabs := f.class("Reabs", nil, h.re)
	f.freeze()

	tests := []struct {
		name string
		on   *typesys.Type
		want DefaultResolution
		impl *typesys.Method
	}{
		{"declaring interface body", only0, DefaultImplementation, h.x},
		{"more specific interface", only1, DefaultImplementation, h.x1},
		{"diamond", both, Diamond, nil},
		{"diamond settled", settled, DefaultImplementation, h.x3},
		{"diamond settled in any order", settledToo, DefaultImplementation, h.x3},
		{"reabstraction", reabs, Reabstraction, nil},
		{"interface itself", h.i1, DefaultImplementation, h.x1},
		{"interface diamond", h.i3, DefaultImplementation, h.x3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, impl := ResolveInterfaceToDefaultImplementation(h.x, tt.on)
			if res != tt.want {
				t.Fatalf("resolution = %s, want %s", res, tt.want)
			}
			requireMethod(t, tt.name, impl, tt.impl)
		})
	}
}

func TestResolveDefaultImplementationAbstractWithoutBodyIsNone(t *testing.T) {
	f := newFixture(t)
	i := f.iface("I")
	m := f.method(i, "M", nil, fAbstract)
	c := f.class("C", nil, i)
	other := f.class("Other", nil)
	f.freeze()

	for _, ty := range []*typesys.Type{c, other} {
		if res, impl := ResolveInterfaceToDefaultImplementation(m, ty); res != DefaultNone || impl != nil {
			t.Fatalf("%s: got %s %s, want none", ty, res, impl)
		}
	}
}

func TestResolveDefaultImplementationReinstantiates(t *testing.T) {
	f := newFixture(t)
	i0 := f.iface("I0")
	x := f.genericMethod(i0, "X", nil, fAbstract, 1)
	i1 := f.iface("I1", i0)
	x1 := f.genericMethod(i1, "X", nil, fVirtual, 1)
	f.override(i1, x, x1)
	c := f.class("C", nil, i1)
	f.freeze()

	s := f.u.Builtins().String
	res, impl := ResolveInterfaceToDefaultImplementation(x.MustInstantiate(s), c)
	if res != DefaultImplementation {
		t.Fatalf("resolution = %s, want default", res)
	}
	requireMethod(t, "I0.X<string> on C", impl, x1.MustInstantiate(s))
}

func TestResolveVariantDefaultImplementation(t *testing.T) {
	f := newFixture(t)
	base := f.class("Base", nil)
	derived := f.class("Derived", base)
	g := f.define("IFace", typesys.KindInterface, typesys.GenericParam{Name: "T", Variance: typesys.Covariant})
	f.method(g, "X", g.Param(0), fVirtual)
	c := f.class("C", nil, f.inst(g, derived))
	f.freeze()

	target := methodOf(t, f.inst(g, base), "X")
	if res, _ := ResolveInterfaceToDefaultImplementation(target, c); res != DefaultNone {
		t.Fatalf("exact resolution = %s, want none", res)
	}
	res, impl := ResolveVariantInterfaceToDefaultImplementation(target, c)
	if res != DefaultImplementation {
		t.Fatalf("variant resolution = %s, want default", res)
	}
	requireMethod(t, "IFace<Base>.X on C", impl, methodOf(t, f.inst(g, derived), "X"))
}

func TestDefaultResolutionString(t *testing.T) {
	cases := map[DefaultResolution]string{
		DefaultNone:           "none",
		DefaultImplementation: "default",
		Reabstraction:         "reabstraction",
		Diamond:               "diamond",
		DefaultResolution(9):  "DefaultResolution(9)",
	}
	for r, want := range cases {
		if got := r.String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", r, got, want)
		}
	}
}
