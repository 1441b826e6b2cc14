package dispatch

import (
	"testing"

	"slotwise/internal/typesys"
)

func TestResolveInterfaceExplicitOverrideWins(t *testing.T) {
	f := newFixture(t)
	i := f.iface("I")
	im := f.method(i, "M", nil, fAbstract)
	c := f.class("C", nil, i)
	f.method(c, "M", nil, fNewSlot)
	impl := f.method(c, "Explicit", nil, typesys.FlagVirtual|typesys.FlagNewSlot)
	f.override(c, im, impl)
	f.freeze()

	requireMethod(t, "I.M on C", ResolveInterfaceToVirtual(im, c), impl)
}

func TestResolveInterfaceExplicitDeclarationSearchesForward(t *testing.T) {
	f := newFixture(t)
	i := f.iface("I")
	im := f.method(i, "M", nil, fAbstract)
	c := f.class("C", nil, i)
	first := f.method(c, "M", nil, fNewSlot)
	f.method(c, "M", nil, fNewSlot)
	f.freeze()

	requireMethod(t, "I.M on C", ResolveInterfaceToVirtual(im, c), first)
}

func TestResolveInterfaceBaseChainSearchesReverse(t *testing.T) {
	f := newFixture(t)
	i := f.iface("I")
	im := f.method(i, "M", nil, fAbstract)
	b := f.class("B", nil)
	f.method(b, "M", nil, fNewSlot)
	last := f.method(b, "M", nil, fNewSlot)
	c := f.class("C", b, i)
	f.freeze()

	requireMethod(t, "I.M on C", ResolveInterfaceToVirtual(im, c), last)
}

func TestResolveInterfaceSkipsNonPublicCandidates(t *testing.T) {
	f := newFixture(t)
	i := f.iface("I")
	im := f.method(i, "M", nil, fAbstract)
	c := f.class("C", nil, i)
	f.method(c, "M", nil, typesys.FlagVirtual|typesys.FlagNewSlot)
	f.freeze()

	if got := ResolveInterfaceToVirtual(im, c); got != nil {
		t.Fatalf("expected no public implementation, got %s", got)
	}
}

func TestResolveInterfaceImplicitFirstIntroducerWins(t *testing.T) {
	f := newFixture(t)
	i := f.iface("I")
	im := f.method(i, "M", nil, fAbstract)
	b := f.class("B", nil, i)
	bm := f.method(b, "M", nil, fNewSlot)
	c := f.class("C", b)
	f.method(c, "M", nil, fNewSlot)
	d := f.class("D", b, i)
	dm := f.method(d, "M", nil, fNewSlot)
	e := f.class("E", b)
	em := f.method(e, "M", nil, fVirtual)
	g := f.class("G", b, i)
	f.freeze()

	tests := []struct {
		name string
		on   *typesys.Type
		want *typesys.Method
	}{
		{"introducing type", b, bm},
		{"inherited from introducer", c, bm},
		{"redeclared interface", d, dm},
		{"redeclared interface without own method", g, bm},
		{"override keeps base slot", e, bm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireMethod(t, tt.name, ResolveInterfaceToVirtual(im, tt.on), tt.want)
		})
	}

	// The slot maps to E's override through virtual resolution.
	got, err := ResolveVirtual(ResolveInterfaceToVirtual(im, e), e)
	if err != nil {
		t.Fatalf("ResolveVirtual: %v", err)
	}
	requireMethod(t, "I.M executed on E", got, em)
}

func TestResolveInterfaceNotImplementedOrInterfaceType(t *testing.T) {
	f := newFixture(t)
	i := f.iface("I")
	im := f.method(i, "M", nil, fAbstract)
	j := f.iface("J", i)
	c := f.class("C", nil)
	f.method(c, "M", nil, fNewSlot)
	f.freeze()

	if got := ResolveInterfaceToVirtual(im, c); got != nil {
		t.Fatalf("C does not implement I, got %s", got)
	}
	if got := ResolveInterfaceToVirtual(im, j); got != nil {
		t.Fatalf("interfaces resolve through default implementations, got %s", got)
	}
}

func TestResolveVariantInterfaceCovariant(t *testing.T) {
	f := newFixture(t)
	base := f.class("Base", nil)
	derived := f.class("Derived", base)
	g := f.define("IFace", typesys.KindInterface, typesys.GenericParam{Name: "T", Variance: typesys.Covariant})
	f.method(g, "M", g.Param(0), fAbstract)
	c := f.class("C", nil, f.inst(g, derived))
	cm := f.method(c, "M", derived, fNewSlot)
	f.freeze()

	target := methodOf(t, f.inst(g, base), "M")
	if got := ResolveInterfaceToVirtual(target, c); got != nil {
		t.Fatalf("exact resolution must not apply variance, got %s", got)
	}
	requireMethod(t, "IFace<Base>.M on C", ResolveVariantInterfaceToVirtual(target, c), cm)

	exact := methodOf(t, f.inst(g, derived), "M")
	requireMethod(t, "IFace<Derived>.M on C", ResolveVariantInterfaceToVirtual(exact, c), cm)
}

func TestResolveVariantInterfaceInvariantDoesNotCast(t *testing.T) {
	f := newFixture(t)
	base := f.class("Base", nil)
	derived := f.class("Derived", base)
	g := f.define("IList", typesys.KindInterface, typesys.GenericParam{Name: "T"})
	f.method(g, "M", nil, fAbstract)
	c := f.class("C", nil, f.inst(g, derived))
	f.method(c, "M", nil, fNewSlot)
	f.freeze()

	target := methodOf(t, f.inst(g, base), "M")
	if got := ResolveVariantInterfaceToVirtual(target, c); got != nil {
		t.Fatalf("invariant parameter must not cast, got %s", got)
	}
}

func TestResolveInterfaceGenericFoldingPrefersFirstDeclared(t *testing.T) {
	f := newFixture(t)
	i := f.define("I", typesys.KindInterface, typesys.GenericParam{Name: "T"})
	f.method(i, "M", nil, fAbstract)
	c := f.define("C", typesys.KindClass, typesys.GenericParam{Name: "T"}, typesys.GenericParam{Name: "U"})
	it := f.inst(i, c.Param(0))
	iu := f.inst(i, c.Param(1))
	f.extend(c, nil, it, iu)
	first := f.method(c, "First", nil, typesys.FlagVirtual|typesys.FlagNewSlot)
	second := f.method(c, "Second", nil, typesys.FlagVirtual|typesys.FlagNewSlot)
	f.override(c, methodOf(t, iu, "M"), second)
	f.override(c, methodOf(t, it, "M"), first)
	f.freeze()

	in := f.u.Int()
	folded := f.inst(c, in, in)
	target := methodOf(t, f.inst(i, in), "M")
	requireMethod(t, "I<int>.M on C<int, int>", ResolveInterfaceToVirtual(target, folded), methodOf(t, folded, "First"))

	split := f.inst(c, in, f.u.Builtins().String)
	requireMethod(t, "I<int>.M on C<int, string>", ResolveInterfaceToVirtual(target, split), methodOf(t, split, "First"))
}

func TestResolveInterfaceCall(t *testing.T) {
	f := newFixture(t)
	i := f.iface("I")
	im := f.method(i, "M", nil, fAbstract)
	i0 := f.iface("I0")
	x := f.method(i0, "X", nil, fVirtual)
	i1 := f.iface("I1", i0)
	x1 := f.method(i1, "X", nil, fVirtual)
	f.override(i1, x, x1)
	i2 := f.iface("I2", i0)
	x2 := f.method(i2, "X", nil, fVirtual)
	f.override(i2, x, x2)

	c := f.class("C", nil, i)
	cm := f.method(c, "M", nil, fNewSlot)
	d := f.class("D", c)
	dm := f.method(d, "M", nil, fVirtual)
	e := f.class("E", nil, i1)
	amb := f.class("Amb", nil, i1, i2)
	abs := f.class("Abs", nil, i)
	f.abstract(abs)
	f.method(abs, "M", nil, fAbstract)
	f.freeze()

	tests := []struct {
		name string
		im   *typesys.Method
		on   *typesys.Type
		kind CallKind
		want *typesys.Method
	}{
		{"class method", im, c, CallClassMethod, cm},
		{"derived override", im, d, CallClassMethod, dm},
		{"default body", x, e, CallDefaultMethod, x1},
		{"diamond", x, amb, CallAmbiguous, nil},
		{"abstract slot", im, abs, CallUnresolved, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveInterfaceCall(tt.im, tt.on)
			if err != nil {
				t.Fatalf("ResolveInterfaceCall: %v", err)
			}
			if got.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", got.Kind, tt.kind)
			}
			requireMethod(t, tt.name, got.Method, tt.want)
		})
	}

	got, err := ResolveInterfaceCall(im, d)
	if err != nil {
		t.Fatalf("ResolveInterfaceCall: %v", err)
	}
	requireMethod(t, "slot of I.M on D", got.Slot, cm)
}
