package typesys

import "testing"

func TestAssignabilityAndVariance(t *testing.T) {
	u := NewUniverse()
	base := mustDefine(t, u, "Base", KindClass)
	derived := mustDefine(t, u, "Derived", KindClass)
	_ = derived.SetBase(base)
	out := mustDefine(t, u, "IOut", KindInterface, GenericParam{Name: "T", Variance: Covariant})
	in := mustDefine(t, u, "IIn", KindInterface, GenericParam{Name: "T", Variance: Contravariant})
	inv := mustDefine(t, u, "IInv", KindInterface, GenericParam{Name: "T"})
	impl := mustDefine(t, u, "Impl", KindClass)
	_ = impl.AddInterface(mustInstantiate(t, u, out, derived))
	u.Freeze()

	outBase := mustInstantiate(t, u, out, base)
	outDerived := mustInstantiate(t, u, out, derived)
	outInt := mustInstantiate(t, u, out, u.Int())
	outObj := mustInstantiate(t, u, out, u.Object())
	inBase := mustInstantiate(t, u, in, base)
	inDerived := mustInstantiate(t, u, in, derived)
	invBase := mustInstantiate(t, u, inv, base)
	invDerived := mustInstantiate(t, u, inv, derived)

	casts := []struct {
		name     string
		src, dst *Type
		want     bool
	}{
		{"identity", outBase, outBase, true},
		{"covariant widening", outDerived, outBase, true},
		{"covariant narrowing", outBase, outDerived, false},
		{"covariant value type", outInt, outObj, false},
		{"contravariant narrowing", inBase, inDerived, true},
		{"contravariant widening", inDerived, inBase, false},
		{"invariant", invDerived, invBase, false},
		{"different definitions", outDerived, inBase, false},
	}
	for _, tc := range casts {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanCastTo(tc.src, tc.dst); got != tc.want {
				t.Fatalf("CanCastTo(%s, %s) = %v, want %v", tc.src, tc.dst, got, tc.want)
			}
		})
	}

	assigns := []struct {
		src, dst *Type
		want     bool
	}{
		{derived, base, true},
		{base, derived, false},
		{derived, u.Object(), true},
		{u.Int(), u.Object(), false},
		{impl, outDerived, true},
		{impl, outBase, true},
		{impl, outInt, false},
		{nil, nil, true},
		{nil, base, false},
	}
	for _, tc := range assigns {
		if got := IsAssignableTo(tc.src, tc.dst); got != tc.want {
			t.Fatalf("IsAssignableTo(%s, %s) = %v, want %v", tc.src, tc.dst, got, tc.want)
		}
	}
}

func TestSignatureComparisons(t *testing.T) {
	u := NewUniverse()
	base := mustDefine(t, u, "Base", KindClass)
	derived := mustDefine(t, u, "Derived", KindClass)
	_ = derived.SetBase(base)
	u.Freeze()

	sBase := Signature{Return: base, Params: []*Type{u.Int()}}
	sDerived := Signature{Return: derived, Params: []*Type{u.Int()}}
	sOther := Signature{Return: base, Params: []*Type{u.Builtins().String}}
	sStatic := Signature{Return: base, Params: []*Type{u.Int()}, Static: true}

	if !sBase.Equal(sBase) || sBase.Equal(sDerived) {
		t.Fatalf("Equal is wrong")
	}
	if !sBase.EquivalentTo(sDerived) || !sDerived.EquivalentTo(sBase) {
		t.Fatalf("covariant returns must be equivalent in both directions")
	}
	if !sDerived.CovariantTo(sBase) || sBase.CovariantTo(sDerived) {
		t.Fatalf("CovariantTo must be directional")
	}
	if sBase.EquivalentTo(sOther) || sBase.EquivalentTo(sStatic) {
		t.Fatalf("parameter or staticness differences are never equivalent")
	}
	if got := sDerived.String(); got != "(int) Derived" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Signature{}).String(); got != "() void" {
		t.Fatalf("String() = %q", got)
	}
}
