package dispatch

import "slotwise/internal/typesys"

// searchOrder selects which of several name/sig matches on one type wins.
type searchOrder bool

const (
	reverseSearch searchOrder = true  // last declared match
	forwardSearch searchOrder = false // first exact match
)

// candidateFilter rejects name/sig matches; target is the method being matched.
type candidateFilter func(target, candidate *typesys.Method) bool

// FindSlotDefiningMethod returns the method that owns m's dispatch slot: the
// nearest newslot method up m's base chain that m overrides by name and
// signature, or the least derived name/sig match when none is newslot.
func FindSlotDefiningMethod(m *typesys.Method) *typesys.Method {
	if m == nil {
		return nil
	}
	for cur := m.Owner().Base(); cur != nil && !m.IsNewSlot(); cur = cur.Base() {
		if found := findMatchingVirtualMethod(m, cur, reverseSearch, nil); found != nil {
			m = found
		}
	}
	return m
}

// findMatchingVirtualMethod scans the virtual methods declared on t for a
// name match with an equivalent signature, preferring an exact signature.
func findMatchingVirtualMethod(target *typesys.Method, t *typesys.Type, order searchOrder, accept candidateFilter) *typesys.Method {
	name := target.Name()
	sig := target.Signature()

	var exact, equivalent *typesys.Method
	for _, candidate := range t.VirtualMethods() {
		if candidate.Name() != name || !candidate.Signature().EquivalentTo(sig) {
			continue
		}
		if accept != nil && !accept(target, candidate) {
			continue
		}
		equivalent = candidate
		if candidate.Signature().Equal(sig) {
			exact = candidate
		}
		if order == forwardSearch && exact != nil {
			return exact
		}
	}
	if exact == nil {
		return equivalent
	}
	return exact
}

// findMatchingVirtualMethodInSlot restricts matches to methods sharing the
// slot defined by slotDefining.
func findMatchingVirtualMethodInSlot(slotDefining *typesys.Method, t *typesys.Type, order searchOrder) *typesys.Method {
	return findMatchingVirtualMethod(slotDefining, t, order, sameVirtualSlot)
}

func sameVirtualSlot(slotDefining, candidate *typesys.Method) bool {
	return FindSlotDefiningMethod(candidate) == slotDefining
}

func isPublicCandidate(_, candidate *typesys.Method) bool {
	return candidate.IsPublic()
}

// requiresSlotUnification reports whether m overrides through a covariant
// return record on its own type, which keeps the overridden slot merged with
// m's slot through further derivation.
func requiresSlotUnification(m *typesys.Method) bool {
	if m == nil {
		return false
	}
	for _, rec := range m.Owner().MethodImpls() {
		if rec.Body == m && !rec.Decl.Signature().Equal(m.Signature()) {
			return true
		}
	}
	return false
}
