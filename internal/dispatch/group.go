package dispatch

import "slotwise/internal/typesys"

// UnificationGroup is the set of methods that currently share one dispatch
// slot while a hierarchy is walked base to derived. It lives for a single
// resolution call.
//
// The defining method is never a member. Slot-unified methods stay merged
// even when an ordinary name/sig override would separate them (covariant
// return overrides).
type UnificationGroup struct {
	defining    *typesys.Method
	members     []*typesys.Method
	slotUnified []*typesys.Method
}

func newUnificationGroup(defining *typesys.Method) *UnificationGroup {
	return &UnificationGroup{defining: defining}
}

// Defining returns the method currently defining the slot.
func (g *UnificationGroup) Defining() *typesys.Method { return g.defining }

// Members returns a copy of the non-defining members.
func (g *UnificationGroup) Members() []*typesys.Method {
	return append([]*typesys.Method(nil), g.members...)
}

// SlotUnified returns a copy of the methods whose merge must persist.
func (g *UnificationGroup) SlotUnified() []*typesys.Method {
	return append([]*typesys.Method(nil), g.slotUnified...)
}

// Contains reports whether m is the defining method or a member.
func (g *UnificationGroup) Contains(m *typesys.Method) bool {
	return g.defining == m || g.isMember(m)
}

func (g *UnificationGroup) isMember(m *typesys.Method) bool {
	return indexOf(g.members, m) >= 0
}

func (g *UnificationGroup) requiresSlotUnification(m *typesys.Method) bool {
	return indexOf(g.slotUnified, m) >= 0
}

func (g *UnificationGroup) addSlotUnified(m *typesys.Method) {
	if g.requiresSlotUnification(m) {
		return
	}
	g.slotUnified = append(g.slotUnified, m)
}

// setDefining makes m the defining method; the previous one stays a member.
// Nothing changes when m already is the defining method or a member.
func (g *UnificationGroup) setDefining(m *typesys.Method) {
	if g.isMember(m) || g.defining == m {
		return
	}
	old := g.defining
	g.defining = m
	g.add(old)
}

func (g *UnificationGroup) add(m *typesys.Method) {
	if m == g.defining || g.isMember(m) {
		return
	}
	g.members = append(g.members, m)
}

func (g *UnificationGroup) remove(m *typesys.Method) error {
	if m == g.defining {
		return &MalformedTypeError{
			Type:   m.Owner(),
			Method: m,
			Reason: "override record separates the defining method from its own slot",
		}
	}
	if i := indexOf(g.members, m); i >= 0 {
		g.members = append(g.members[:i], g.members[i+1:]...)
	}
	return nil
}

func indexOf(list []*typesys.Method, m *typesys.Method) int {
	for i, x := range list {
		if x == m {
			return i
		}
	}
	return -1
}

// methodSet is an identity-keyed set scoped to one call.
type methodSet map[*typesys.Method]struct{}

func (s methodSet) add(m *typesys.Method) { s[m] = struct{}{} }

func (s methodSet) has(m *typesys.Method) bool {
	_, ok := s[m]
	return ok
}
