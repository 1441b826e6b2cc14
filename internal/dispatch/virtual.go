package dispatch

import (
	"math"

	"slotwise/internal/typesys"
)

// ResolveVirtual returns the method that executes for a virtual call through
// target on an instance of objectType. A nil method means the slot has no
// body on objectType (abstract or not overridden by anything concrete).
func ResolveVirtual(target *typesys.Method, objectType *typesys.Type) (*typesys.Method, error) {
	if target == nil || objectType == nil {
		return nil, nil
	}
	initial := target
	uninstantiated, target := projectToDefinition(target, objectType)
	if target == nil {
		return nil, nil
	}

	group, err := buildGroup(target, uninstantiated)
	if err != nil {
		return nil, err
	}

	resolved := findNameSigOverrideForVirtualMethod(group.defining, uninstantiated)
	if resolved == nil || resolved.IsAbstract() {
		return nil, nil
	}

	if uninstantiated != objectType {
		resolved = objectType.FindMethodWithMatchingTypical(resolved)
		if resolved == nil {
			return nil, &MalformedTypeError{Type: objectType, Method: initial, Reason: "override is missing from the instantiated hierarchy"}
		}
	}
	if initial.HasInstantiation() {
		inst, err := resolved.Instantiate(initial.Instantiation()...)
		if err != nil {
			return nil, &MalformedTypeError{Type: objectType, Method: resolved, Reason: err.Error()}
		}
		resolved = inst
	}
	return resolved, nil
}

// BuildUnificationGroup returns the unification group ResolveVirtual builds
// for target on objectType, before the final name/sig lookup.
func BuildUnificationGroup(target *typesys.Method, objectType *typesys.Type) (*UnificationGroup, error) {
	if target == nil || objectType == nil {
		return nil, nil
	}
	uninstantiated, target := projectToDefinition(target, objectType)
	if target == nil {
		return nil, nil
	}
	return buildGroup(target, uninstantiated)
}

// projectToDefinition maps objectType to its generic definition and target
// to the matching method in that definition's hierarchy. Dispatch slots do
// not depend on instantiation arguments.
func projectToDefinition(target *typesys.Method, objectType *typesys.Type) (*typesys.Type, *typesys.Method) {
	uninstantiated := objectType.Definition()
	target = target.Definition()
	if uninstantiated != objectType {
		target = uninstantiated.FindMethodWithMatchingTypical(target)
	}
	return uninstantiated, target
}

func buildGroup(target *typesys.Method, t *typesys.Type) (*UnificationGroup, error) {
	group := newUnificationGroup(FindSlotDefiningMethod(target))
	if err := findBaseUnificationGroup(t, group); err != nil {
		return nil, err
	}
	return group, nil
}

// findBaseUnificationGroup grows group from the top of current's hierarchy
// down to current.
func findBaseUnificationGroup(current *typesys.Type, group *UnificationGroup) error {
	original := group.defining

	retarget := func() {
		impl := findImplFromDecl(current, group.defining)
		if impl == nil {
			return
		}
		if requiresSlotUnification(impl) {
			group.addSlotUnified(group.defining)
			group.addSlotUnified(impl)
		}
		group.setDefining(impl)
	}

	retarget()

	nameSigMatch := findMatchingVirtualMethodInSlot(group.defining, current, reverseSearch)
	base := current.Base()

	// Unless current overrides the slot by name/sig, the base hierarchy shapes the group.
	if nameSigMatch == nil && base != nil {
		if err := findBaseUnificationGroup(base, group); err != nil {
			return err
		}
		if group.defining != nil {
			retarget()
		}
	}

	separated := make(methodSet)

	// Members that override elsewhere by name/sig on current leave the group,
	// unless they belong to the original slot or are held by slot unification.
	originalSlot := FindSlotDefiningMethod(original)
	for _, member := range group.members {
		if FindSlotDefiningMethod(member) == originalSlot || group.requiresSlotUnification(member) {
			continue
		}
		match := findMatchingVirtualMethodInSlot(member, current, reverseSearch)
		if match != nil && match != member {
			separated.add(member)
		}
	}
	for _, member := range group.Members() {
		if !separated.has(member) {
			continue
		}
		if err := group.remove(member); err != nil {
			return err
		}
	}

	// Override records on current may separate members or pull in new ones.
	for _, rec := range current.MethodImpls() {
		if rec.Decl.Owner().IsInterface() {
			continue
		}
		declSlot := FindSlotDefiningMethod(rec.Decl)
		implSlot := FindSlotDefiningMethod(rec.Body)

		if group.isMember(declSlot) && !group.Contains(implSlot) {
			if err := group.remove(declSlot); err != nil {
				return err
			}
			separated.add(declSlot)

			if group.requiresSlotUnification(declSlot) || requiresSlotUnification(implSlot) {
				if implSlot.Signature().CovariantTo(group.defining.Signature()) {
					group.addSlotUnified(declSlot)
					group.addSlotUnified(implSlot)
					group.setDefining(implSlot)
				}
			}
			continue
		}

		if group.Contains(declSlot) {
			continue
		}

		switch {
		case group.Contains(implSlot):
			// The decl joins the group together with its own base group.
			// Earlier separations on this type still apply, so record order matters.
			declGroup := newUnificationGroup(declSlot)
			if base != nil {
				if err := findBaseUnificationGroup(base, declGroup); err != nil {
					return err
				}
			}
			for _, m := range declGroup.slotUnified {
				group.addSlotUnified(m)
			}
			if !separated.has(declGroup.defining) {
				group.add(declGroup.defining)
			}
			for _, m := range declGroup.members {
				if !separated.has(m) {
					group.add(m)
				}
			}

			if group.requiresSlotUnification(declSlot) {
				group.addSlotUnified(implSlot)
			} else if implSlot == group.defining && requiresSlotUnification(implSlot) {
				group.addSlotUnified(declSlot)
				group.addSlotUnified(implSlot)
			}

		case group.requiresSlotUnification(declSlot):
			if implSlot.Signature().CovariantTo(group.defining.Signature()) {
				group.addSlotUnified(implSlot)
				group.setDefining(implSlot)
			}
		}
	}
	return nil
}

// findImplFromDecl returns the slot-defining body of the override record on
// t that retargets decl's slot, or nil.
func findImplFromDecl(t *typesys.Type, decl *typesys.Method) *typesys.Method {
	if decl.Owner().IsInterface() {
		return findInterfaceImplFromDecl(t, decl)
	}
	for _, rec := range t.MethodImplsByDeclName(decl.Name()) {
		if rec.Decl.Owner().IsInterface() {
			continue
		}
		if FindSlotDefiningMethod(rec.Decl) == decl {
			return FindSlotDefiningMethod(rec.Body)
		}
	}
	return nil
}

// findInterfaceImplFromDecl finds the override record for an interface
// method. Generic folding (C<T, U> : I<T>, I<U> instantiated as C<X, X>) can
// produce several records for one decl; the interface declared first on the
// definition wins.
func findInterfaceImplFromDecl(t *typesys.Type, decl *typesys.Method) *typesys.Method {
	records := t.MethodImplsByDeclName(decl.Name())
	var hits []int
	for i, rec := range records {
		if rec.Decl == decl {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	best := hits[0]
	if len(hits) > 1 {
		def := t.Definition()
		interfaces := def.RuntimeInterfaces()
		defRecords := def.MethodImplsByDeclName(decl.Name())
		bestPos := math.MaxInt
		for _, i := range hits {
			if i >= len(defRecords) {
				continue
			}
			pos := typeIndex(interfaces, defRecords[i].Decl.Owner())
			if pos >= 0 && pos < bestPos {
				bestPos = pos
				best = i
			}
		}
	}
	return FindSlotDefiningMethod(records[best].Body)
}

func typeIndex(list []*typesys.Type, t *typesys.Type) int {
	for i, x := range list {
		if x == t {
			return i
		}
	}
	return -1
}

// findNameSigOverrideForVirtualMethod walks from t to its ancestors looking
// for a name/sig override that stays in target's slot. Override records are
// assumed to be folded into target already.
func findNameSigOverrideForVirtualMethod(target *typesys.Method, t *typesys.Type) *typesys.Method {
	for cur := t; cur != nil; cur = cur.Base() {
		if m := findMatchingVirtualMethodInSlot(target, cur, reverseSearch); m != nil {
			return m
		}
	}
	return nil
}
