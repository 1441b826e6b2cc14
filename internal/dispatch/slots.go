package dispatch

import (
	"iter"

	"slotwise/internal/typesys"
)

// EnumerateAllVirtualSlots yields every distinct slot-defining method of
// class t, walking t and then its ancestors. Each iteration starts with a
// fresh dedup set, so the sequence can be ranged over again. Interfaces
// yield nothing.
func EnumerateAllVirtualSlots(t *typesys.Type) iter.Seq[*typesys.Method] {
	return func(yield func(*typesys.Method) bool) {
		if t == nil || t.IsInterface() {
			return
		}
		seen := make(methodSet)
		for cur := t; cur != nil; cur = cur.Base() {
			for _, m := range cur.VirtualMethods() {
				slot := FindSlotDefiningMethod(m)
				if seen.has(slot) {
					continue
				}
				seen.add(slot)
				if !yield(slot) {
					return
				}
			}
		}
	}
}
