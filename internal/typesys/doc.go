// Package typesys is the descriptor layer consumed by the dispatch resolver.
//
// A Universe owns every type and method descriptor. Definitions are declared
// through the builder methods (DefineType, SetBase, AddInterface, AddMethod,
// AddMethodImpl) and the universe is then frozen. Generic instantiations are
// interned, so descriptors can be compared by pointer identity:
//
//	u := typesys.NewUniverse()
//	list, _ := u.DefineType("List", typesys.KindInterface, typesys.GenericParam{Name: "T", Variance: typesys.Covariant})
//	ints, _ := u.Instantiate(list, u.Int())
//	again, _ := u.Instantiate(list, u.Int())
//	// ints == again
//
// Members of instantiated types are materialized lazily, exactly once, so a
// frozen universe can be queried from any number of goroutines.
package typesys
