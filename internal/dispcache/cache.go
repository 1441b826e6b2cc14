package dispcache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"slotwise/internal/dispatch"
	"slotwise/internal/typesys"
)

// Key identifies one resolution. Descriptors compare by identity.
type Key struct {
	Op     Op
	Method *typesys.Method
	Type   *typesys.Type
}

// Result is the answer of one resolver entry point. Method is the resolved
// body (or slot for the interface ops); Default and Call are filled by the
// default and call ops only.
type Result struct {
	Method  *typesys.Method
	Default dispatch.DefaultResolution
	Call    dispatch.CallTarget
	Err     error
}

// Outcome renders r the way manifests spell expectations: a method
// reference, "none", "diamond" or "reabstraction".
func (r Result) Outcome() string {
	switch {
	case r.Err != nil:
		return "error"
	case r.Method != nil:
		return r.Method.String()
	case r.Default == dispatch.Diamond, r.Call.Kind == dispatch.CallAmbiguous:
		return "diamond"
	case r.Default == dispatch.Reabstraction, r.Call.Kind == dispatch.CallReabstracted:
		return "reabstraction"
	}
	return "none"
}

// Resolve runs op without memoization.
func Resolve(op Op, m *typesys.Method, t *typesys.Type) Result {
	switch op {
	case OpVirtual:
		impl, err := dispatch.ResolveVirtual(m, t)
		return Result{Method: impl, Err: err}
	case OpInterface:
		return Result{Method: dispatch.ResolveInterfaceToVirtual(m, t)}
	case OpVariantInterface:
		return Result{Method: dispatch.ResolveVariantInterfaceToVirtual(m, t)}
	case OpDefault:
		res, impl := dispatch.ResolveInterfaceToDefaultImplementation(m, t)
		return Result{Method: impl, Default: res}
	case OpVariantDefault:
		res, impl := dispatch.ResolveVariantInterfaceToDefaultImplementation(m, t)
		return Result{Method: impl, Default: res}
	case OpStatic:
		return Result{Method: dispatch.ResolveInterfaceToStaticVirtual(m, t)}
	case OpVariantStatic:
		return Result{Method: dispatch.ResolveVariantInterfaceToStaticVirtual(m, t)}
	case OpCall:
		target, err := dispatch.ResolveInterfaceCall(m, t)
		return Result{Method: target.Method, Call: target, Err: err}
	}
	return Result{Err: fmt.Errorf("%w: %s", ErrUnknownOp, op)}
}

// Stats counts cache lookups.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Cache memoizes resolver answers per (op, method, type). The resolver core
// stays pure; callers that repeat queries share one Cache. Safe for
// concurrent use. A nil *Cache resolves without memoizing.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]Result

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a Cache with the given capacity hint.
func New(capHint int) *Cache {
	return &Cache{entries: make(map[Key]Result, capHint)}
}

// Resolve returns the memoized answer for (op, m, t), computing it on a miss.
// Concurrent misses on the same key may compute twice; the first stored
// answer wins and both are identical.
func (c *Cache) Resolve(op Op, m *typesys.Method, t *typesys.Type) Result {
	if c == nil {
		return Resolve(op, m, t)
	}
	key := Key{Op: op, Method: m, Type: t}
	if r, ok := c.Get(key); ok {
		return r
	}
	c.misses.Add(1)
	r := Resolve(op, m, t)

	c.mu.Lock()
	if prev, ok := c.entries[key]; ok {
		r = prev
	} else {
		c.entries[key] = r
	}
	c.mu.Unlock()
	return r
}

// Get retrieves a memoized answer.
func (c *Cache) Get(key Key) (Result, bool) {
	if c == nil {
		return Result{}, false
	}
	c.mu.RLock()
	r, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	}
	return r, ok
}

// Len reports the number of memoized answers.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns lookup counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
