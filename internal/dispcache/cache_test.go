package dispcache_test

import (
	"errors"
	"sync"
	"testing"

	"slotwise/internal/dispatch"
	"slotwise/internal/dispcache"
	"slotwise/internal/typesys"
)

type hierarchy struct {
	u      *typesys.Universe
	a, b   *typesys.Type
	am, bm *typesys.Method
}

func newHierarchy(t *testing.T) *hierarchy {
	t.Helper()
	h := &hierarchy{u: typesys.NewUniverse()}
	var err error
	if h.a, err = h.u.DefineType("A", typesys.KindClass); err != nil {
		t.Fatal(err)
	}
	if h.b, err = h.u.DefineType("B", typesys.KindClass); err != nil {
		t.Fatal(err)
	}
	if err = h.b.SetBase(h.a); err != nil {
		t.Fatal(err)
	}
	if h.am, err = h.a.AddMethod(typesys.MethodSpec{Name: "M", Flags: typesys.FlagVirtual | typesys.FlagNewSlot}); err != nil {
		t.Fatal(err)
	}
	if h.bm, err = h.b.AddMethod(typesys.MethodSpec{Name: "M", Flags: typesys.FlagVirtual}); err != nil {
		t.Fatal(err)
	}
	h.u.Freeze()
	return h
}

func TestCacheHitMiss(t *testing.T) {
	h := newHierarchy(t)
	c := dispcache.New(4)

	r := c.Resolve(dispcache.OpVirtual, h.am, h.b)
	if r.Err != nil || r.Method != h.bm {
		t.Fatalf("first resolve = %+v", r)
	}
	again := c.Resolve(dispcache.OpVirtual, h.am, h.b)
	if again.Method != r.Method {
		t.Fatalf("memoized answer differs: %s vs %s", again.Method, r.Method)
	}
	if st := c.Stats(); st.Hits != 1 || st.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 hit 1 miss", st)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Get(dispcache.Key{Op: dispcache.OpInterface, Method: h.am, Type: h.b}); ok {
		t.Fatal("expected miss for a different op")
	}
}

func TestCacheConcurrentResolve(t *testing.T) {
	h := newHierarchy(t)
	c := dispcache.New(0)

	var wg sync.WaitGroup
	got := make([]*typesys.Method, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = c.Resolve(dispcache.OpVirtual, h.am, h.b).Method
		}(i)
	}
	wg.Wait()
	for i, m := range got {
		if m != h.bm {
			t.Fatalf("goroutine %d resolved %s", i, m)
		}
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestNilCacheResolvesDirectly(t *testing.T) {
	h := newHierarchy(t)
	var c *dispcache.Cache
	if r := c.Resolve(dispcache.OpVirtual, h.am, h.a); r.Method != h.am {
		t.Fatalf("nil cache resolved %s", r.Method)
	}
	if c.Len() != 0 || c.Stats() != (dispcache.Stats{}) {
		t.Fatal("nil cache must report nothing")
	}
}

func TestParseOp(t *testing.T) {
	for _, op := range dispcache.Ops() {
		got, err := dispcache.ParseOp(op.String())
		if err != nil || got != op {
			t.Fatalf("ParseOp(%q) = %v, %v", op.String(), got, err)
		}
	}
	if got, err := dispcache.ParseOp(" Variant-Default "); err != nil || got != dispcache.OpVariantDefault {
		t.Fatalf("ParseOp is not case/space tolerant: %v, %v", got, err)
	}
	if _, err := dispcache.ParseOp("vtable"); !errors.Is(err, dispcache.ErrUnknownOp) {
		t.Fatalf("expected ErrUnknownOp, got %v", err)
	}
	if r := dispcache.Resolve(dispcache.OpInvalid, nil, nil); !errors.Is(r.Err, dispcache.ErrUnknownOp) {
		t.Fatalf("expected ErrUnknownOp, got %v", r.Err)
	}
}

func TestResultOutcome(t *testing.T) {
	h := newHierarchy(t)
	cases := []struct {
		r    dispcache.Result
		want string
	}{
		{dispcache.Result{Method: h.bm}, "B.M"},
		{dispcache.Result{}, "none"},
		{dispcache.Result{Default: dispatch.Diamond}, "diamond"},
		{dispcache.Result{Default: dispatch.Reabstraction}, "reabstraction"},
		{dispcache.Result{Call: dispatch.CallTarget{Kind: dispatch.CallAmbiguous}}, "diamond"},
		{dispcache.Result{Err: errors.New("boom")}, "error"},
	}
	for _, tc := range cases {
		if got := tc.r.Outcome(); got != tc.want {
			t.Fatalf("Outcome() = %q, want %q", got, tc.want)
		}
	}
}
