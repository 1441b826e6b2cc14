package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slotwise/internal/diag"
	"slotwise/internal/dispatch"
	"slotwise/internal/typesys"
)

func mustLoad(t *testing.T, path string, opts Options) *Manifest {
	t.Helper()
	m, bag, err := Load(path, opts)
	if err != nil {
		var buf []string
		if bag != nil {
			for _, d := range bag.Items() {
				buf = append(buf, d.Code.ID()+" "+d.Subject.String()+" "+d.Message)
			}
		}
		t.Fatalf("Load(%s): %v\n%v", path, err, buf)
	}
	return m
}

func TestLoadBoxes(t *testing.T) {
	for _, name := range []string{"boxes.toml", "boxes.yaml"} {
		t.Run(name, func(t *testing.T) {
			m := mustLoad(t, filepath.Join("testdata", name), Options{})
			if !m.Universe.Frozen() {
				t.Fatal("universe must be frozen after Load")
			}
			var names []string
			for _, d := range m.Universe.Definitions() {
				names = append(names, d.String())
			}
			if diff := cmp.Diff([]string{"Base", "Derived", "IBox<T>", "Box<T>"}, names); diff != "" {
				t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
			}
			if len(m.File.Queries) != 1 || m.File.Queries[0].Expect != "Box<Derived>.Get" {
				t.Fatalf("queries = %+v", m.File.Queries)
			}

			derived, err := m.Type("Derived")
			if err != nil {
				t.Fatal(err)
			}
			base, _ := m.Type("Base")
			if derived.Base() != base {
				t.Fatalf("Derived base = %s", derived.Base())
			}
			ibox, _ := m.Type("IBox")
			if ibox.Params()[0].Variance != typesys.Covariant {
				t.Fatalf("IBox<T> must be covariant")
			}
		})
	}
}

func TestManifestMethodRefs(t *testing.T) {
	m := mustLoad(t, filepath.Join("testdata", "boxes.toml"), Options{})

	good := []struct {
		ref  string
		want string
		arg  int // parameter count of the resolved method
	}{
		{"Box.Put(T)", "Box<T>.Put", 1},
		{"Box<int>.Put(int, int)", "Box<int>.Put", 2},
		{"Box.Put#2", "Box<T>.Put", 2},
		{"Box.Map<string>", "Box<T>.Map<string>", 1},
		{"Box<int>.Map<Derived>", "Box<int>.Map<Derived>", 1},
		{"Box.Map(X)", "Box<T>.Map", 1},
	}
	for _, tc := range good {
		got, err := m.Method(tc.ref)
		if err != nil {
			t.Fatalf("Method(%q): %v", tc.ref, err)
		}
		if got.String() != tc.want || len(got.Signature().Params) != tc.arg {
			t.Fatalf("Method(%q) = %s%s", tc.ref, got, got.Signature())
		}
	}

	bad := []struct {
		ref  string
		code diag.Code
	}{
		{"Box.Put", diag.RefAmbiguousMethod},
		{"Box.Nope", diag.RefUnknownMethod},
		{"Box.Put#3", diag.RefUnknownMethod},
		{"Nope.Get", diag.RefUnknownType},
		{"Box<int, int>.Get", diag.RefArity},
		{"Box.Get<int>", diag.RefMethodArity},
		{"int.Get", diag.RefUnknownMethod},
		{"Box.", diag.RefSyntax},
	}
	for _, tc := range bad {
		_, err := m.Method(tc.ref)
		if err == nil {
			t.Fatalf("Method(%q) succeeded", tc.ref)
		}
		if got := RefCode(err); got != tc.code {
			t.Fatalf("Method(%q) code = %s, want %s (%v)", tc.ref, got.ID(), tc.code.ID(), err)
		}
	}
}

func TestLoadedHierarchyDispatches(t *testing.T) {
	m := mustLoad(t, filepath.Join("testdata", "boxes.toml"), Options{})
	decl, err := m.Method("IBox<Derived>.Get")
	if err != nil {
		t.Fatal(err)
	}
	boxDerived, err := m.Type("Box<Derived>")
	if err != nil {
		t.Fatal(err)
	}
	want, err := m.Method("Box<Derived>.Get")
	if err != nil {
		t.Fatal(err)
	}
	if got := dispatch.ResolveInterfaceToVirtual(decl, boxDerived); got != want {
		t.Fatalf("ResolveInterfaceToVirtual = %s, want %s", got, want)
	}
	covariant, _ := m.Method("IBox<Base>.Get")
	if got := dispatch.ResolveVariantInterfaceToVirtual(covariant, boxDerived); got != want {
		t.Fatalf("ResolveVariantInterfaceToVirtual = %s, want %s", got, want)
	}
}

func TestBuildDiagnostics(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"duplicate type", `
[[type]]
name = "A"
[[type]]
name = "A"`, diag.ManDuplicateType},
		{"builtin name", `
[[type]]
name = "int"`, diag.ManDuplicateType},
		{"bad kind", `
[[type]]
name = "A"
kind = "struct"`, diag.ManBadKind},
		{"bad type name", `
[[type]]
name = "A<B>"`, diag.RefSyntax},
		{"bad generic param", `
[[type]]
name = "A"
params = ["inout T"]`, diag.ManBadGenericParam},
		{"duplicate generic param", `
[[type]]
name = "A"
params = ["T", "out T"]`, diag.ManBadGenericParam},
		{"unknown base", `
[[type]]
name = "A"
base = "Nope"`, diag.RefUnknownType},
		{"interface base", `
[[type]]
name = "I"
kind = "interface"
[[type]]
name = "A"
base = "I"`, diag.ManBaseNotClass},
		{"interface with base", `
[[type]]
name = "A"
[[type]]
name = "I"
kind = "interface"
base = "A"`, diag.ManInterfaceWithBase},
		{"cyclic base", `
[[type]]
name = "A"
base = "B"
[[type]]
name = "B"
base = "A"`, diag.ManCyclicHierarchy},
		{"class as interface", `
[[type]]
name = "A"
[[type]]
name = "B"
interfaces = ["A"]`, diag.ManNotInterface},
		{"generic arity", `
[[type]]
name = "G"
params = ["T"]
[[type]]
name = "A"
base = "G"`, diag.RefArity},
		{"bad reference", `
[[type]]
name = "A"
  [[type.method]]
  name = "M"
  params = ["List<"]`, diag.RefSyntax},
		{"unknown flag", `
[[type]]
name = "A"
  [[type.method]]
  name = "M"
  flags = ["sealed"]`, diag.ManUnknownFlag},
		{"method without name", `
[[type]]
name = "A"
  [[type.method]]
  flags = ["virtual"]`, diag.ManBadMethod},
		{"override body elsewhere", `
[[type]]
name = "A"
  [[type.method]]
  name = "M"
  flags = ["virtual", "newslot"]
[[type]]
name = "B"
base = "A"
  [[type.override]]
  decl = "A.M"
  body = "A.M"`, diag.ManOverrideBody},
		{"override unknown method", `
[[type]]
name = "A"
  [[type.override]]
  decl = "A.M"
  body = "A.M"`, diag.RefUnknownMethod},
		{"override ambiguous", `
[[type]]
name = "A"
  [[type.method]]
  name = "M"
  [[type.method]]
  name = "M"
  params = ["int"]
  [[type.override]]
  decl = "A.M"
  body = "A.M(int)"`, diag.RefAmbiguousMethod},
		{"override missing body", `
[[type]]
name = "A"
  [[type.override]]
  decl = "A.M"`, diag.ManBadOverride},
		{"decode failure", `[[type`, diag.ManDecodeFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, bag, err := LoadBytes("case.toml", []byte(tc.src), FormatTOML, Options{})
			if !errors.Is(err, ErrInvalidManifest) || m != nil {
				t.Fatalf("expected ErrInvalidManifest, got %v", err)
			}
			var codes []string
			found := false
			for _, d := range bag.Items() {
				codes = append(codes, d.Code.ID())
				if d.Code == tc.code && d.Severity == diag.SevError {
					found = true
				}
			}
			if !found {
				t.Fatalf("want %s among %v", tc.code.ID(), codes)
			}
		})
	}
}

func TestUnknownKeysWarn(t *testing.T) {
	src := `
[[type]]
name = "A"
colour = "blue"`
	m, bag, err := LoadBytes("warn.toml", []byte(src), FormatTOML, Options{})
	if err != nil || m == nil {
		t.Fatalf("unknown keys must not fail the load: %v", err)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.ManUnknownKey || bag.HasErrors() {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
}

func TestUnknownFormat(t *testing.T) {
	_, bag, err := LoadBytes("hier.json", []byte(`{}`), FormatOf("hier.json"), Options{})
	if !errors.Is(err, ErrUnknownFormat) || !errors.Is(err, ErrInvalidManifest) {
		t.Fatalf("err = %v", err)
	}
	if bag.Items()[0].Code != diag.ManUnknownFormat {
		t.Fatalf("code = %s", bag.Items()[0].Code.ID())
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c, err := OpenDiskCache(t.TempDir(), "slotwise")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join("testdata", "boxes.toml"))
	if err != nil {
		t.Fatal(err)
	}
	first, _, err := LoadBytes("boxes.toml", data, FormatTOML, Options{Cache: c})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Fatal("cold cache reported a hit")
	}
	second, _, err := LoadBytes("boxes.toml", data, FormatTOML, Options{Cache: c})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("warm cache reported a miss")
	}
	if diff := cmp.Diff(first.File, second.File); diff != "" {
		t.Fatalf("cached manifest differs (-cold +warm):\n%s", diff)
	}
	if _, _, hit, _ := c.Get(first.Digest, FormatYAML); hit {
		t.Fatal("entry must not be served for another format")
	}

	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, _, hit, err := c.Get(first.Digest, FormatTOML); hit || err != nil {
		t.Fatalf("after DropAll: hit=%v err=%v", hit, err)
	}
}
