package manifest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTypeRef(t *testing.T) {
	cases := []struct {
		in   string
		want TypeRef
	}{
		{"A", TypeRef{Name: "A"}},
		{" Map < K , List<V> > ", TypeRef{Name: "Map", Args: []TypeRef{{Name: "K"}, {Name: "List", Args: []TypeRef{{Name: "V"}}}}}},
		{"_x9", TypeRef{Name: "_x9"}},
	}
	for _, tc := range cases {
		got, err := ParseTypeRef(tc.in)
		if err != nil {
			t.Fatalf("ParseTypeRef(%q): %v", tc.in, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("ParseTypeRef(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
	if got, _ := ParseTypeRef("Map<K,List<V>>"); got.String() != "Map<K, List<V>>" {
		t.Fatalf("String() = %q", got.String())
	}
}

func TestParseTypeRefNormalizesNFC(t *testing.T) {
	decomposed := "Cafe\u0301"
	got, err := ParseTypeRef(decomposed)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Caf\u00e9" {
		t.Fatalf("name %q is not NFC", got.Name)
	}
}

func TestParseMethodRef(t *testing.T) {
	cases := []struct {
		in   string
		want MethodRef
		str  string
	}{
		{"A.M", MethodRef{Owner: TypeRef{Name: "A"}, Name: "M"}, "A.M"},
		{"I<int>.M<string>", MethodRef{
			Owner: TypeRef{Name: "I", Args: []TypeRef{{Name: "int"}}},
			Name:  "M",
			Inst:  []TypeRef{{Name: "string"}},
		}, "I<int>.M<string>"},
		{"A.M()", MethodRef{Owner: TypeRef{Name: "A"}, Name: "M", HasSig: true}, "A.M()"},
		{"A.M(int,B<T>)#2", MethodRef{
			Owner:   TypeRef{Name: "A"},
			Name:    "M",
			Params:  []TypeRef{{Name: "int"}, {Name: "B", Args: []TypeRef{{Name: "T"}}}},
			HasSig:  true,
			Ordinal: 2,
		}, "A.M(int, B<T>)#2"},
	}
	for _, tc := range cases {
		got, err := ParseMethodRef(tc.in)
		if err != nil {
			t.Fatalf("ParseMethodRef(%q): %v", tc.in, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("ParseMethodRef(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
		if got.String() != tc.str {
			t.Fatalf("String() = %q, want %q", got.String(), tc.str)
		}
	}
}

func TestParseRefErrors(t *testing.T) {
	typeInputs := []string{"", "A<", "A<>", "A B", "1A", "A,"}
	for _, in := range typeInputs {
		if _, err := ParseTypeRef(in); !errors.Is(err, ErrSyntax) {
			t.Fatalf("ParseTypeRef(%q) err = %v, want ErrSyntax", in, err)
		}
	}
	methodInputs := []string{"A", "A.", "A.M#0", "A.M#", "A.M#18446744073709551615", "A.M<>", "A.M(int", "A.M x"}
	for _, in := range methodInputs {
		_, err := ParseMethodRef(in)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("ParseMethodRef(%q) err = %v, want *SyntaxError", in, err)
		}
	}
}
