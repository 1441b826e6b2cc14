package query

import (
	"fmt"
	"strings"

	"slotwise/internal/diag"
	"slotwise/internal/dispcache"
	"slotwise/internal/manifest"
	"slotwise/internal/typesys"
)

// Outcome keywords accepted in expect besides a method reference.
const (
	ExpectNone          = "none"
	ExpectDiamond       = "diamond"
	ExpectReabstraction = "reabstraction"
	ExpectError         = "error"
)

// Query is a validated resolution request.
type Query struct {
	Index  int
	Name   string
	Op     dispcache.Op
	Method *typesys.Method
	Type   *typesys.Type
	Expect string // canonical outcome; empty when unchecked
	// ExpectMethod is set when Expect names a method; it is compared by identity.
	ExpectMethod *typesys.Method
	Subject      diag.Subject
}

// Checked reports whether q carries an expectation.
func (q Query) Checked() bool { return q.Expect != "" }

func (q Query) String() string {
	return fmt.Sprintf("%s %s on %s", q.Op, q.Method, q.Type)
}

// Compile resolves the queries of m. Invalid entries are reported to r and
// left out of the result.
func Compile(m *manifest.Manifest, r diag.Reporter) []Query {
	if m == nil || m.File == nil {
		return nil
	}
	file := diag.Subject{File: m.Path}
	out := make([]Query, 0, len(m.File.Queries))
	names := make(map[string]int, len(m.File.Queries))
	for i, qd := range m.File.Queries {
		subj := file.Child(fmt.Sprintf("query[%d]", i))
		q, ok := compileOne(m, i, qd, subj, r)
		if !ok {
			continue
		}
		if j, dup := names[q.Name]; dup {
			diag.ReportError(r, diag.QryDuplicateName, subj, fmt.Sprintf("duplicate query name %q", q.Name)).
				WithNote(file.Child(fmt.Sprintf("query[%d]", j)), "first used here").
				Emit()
			continue
		}
		names[q.Name] = i
		out = append(out, q)
	}
	return out
}

func compileOne(m *manifest.Manifest, i int, qd manifest.QueryDecl, subj diag.Subject, r diag.Reporter) (Query, bool) {
	q := Query{Index: i, Name: strings.TrimSpace(qd.Name), Subject: subj}
	if q.Name == "" {
		q.Name = fmt.Sprintf("query[%d]", i)
	}
	ok := true
	for _, f := range []struct{ key, val string }{{"op", qd.Op}, {"method", qd.Method}, {"type", qd.Type}} {
		if strings.TrimSpace(f.val) == "" {
			diag.ReportError(r, diag.QryMissingField, subj.Child(f.key), fmt.Sprintf("query %q has no %s", q.Name, f.key)).Emit()
			ok = false
		}
	}
	if !ok {
		return q, false
	}

	op, err := dispcache.ParseOp(qd.Op)
	if err != nil {
		diag.ReportError(r, diag.QryUnknownOp, subj.Child("op"), err.Error()).Emit()
		ok = false
	}
	q.Op = op
	if q.Method, err = m.Method(qd.Method); err != nil {
		diag.ReportError(r, refCode(err), subj.Child("method"), err.Error()).Emit()
		ok = false
	}
	if q.Type, err = m.Type(qd.Type); err != nil {
		diag.ReportError(r, refCode(err), subj.Child("type"), err.Error()).Emit()
		ok = false
	}
	if !ok {
		return q, false
	}
	if q.Expect, q.ExpectMethod, err = canonicalExpect(m, op, qd.Expect); err != nil {
		diag.ReportError(r, diag.QryBadExpect, subj.Child("expect"), err.Error()).Emit()
		return q, false
	}
	return q, true
}

func refCode(err error) diag.Code {
	if code := manifest.RefCode(err); code != diag.UnknownCode {
		return code
	}
	return diag.RefSyntax
}

// canonicalExpect normalizes an expectation to the form Result.Outcome
// produces.
func canonicalExpect(m *manifest.Manifest, op dispcache.Op, raw string) (string, *typesys.Method, error) {
	expect := strings.TrimSpace(raw)
	switch kw := strings.ToLower(expect); kw {
	case "":
		return "", nil, nil
	case ExpectNone, ExpectError:
		return kw, nil, nil
	case ExpectDiamond, ExpectReabstraction:
		switch op {
		case dispcache.OpDefault, dispcache.OpVariantDefault, dispcache.OpCall:
			return kw, nil, nil
		}
		return "", nil, fmt.Errorf("%q is not a possible outcome of a %s query", expect, op)
	}
	want, err := m.Method(expect)
	if err != nil {
		return "", nil, fmt.Errorf("expect %q: %w", expect, err)
	}
	return want.String(), want, nil
}

// Matches reports whether r satisfies q's expectation. Unchecked queries
// always match.
func (q Query) Matches(r dispcache.Result) bool {
	switch {
	case !q.Checked():
		return true
	case q.ExpectMethod != nil:
		return r.Err == nil && r.Method == q.ExpectMethod
	}
	return r.Outcome() == q.Expect
}
