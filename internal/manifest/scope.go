package manifest

import (
	"fmt"

	"slotwise/internal/typesys"
)

// scope resolves references against a universe. Inside a type declaration
// the owner's generic parameters are visible; inside a method declaration
// its generic parameters are too.
type scope struct {
	u       *typesys.Universe
	owner   *typesys.Type
	mparams []string
}

func (s scope) lookupParam(name string) *typesys.Type {
	for i, n := range s.mparams {
		if n == name {
			return s.u.MethodVar(i)
		}
	}
	if s.owner != nil {
		for i, p := range s.owner.Params() {
			if p.Name == name {
				return s.owner.Param(i)
			}
		}
	}
	return nil
}

// resolveType resolves ref. With allowOpen a bare generic name denotes the
// definition itself.
func (s scope) resolveType(ref TypeRef, allowOpen bool) (*typesys.Type, error) {
	if len(ref.Args) == 0 {
		if v := s.lookupParam(ref.Name); v != nil {
			return v, nil
		}
	}
	def, ok := s.u.Lookup(ref.Name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, ref.Name)
	}
	if len(ref.Args) == 0 {
		if n := len(def.Params()); n > 0 && !allowOpen {
			return nil, fmt.Errorf("%w: %s expects %d argument(s), got 0", typesys.ErrArity, ref.Name, n)
		}
		return def, nil
	}
	args := make([]*typesys.Type, len(ref.Args))
	for i, a := range ref.Args {
		t, err := s.resolveType(a, false)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	t, err := s.u.Instantiate(def, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return t, nil
}

func (s scope) resolveTypes(refs []TypeRef) ([]*typesys.Type, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]*typesys.Type, len(refs))
	for i, r := range refs {
		t, err := s.resolveType(r, false)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// resolveMethod resolves ref to a method declared on its owner. Candidates
// are filtered by parameter list, then picked by ordinal; the method
// instantiation, if any, is applied last.
func (s scope) resolveMethod(ref MethodRef) (*typesys.Method, error) {
	owner, err := s.resolveType(ref.Owner, true)
	if err != nil {
		return nil, err
	}
	if !owner.IsClass() && !owner.IsInterface() {
		return nil, fmt.Errorf("%w: %s has no methods", ErrUnknownMethod, owner)
	}
	cands := owner.MethodsByName(ref.Name)
	if ref.HasSig {
		kept := cands[:0:0]
		for _, m := range cands {
			if paramsMatch(ref.Params, m.Signature().Params) {
				kept = append(kept, m)
			}
		}
		cands = kept
	}
	if ref.Ordinal > 0 {
		if ref.Ordinal > len(cands) {
			return nil, fmt.Errorf("%w: %s (only %d candidate(s))", ErrUnknownMethod, ref, len(cands))
		}
		cands = cands[ref.Ordinal-1 : ref.Ordinal]
	}
	switch len(cands) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, ref)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s matches %d declarations", ErrAmbiguousMethod, ref, len(cands))
	}
	m := cands[0]
	if len(ref.Inst) == 0 {
		return m, nil
	}
	args, err := s.resolveTypes(ref.Inst)
	if err != nil {
		return nil, err
	}
	inst, err := m.Instantiate(args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMethodArity, ref, err)
	}
	return inst, nil
}

// paramsMatch compares a written parameter list with a declared one
// structurally. Any bare name matches a method generic parameter.
func paramsMatch(refs []TypeRef, params []*typesys.Type) bool {
	if len(refs) != len(params) {
		return false
	}
	for i := range refs {
		if !paramMatches(refs[i], params[i]) {
			return false
		}
	}
	return true
}

func paramMatches(ref TypeRef, p *typesys.Type) bool {
	if p.Kind() == typesys.KindMethodVar {
		return len(ref.Args) == 0
	}
	args := p.Args()
	if len(args) == 0 && len(p.Params()) > 0 {
		// open instantiation, i.e. the definition over its own parameters
		args = make([]*typesys.Type, len(p.Params()))
		for i := range args {
			args[i] = p.Param(i)
		}
	}
	if ref.Name != p.Name() || len(ref.Args) != len(args) {
		return false
	}
	for i, a := range args {
		if !paramMatches(ref.Args[i], a) {
			return false
		}
	}
	return true
}
