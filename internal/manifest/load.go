package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"slotwise/internal/diag"
	"slotwise/internal/project"
	"slotwise/internal/typesys"
)

// Manifest is a validated hierarchy with its queries.
type Manifest struct {
	Path     string
	Format   Format
	Digest   project.Digest
	File     *File
	Universe *typesys.Universe
	// CacheHit reports that File came from the disk cache.
	CacheHit bool
}

// Options configures Load.
type Options struct {
	Cache          *DiskCache
	MaxDiagnostics int
}

const defaultMaxDiagnostics = 100

// Load reads, decodes and builds the manifest at path. Validation problems
// are collected in the returned bag; when it holds errors Load also returns
// an error wrapping ErrInvalidManifest.
func Load(path string, opts Options) (*Manifest, *diag.Bag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return LoadBytes(path, data, FormatOf(path), opts)
}

// LoadBytes is Load over in-memory content; path is used for diagnostics.
func LoadBytes(path string, data []byte, format Format, opts Options) (*Manifest, *diag.Bag, error) {
	limit := opts.MaxDiagnostics
	if limit <= 0 {
		limit = defaultMaxDiagnostics
	}
	bag := diag.NewBag(limit)
	r := diag.NewBagReporter(bag)
	file := diag.Subject{File: path}

	if format == FormatUnknown {
		diag.ReportError(r, diag.ManUnknownFormat, file, "expected a .toml, .yaml or .yml manifest").Emit()
		return nil, bag, fmt.Errorf("%w: %w: %s", ErrInvalidManifest, ErrUnknownFormat, path)
	}

	m := &Manifest{Path: path, Format: format, Digest: project.Sum(data)}
	f, unknown, hit, err := opts.Cache.Get(m.Digest, format)
	if err != nil || !hit {
		f, unknown, err = Decode(data, format)
		if err != nil {
			diag.ReportError(r, diag.ManDecodeFailed, file, err.Error()).Emit()
			return nil, bag, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, path, err)
		}
		// a failed write only costs the next run a decode
		_ = opts.Cache.Put(m.Digest, format, f, unknown)
	}
	m.File, m.CacheHit = f, hit
	for _, key := range unknown {
		diag.ReportWarning(r, diag.ManUnknownKey, file.Child(key), "unknown manifest key").Emit()
	}

	m.Universe = Build(f, path, r)
	if bag.HasErrors() {
		return nil, bag, fmt.Errorf("%w: %s", ErrInvalidManifest, path)
	}
	return m, bag, nil
}

// Type resolves a type reference against the manifest's types. A bare
// generic name denotes the definition.
func (m *Manifest) Type(ref string) (*typesys.Type, error) {
	tr, err := ParseTypeRef(ref)
	if err != nil {
		return nil, err
	}
	return scope{u: m.Universe}.resolveType(tr, true)
}

// Method resolves a method reference against the manifest's types.
func (m *Manifest) Method(ref string) (*typesys.Method, error) {
	mr, err := ParseMethodRef(ref)
	if err != nil {
		return nil, err
	}
	return scope{u: m.Universe}.resolveMethod(mr)
}

// Build declares f's types in a fresh universe and freezes it. Problems are
// reported to r; declarations that fail are skipped so later ones can
// still be checked.
func Build(f *File, path string, r diag.Reporter) *typesys.Universe {
	b := &builder{
		u:     typesys.NewUniverse(),
		r:     r,
		file:  diag.Subject{File: path},
		decls: f.Types,
		types: make([]*typesys.Type, len(f.Types)),
	}
	b.defineTypes()
	b.linkHierarchy()
	b.declareMethods()
	b.recordOverrides()
	b.u.Freeze()
	return b.u
}

type builder struct {
	u     *typesys.Universe
	r     diag.Reporter
	file  diag.Subject
	decls []TypeDecl
	types []*typesys.Type // nil where the definition failed
}

func (b *builder) typeSubject(i int) diag.Subject {
	return b.file.Child(fmt.Sprintf("type[%d]", i))
}

func (b *builder) refError(subject diag.Subject, what string, err error) {
	code := RefCode(err)
	if code == diag.UnknownCode {
		code = diag.ManBadMethod
	}
	diag.ReportError(b.r, code, subject, what+": "+err.Error()).Emit()
}

func (b *builder) defineTypes() {
	first := make(map[string]int, len(b.decls))
	for i := range b.decls {
		d := &b.decls[i]
		subj := b.typeSubject(i)
		name := NormalizeIdent(d.Name)
		if ref, err := ParseTypeRef(name); err != nil || len(ref.Args) > 0 {
			diag.ReportError(b.r, diag.RefSyntax, subj, fmt.Sprintf("invalid type name %q", d.Name)).Emit()
			continue
		}
		kind, ok := parseKind(d.Kind)
		if !ok {
			diag.ReportError(b.r, diag.ManBadKind, subj, fmt.Sprintf("unknown kind %q (want class or interface)", d.Kind)).Emit()
			continue
		}
		params, ok := b.parseParams(subj, d.Params)
		if !ok {
			continue
		}
		t, err := b.u.DefineType(name, kind, params...)
		if err != nil {
			rb := diag.ReportError(b.r, diag.ManDuplicateType, subj, fmt.Sprintf("duplicate type %q", name))
			if j, seen := first[name]; seen {
				rb.WithNote(b.typeSubject(j), "first defined here")
			} else if errors.Is(err, typesys.ErrDuplicateType) {
				rb.WithNote(diag.Subject{}, name+" is a built-in type")
			}
			rb.Emit()
			continue
		}
		first[name] = i
		b.types[i] = t
	}
}

func parseKind(s string) (typesys.Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "class":
		return typesys.KindClass, true
	case "interface":
		return typesys.KindInterface, true
	}
	return typesys.KindInvalid, false
}

// parseParams reads "T", "out T" or "in T".
func (b *builder) parseParams(subj diag.Subject, raw []string) ([]typesys.GenericParam, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	out := make([]typesys.GenericParam, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for k, p := range raw {
		fields := strings.Fields(p)
		gp := typesys.GenericParam{}
		switch {
		case len(fields) == 1:
			gp.Name = fields[0]
		case len(fields) == 2 && fields[0] == "out":
			gp.Name, gp.Variance = fields[1], typesys.Covariant
		case len(fields) == 2 && fields[0] == "in":
			gp.Name, gp.Variance = fields[1], typesys.Contravariant
		default:
			diag.ReportError(b.r, diag.ManBadGenericParam, subj.Child(fmt.Sprintf("params[%d]", k)),
				fmt.Sprintf("malformed generic parameter %q", p)).Emit()
			return nil, false
		}
		gp.Name = NormalizeIdent(gp.Name)
		if ref, err := ParseTypeRef(gp.Name); err != nil || len(ref.Args) > 0 {
			diag.ReportError(b.r, diag.ManBadGenericParam, subj.Child(fmt.Sprintf("params[%d]", k)),
				fmt.Sprintf("malformed generic parameter %q", p)).Emit()
			return nil, false
		}
		if _, dup := seen[gp.Name]; dup {
			diag.ReportError(b.r, diag.ManBadGenericParam, subj.Child(fmt.Sprintf("params[%d]", k)),
				fmt.Sprintf("duplicate generic parameter %q", gp.Name)).Emit()
			return nil, false
		}
		seen[gp.Name] = struct{}{}
		out = append(out, gp)
	}
	return out, true
}

func (b *builder) linkHierarchy() {
	for i, t := range b.types {
		if t == nil {
			continue
		}
		d := &b.decls[i]
		subj := b.typeSubject(i)
		sc := scope{u: b.u, owner: t}
		if d.Abstract {
			_ = t.SetAbstract(true)
		}
		if strings.TrimSpace(d.Base) != "" {
			b.linkBase(t, sc, subj.Child("base"), d.Base)
		}
		for k, raw := range d.Interfaces {
			isubj := subj.Child(fmt.Sprintf("interfaces[%d]", k))
			iface, err := parseAndResolveType(sc, raw)
			if err != nil {
				b.refError(isubj, "interface", err)
				continue
			}
			if !iface.IsInterface() {
				diag.ReportError(b.r, diag.ManNotInterface, isubj, fmt.Sprintf("%s is a %s, not an interface", iface, iface.Kind())).Emit()
				continue
			}
			if err := t.AddInterface(iface); err != nil {
				diag.ReportError(b.r, diag.ManCyclicHierarchy, isubj, err.Error()).Emit()
			}
		}
	}
}

func (b *builder) linkBase(t *typesys.Type, sc scope, subj diag.Subject, raw string) {
	if t.IsInterface() {
		diag.ReportError(b.r, diag.ManInterfaceWithBase, subj, fmt.Sprintf("interface %s cannot have base %q", t.Name(), raw)).Emit()
		return
	}
	base, err := parseAndResolveType(sc, raw)
	if err != nil {
		b.refError(subj, "base", err)
		return
	}
	if base == b.u.Object() {
		return
	}
	if !base.IsClass() {
		diag.ReportError(b.r, diag.ManBaseNotClass, subj, fmt.Sprintf("base %s is a %s", base, base.Kind())).Emit()
		return
	}
	if err := t.SetBase(base); err != nil {
		code := diag.ManBaseNotClass
		if errors.Is(err, typesys.ErrCycle) {
			code = diag.ManCyclicHierarchy
		}
		diag.ReportError(b.r, code, subj, err.Error()).Emit()
	}
}

func parseAndResolveType(sc scope, raw string) (*typesys.Type, error) {
	ref, err := ParseTypeRef(raw)
	if err != nil {
		return nil, err
	}
	return sc.resolveType(ref, false)
}

var flagNames = map[string]typesys.Flags{
	"virtual":  typesys.FlagVirtual,
	"newslot":  typesys.FlagNewSlot,
	"abstract": typesys.FlagAbstract,
	"static":   typesys.FlagStatic,
	"public":   typesys.FlagPublic,
}

func (b *builder) declareMethods() {
	for i, t := range b.types {
		if t == nil {
			continue
		}
		for k, md := range b.decls[i].Methods {
			b.declareMethod(t, b.typeSubject(i).Child(fmt.Sprintf("method[%d]", k)), md)
		}
	}
}

func (b *builder) declareMethod(t *typesys.Type, subj diag.Subject, md MethodDecl) {
	name := NormalizeIdent(md.Name)
	if name == "" {
		diag.ReportError(b.r, diag.ManBadMethod, subj, "method without a name").Emit()
		return
	}
	spec := typesys.MethodSpec{Name: name, Arity: len(md.Generic)}
	ok := true
	for _, f := range md.Flags {
		flag, known := flagNames[strings.ToLower(strings.TrimSpace(f))]
		if !known {
			diag.ReportError(b.r, diag.ManUnknownFlag, subj, fmt.Sprintf("unknown flag %q", f)).Emit()
			ok = false
			continue
		}
		spec.Flags |= flag
	}
	mparams := make([]string, len(md.Generic))
	for k, g := range md.Generic {
		mparams[k] = NormalizeIdent(g)
	}
	sc := scope{u: b.u, owner: t, mparams: mparams}
	if ret := strings.TrimSpace(md.Returns); ret != "" && ret != "void" {
		rt, err := parseAndResolveType(sc, ret)
		if err != nil {
			b.refError(subj.Child("returns"), "return type", err)
			ok = false
		}
		spec.Return = rt
	}
	for k, p := range md.Params {
		pt, err := parseAndResolveType(sc, p)
		if err != nil {
			b.refError(subj.Child(fmt.Sprintf("params[%d]", k)), "parameter", err)
			ok = false
			continue
		}
		spec.Params = append(spec.Params, pt)
	}
	if !ok {
		return
	}
	if _, err := t.AddMethod(spec); err != nil {
		diag.ReportError(b.r, diag.ManBadMethod, subj, err.Error()).Emit()
	}
}

func (b *builder) recordOverrides() {
	for i, t := range b.types {
		if t == nil {
			continue
		}
		sc := scope{u: b.u, owner: t}
		for k, od := range b.decls[i].Overrides {
			subj := b.typeSubject(i).Child(fmt.Sprintf("override[%d]", k))
			if strings.TrimSpace(od.Decl) == "" || strings.TrimSpace(od.Body) == "" {
				diag.ReportError(b.r, diag.ManBadOverride, subj, "override needs both decl and body").Emit()
				continue
			}
			decl, err := parseAndResolveMethod(sc, od.Decl)
			if err != nil {
				b.refError(subj.Child("decl"), "override decl", err)
				continue
			}
			body, err := parseAndResolveMethod(sc, od.Body)
			if err != nil {
				b.refError(subj.Child("body"), "override body", err)
				continue
			}
			if body.Owner() != t {
				diag.ReportError(b.r, diag.ManOverrideBody, subj.Child("body"),
					fmt.Sprintf("%s is not declared on %s", body, t)).Emit()
				continue
			}
			if err := t.AddMethodImpl(decl, body); err != nil {
				diag.ReportError(b.r, diag.ManBadOverride, subj, err.Error()).Emit()
			}
		}
	}
}

func parseAndResolveMethod(sc scope, raw string) (*typesys.Method, error) {
	ref, err := ParseMethodRef(raw)
	if err != nil {
		return nil, err
	}
	return sc.resolveMethod(ref)
}
