package manifest

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// TypeRef is a parsed type reference: Name or Name<Arg, ...>.
type TypeRef struct {
	Name string
	Args []TypeRef
}

func (r TypeRef) String() string {
	if len(r.Args) == 0 {
		return r.Name
	}
	var sb strings.Builder
	sb.WriteString(r.Name)
	sb.WriteByte('<')
	writeRefList(&sb, r.Args)
	sb.WriteByte('>')
	return sb.String()
}

// MethodRef is a parsed method reference:
//
//	Owner.Name[<Inst, ...>][(Param, ...)][#n]
type MethodRef struct {
	Owner   TypeRef
	Name    string
	Inst    []TypeRef
	Params  []TypeRef
	HasSig  bool // parameter list present, possibly empty
	Ordinal int  // 1-based position among same-named candidates; 0 if unset
}

func (r MethodRef) String() string {
	var sb strings.Builder
	sb.WriteString(r.Owner.String())
	sb.WriteByte('.')
	sb.WriteString(r.Name)
	if len(r.Inst) > 0 {
		sb.WriteByte('<')
		writeRefList(&sb, r.Inst)
		sb.WriteByte('>')
	}
	if r.HasSig {
		sb.WriteByte('(')
		writeRefList(&sb, r.Params)
		sb.WriteByte(')')
	}
	if r.Ordinal > 0 {
		sb.WriteByte('#')
		sb.WriteString(strconv.Itoa(r.Ordinal))
	}
	return sb.String()
}

func writeRefList(sb *strings.Builder, refs []TypeRef) {
	for i, a := range refs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
}

// SyntaxError reports a malformed reference.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed reference %q at offset %d: %s", e.Input, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ParseTypeRef parses a type reference. Identifiers are NFC-normalized.
func ParseTypeRef(s string) (TypeRef, error) {
	p := newRefParser(s)
	ref, err := p.typeRef()
	if err != nil {
		return TypeRef{}, err
	}
	if err := p.end(); err != nil {
		return TypeRef{}, err
	}
	return ref, nil
}

// ParseMethodRef parses a method reference. Identifiers are NFC-normalized.
func ParseMethodRef(s string) (MethodRef, error) {
	p := newRefParser(s)
	owner, err := p.typeRef()
	if err != nil {
		return MethodRef{}, err
	}
	if !p.accept('.') {
		return MethodRef{}, p.errorf("expected '.' and a method name")
	}
	ref := MethodRef{Owner: owner}
	if ref.Name, err = p.ident(); err != nil {
		return MethodRef{}, err
	}
	if p.accept('<') {
		if ref.Inst, err = p.refList('>'); err != nil {
			return MethodRef{}, err
		}
		if len(ref.Inst) == 0 {
			return MethodRef{}, p.errorf("empty method instantiation")
		}
	}
	if p.accept('(') {
		ref.HasSig = true
		if ref.Params, err = p.refList(')'); err != nil {
			return MethodRef{}, err
		}
	}
	if p.accept('#') {
		if ref.Ordinal, err = p.ordinal(); err != nil {
			return MethodRef{}, err
		}
	}
	if err := p.end(); err != nil {
		return MethodRef{}, err
	}
	return ref, nil
}

// NormalizeIdent returns the NFC form of a trimmed identifier.
func NormalizeIdent(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

type refParser struct {
	src string
	pos int
}

func newRefParser(s string) *refParser {
	return &refParser{src: norm.NFC.String(s)}
}

func (p *refParser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

func (p *refParser) peek() rune {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *refParser) accept(r rune) bool {
	if p.peek() == r {
		p.pos += utf8.RuneLen(r)
		return true
	}
	return false
}

func (p *refParser) end() error {
	p.skipSpace()
	if p.pos != len(p.src) {
		return p.errorf("unexpected %q", p.src[p.pos:])
	}
	return nil
}

func (p *refParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !isIdentRune(r, p.pos == start) {
			break
		}
		p.pos += size
	}
	if p.pos == start {
		if start >= len(p.src) {
			return "", p.errorf("expected identifier, got end of input")
		}
		return "", p.errorf("expected identifier")
	}
	return p.src[start:p.pos], nil
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}

func (p *refParser) typeRef() (TypeRef, error) {
	name, err := p.ident()
	if err != nil {
		return TypeRef{}, err
	}
	ref := TypeRef{Name: name}
	if p.accept('<') {
		if ref.Args, err = p.refList('>'); err != nil {
			return TypeRef{}, err
		}
		if len(ref.Args) == 0 {
			return TypeRef{}, p.errorf("empty generic argument list")
		}
	}
	return ref, nil
}

// refList parses comma separated type references up to and including closer.
func (p *refParser) refList(closer rune) ([]TypeRef, error) {
	var out []TypeRef
	if p.accept(closer) {
		return out, nil
	}
	for {
		ref, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
		if p.accept(',') {
			continue
		}
		if p.accept(closer) {
			return out, nil
		}
		return nil, p.errorf("expected ',' or %q", closer)
	}
}

func (p *refParser) ordinal() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	u, err := strconv.ParseUint(p.src[start:p.pos], 10, 64)
	if err != nil || u == 0 {
		p.pos = start
		return 0, p.errorf("expected a positive declaration ordinal after '#'")
	}
	n, err := safecast.Conv[int](u)
	if err != nil {
		p.pos = start
		return 0, p.errorf("declaration ordinal %d out of range: %v", u, err)
	}
	return n, nil
}
