package types

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Parse resolves a type expression against lookup.
//
//	Customer                     plain type
//	IRepository<Customer>        constructed type
//	Map<string, List<T>>         nested, T resolved through scope
//	IRepository<>, Map<,>        bare generic definition of that arity
//
// A bare name that matches no plain type resolves to the generic definition
// of that name when exactly one is declared.
func Parse(lookup Lookuper, expr string, scope ...*Param) (*Type, error) {
	p := &parser{src: expr, lookup: lookup, scope: scope}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(lookup Lookuper, expr string, scope ...*Param) *Type {
	t, err := Parse(lookup, expr, scope...)
	if err != nil {
		panic(err)
	}
	return t
}

// CheckSyntax reports whether expr is a well formed type expression without
// resolving any names.
func CheckSyntax(expr string) error {
	_, err := Parse(syntaxOnly{}, expr)
	return err
}

type parser struct {
	src    string
	pos    int
	lookup Lookuper
	scope  []*Param
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expr: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		ok := r == '_' || unicode.IsLetter(r) || (p.pos > start && (unicode.IsDigit(r) || r == '.'))
		if !ok {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func (p *parser) parseType() (*Type, error) {
	p.skipSpace()
	name := p.ident()
	if name == "" {
		if p.pos >= len(p.src) {
			return nil, p.errorf("expected type name, found end of input")
		}
		return nil, p.errorf("expected type name, found %q", p.src[p.pos])
	}
	p.skipSpace()
	if p.peek() != '<' {
		return p.resolveName(name)
	}
	p.pos++
	p.skipSpace()

	if c := p.peek(); c == '>' || c == ',' {
		arity := 1
		for p.peek() == ',' {
			arity++
			p.pos++
			p.skipSpace()
		}
		if p.peek() != '>' {
			return nil, p.errorf("expected '>' after open generic %s", name)
		}
		p.pos++
		def, ok := p.lookup.Lookup(name, arity)
		if !ok {
			return nil, &UnknownTypeError{Name: name, Arity: arity}
		}
		return def, nil
	}

	var args []*Type
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			continue
		case '>':
			p.pos++
		case 0:
			return nil, p.errorf("unterminated argument list of %s", name)
		default:
			return nil, p.errorf("expected ',' or '>', found %q", p.src[p.pos])
		}
		break
	}

	def, ok := p.lookup.Lookup(name, len(args))
	if !ok {
		return nil, &UnknownTypeError{Name: name, Arity: len(args)}
	}
	return Construct(def, args...)
}

func (p *parser) resolveName(name string) (*Type, error) {
	for _, s := range p.scope {
		if s.name == name {
			return s.typ, nil
		}
	}
	if t, ok := p.lookup.Lookup(name, 0); ok {
		return t, nil
	}
	var defs []*Type
	for _, t := range p.lookup.Named(name) {
		if t.kind == Definition {
			defs = append(defs, t)
		}
	}
	if len(defs) == 1 {
		return defs[0], nil
	}
	return nil, &UnknownTypeError{Name: name}
}

// syntaxOnly accepts every name, inventing definitions of whatever arity the
// expression uses.
type syntaxOnly struct{}

func (syntaxOnly) Lookup(name string, arity int) (*Type, bool) {
	if arity == 0 {
		return NewPlain(name), true
	}
	params := make([]string, arity)
	for i := range params {
		params[i] = "T" + strconv.Itoa(i)
	}
	return NewDefinition(name, params...), true
}

func (syntaxOnly) Named(string) []*Type { return nil }
