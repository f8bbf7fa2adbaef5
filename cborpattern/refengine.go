package cborpattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
)

// RefEngine is a small, self-contained reference implementation of
// [Engine]. It supports a minimal grammar over the subset of CBOR
// shapes the pattern engine's own leaf patterns also understand:
//
//	*                    any value
//	true, false          bool literals
//	null                 null literal
//	42, -3, 4.5          number literals (exact match)
//	"text"               text literal (exact match)
//	@name(p)             named capture
//	p | p                alternation
//	(p)                  grouping
//
// Byte-string literals are not part of this grammar. Literals match by
// canonical CBOR encoding, so an integer literal does not match a
// floating-point value of the same magnitude.
//
// It exists to give the adapter (§4.3) and the `cbor(/…/)` escape hatch
// something concrete to call; production integrations are expected to
// supply a fuller dcbor-pattern-style [Engine].
type RefEngine struct{}

func (RefEngine) Parse(src string) (Pattern, error) {
	p := &refParser{src: src}
	pat, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("cborpattern: unexpected trailing input %q", p.src[p.pos:])
	}
	return pat, nil
}

func (e RefEngine) Matches(p Pattern, value envelope.CBOR) bool {
	paths, _ := e.PathsWithCaptures(p, value)
	return len(paths) > 0
}

func (RefEngine) PathsWithCaptures(p Pattern, value envelope.CBOR) ([][]envelope.CBOR, map[string][][]envelope.CBOR) {
	caps := map[string][][]envelope.CBOR{}
	ok := evalRef(p, value, caps)
	if !ok {
		return nil, map[string][][]envelope.CBOR{}
	}
	return [][]envelope.CBOR{{value}}, caps
}

func evalRef(p Pattern, value envelope.CBOR, caps map[string][][]envelope.CBOR) bool {
	switch pat := p.(type) {
	case *refAny:
		return true
	case *refLiteral:
		lit, err := envelope.NewCBOR(pat.value)
		if err != nil {
			return false
		}
		return lit.Equal(value)
	case *refOr:
		for _, alt := range pat.alts {
			if evalRef(alt, value, caps) {
				return true
			}
		}
		return false
	case *refCapture:
		if evalRef(pat.inner, value, caps) {
			caps[pat.name] = append(caps[pat.name], []envelope.CBOR{value})
			return true
		}
		return false
	default:
		return false
	}
}

// -- tiny grammar --

type refAny struct{}

func (*refAny) String() string      { return "*" }
func (*refAny) CollectNames() []string { return nil }

type refLiteral struct{ value any }

func (l *refLiteral) String() string {
	switch v := l.value.(type) {
	case string:
		return strconv.Quote(v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}
func (*refLiteral) CollectNames() []string { return nil }

type refOr struct{ alts []Pattern }

func (o *refOr) String() string {
	parts := make([]string, len(o.alts))
	for i, a := range o.alts {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}
func (o *refOr) CollectNames() []string {
	var names []string
	for _, a := range o.alts {
		names = append(names, a.CollectNames()...)
	}
	return names
}

type refCapture struct {
	name  string
	inner Pattern
}

func (c *refCapture) String() string { return "@" + c.name + "(" + c.inner.String() + ")" }
func (c *refCapture) CollectNames() []string {
	return append([]string{c.name}, c.inner.CollectNames()...)
}

type refParser struct {
	src string
	pos int
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *refParser) parseAlt() (Pattern, error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	alts := []Pattern{first}
	for {
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '|' {
			p.pos++
			next, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			alts = append(alts, next)
			continue
		}
		break
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &refOr{alts: alts}, nil
}

func (p *refParser) parsePrimary() (Pattern, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("cborpattern: unexpected end of input")
	}
	switch {
	case p.src[p.pos] == '*':
		p.pos++
		return &refAny{}, nil
	case p.src[p.pos] == '@':
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != '(' {
			p.pos++
		}
		name := p.src[start:p.pos]
		if p.pos >= len(p.src) || p.src[p.pos] != '(' {
			return nil, fmt.Errorf("cborpattern: expected '(' after @%s", name)
		}
		p.pos++
		inner, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return nil, fmt.Errorf("cborpattern: expected ')'")
		}
		p.pos++
		return &refCapture{name: name, inner: inner}, nil
	case p.src[p.pos] == '(':
		p.pos++
		inner, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return nil, fmt.Errorf("cborpattern: expected ')'")
		}
		p.pos++
		return inner, nil
	case p.src[p.pos] == '"':
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != '"' {
			p.pos++
		}
		text := p.src[start:p.pos]
		p.pos++
		return &refLiteral{value: text}, nil
	case strings.HasPrefix(p.src[p.pos:], "true"):
		p.pos += 4
		return &refLiteral{value: true}, nil
	case strings.HasPrefix(p.src[p.pos:], "false"):
		p.pos += 5
		return &refLiteral{value: false}, nil
	case strings.HasPrefix(p.src[p.pos:], "null"):
		p.pos += 4
		return &refLiteral{value: nil}, nil
	default:
		start := p.pos
		for p.pos < len(p.src) && strings.ContainsRune("+-0123456789.eE", rune(p.src[p.pos])) {
			p.pos++
		}
		if p.pos == start {
			return nil, fmt.Errorf("cborpattern: unexpected character %q", p.src[p.pos])
		}
		text := p.src[start:p.pos]
		if strings.ContainsAny(text, ".eE") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, err
			}
			return &refLiteral{value: f}, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, err
		}
		return &refLiteral{value: n}, nil
	}
}
