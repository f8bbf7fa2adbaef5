// Package parser implements the pattern-language recursive-descent
// parser (component D): an operator-precedence parser over the
// scanner's token stream that builds a [ast.Pattern] tree, delegating
// the `cbor(/ … /)`, `[…]`, and `{…}` sub-languages verbatim to an
// external [cborpattern.Engine] (§4.2, §4.3).
package parser

import (
	"fmt"
	"strings"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/cborpattern"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/ast"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/errors"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/interval"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/scanner"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/token"
)

// Parse compiles pattern source text into an AST, using engine to parse
// any embedded CBOR-pattern sub-expressions. A nil engine defaults to
// [cborpattern.RefEngine].
func Parse(src string, engine cborpattern.Engine) (ast.Pattern, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.EmptyInput()
	}
	if engine == nil {
		engine = cborpattern.RefEngine{}
	}
	p := &parser{src: src, sc: scanner.New(src), cbor: engine}
	p.advance()
	pat, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if len(p.sc.Errs()) > 0 {
		return nil, p.sc.Errs()
	}
	if p.tok.Kind != scanner.EOF {
		return nil, errors.ExtraData(p.tok.Span, p.tok.Text)
	}
	return pat, nil
}

type parser struct {
	src string
	sc  *scanner.Scanner
	tok scanner.Token
	cbor cborpattern.Engine
}

func (p *parser) advance() { p.tok = p.sc.Next() }

func (p *parser) at(k scanner.Kind) bool { return p.tok.Kind == k }

func (p *parser) atKeyword(kw string) bool {
	return p.tok.Kind == scanner.KEYWORD && p.tok.Text == kw
}

func (p *parser) expect(k scanner.Kind, onMissing func(token.Span) errors.Error) (scanner.Token, error) {
	if p.tok.Kind != k {
		return scanner.Token{}, onMissing(p.tok.Span)
	}
	t := p.tok
	p.advance()
	return t, nil
}

// -- precedence level 1: alternation --

func (p *parser) parseOr() (ast.Pattern, error) {
	first, err := p.parseTraverse()
	if err != nil {
		return nil, err
	}
	pats := []ast.Pattern{first}
	for p.at(scanner.PIPE) {
		p.advance()
		next, err := p.parseTraverse()
		if err != nil {
			return nil, err
		}
		pats = append(pats, next)
	}
	if len(pats) == 1 {
		return pats[0], nil
	}
	return &ast.OrPattern{Patterns: pats}, nil
}

// -- precedence level 2: traversal --

func (p *parser) parseTraverse() (ast.Pattern, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	pats := []ast.Pattern{first}
	for p.at(scanner.ARROW) || p.at(scanner.GT) {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		pats = append(pats, next)
	}
	if len(pats) == 1 {
		return pats[0], nil
	}
	return &ast.TraversePattern{Patterns: pats}, nil
}

// -- precedence level 3: intersection --

func (p *parser) parseAnd() (ast.Pattern, error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	pats := []ast.Pattern{first}
	for p.at(scanner.AMP) {
		p.advance()
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		pats = append(pats, next)
	}
	if len(pats) == 1 {
		return pats[0], nil
	}
	return &ast.AndPattern{Patterns: pats}, nil
}

// -- precedence level 4: negation (prefix) --

func (p *parser) parseNot() (ast.Pattern, error) {
	if p.at(scanner.BANG) {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		if _, ok := inner.(*ast.AnyPattern); ok {
			return &ast.NonePattern{}, nil
		}
		return &ast.NotPattern{Inner: inner}, nil
	}
	return p.parseQuantified()
}

// -- precedence level 5: quantifier postfix --

func (p *parser) parseQuantified() (ast.Pattern, error) {
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	q, hasQ, err := p.parseQuantifierSuffix()
	if err != nil {
		return nil, err
	}
	if !hasQ {
		return prim, nil
	}
	return &ast.RepeatPattern{Inner: prim, Quantifier: q}, nil
}

func (p *parser) parseQuantifierSuffix() (interval.Quantifier, bool, error) {
	switch p.tok.Kind {
	case scanner.STAR:
		p.advance()
		return interval.Star(interval.Greedy), true, nil
	case scanner.STARLAZY:
		p.advance()
		return interval.Star(interval.Lazy), true, nil
	case scanner.STARPOSS:
		p.advance()
		return interval.Star(interval.Possessive), true, nil
	case scanner.PLUS:
		p.advance()
		return interval.Plus(interval.Greedy), true, nil
	case scanner.PLUSLAZY:
		p.advance()
		return interval.Plus(interval.Lazy), true, nil
	case scanner.PLUSPOSS:
		p.advance()
		return interval.Plus(interval.Possessive), true, nil
	case scanner.QUESTION:
		p.advance()
		return interval.Optional(interval.Greedy), true, nil
	case scanner.QUESTLAZY:
		p.advance()
		return interval.Optional(interval.Lazy), true, nil
	case scanner.QUESTPOSS:
		p.advance()
		return interval.Optional(interval.Possessive), true, nil
	case scanner.LBRACE:
		return p.parseBraceQuantifier()
	default:
		return interval.Quantifier{}, false, nil
	}
}

func (p *parser) parseBraceQuantifier() (interval.Quantifier, bool, error) {
	start := p.tok.Span
	p.advance() // {
	min, err := p.parseUint()
	if err != nil {
		return interval.Quantifier{}, false, errors.InvalidRange(start, "{")
	}
	var max *uint
	max = &min
	if p.at(scanner.COMMA) {
		p.advance()
		if p.at(scanner.RBRACE) {
			max = nil
		} else {
			m, err := p.parseUint()
			if err != nil {
				return interval.Quantifier{}, false, errors.InvalidRange(start, "{")
			}
			max = &m
		}
	}
	if _, err := p.expect(scanner.RBRACE, errors.UnmatchedBraces); err != nil {
		return interval.Quantifier{}, false, err
	}
	r := interval.Greedy
	switch p.tok.Kind {
	case scanner.QUESTION:
		r = interval.Lazy
		p.advance()
	case scanner.PLUS:
		r = interval.Possessive
		p.advance()
	}
	return interval.Quantifier{Min: min, Max: max, Reluctance: r}, true, nil
}

func (p *parser) parseUint() (uint, error) {
	if p.tok.Kind != scanner.INT {
		return 0, fmt.Errorf("expected integer")
	}
	text := p.tok.Text
	p.advance()
	var n uint
	_, err := fmt.Sscanf(text, "%d", &n)
	return n, err
}
