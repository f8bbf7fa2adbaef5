package parser

import (
	"regexp"

	"github.com/cockroachdb/apd/v3"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/ast"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/errors"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/literal"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/scanner"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/token"
)

func (p *parser) parsePrimary() (ast.Pattern, error) {
	switch {
	case p.at(scanner.STAR):
		p.advance()
		return &ast.AnyPattern{}, nil
	case p.at(scanner.CAPTURE):
		return p.parseCapture()
	case p.at(scanner.LPAREN):
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
			return nil, err
		}
		return inner, nil
	case p.at(scanner.LBRACKET):
		return p.parseArrayElements()
	case p.at(scanner.LBRACE):
		return p.parseMapElements()
	case p.at(scanner.INT), p.at(scanner.FLOAT), p.at(scanner.GT), p.at(scanner.GE), p.at(scanner.LT), p.at(scanner.LE):
		return p.parseNumberLiteralPrimary()
	case p.at(scanner.STRING):
		return p.parseTextLiteral()
	case p.at(scanner.TEXTREGEX):
		return p.parseTextRegex()
	case p.at(scanner.KNOWNNAME):
		return p.parseKnownNameLiteral()
	case p.at(scanner.IDENT) && p.tok.Text == "h":
		return p.parseHexPrimary()
	case p.at(scanner.KEYWORD):
		return p.parseKeywordPrimary()
	case p.at(scanner.EOF):
		return nil, errors.UnexpectedEndOfInput(p.tok.Span)
	default:
		return nil, errors.UnexpectedToken(p.tok.Span, p.tok.Text)
	}
}

func (p *parser) parseCapture() (ast.Pattern, error) {
	name := p.tok.Text
	span := p.tok.Span
	p.advance()
	if name == "" {
		return nil, errors.InvalidCaptureGroupName(span, name)
	}
	if _, err := p.expect(scanner.LPAREN, errors.ExpectedOpenParen); err != nil {
		return nil, err
	}
	inner, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
		return nil, err
	}
	return &ast.CapturePattern{Name: name, Inner: inner}, nil
}

func (p *parser) parseKeywordPrimary() (ast.Pattern, error) {
	kw := p.tok.Text
	span := p.tok.Span
	p.advance()
	switch kw {
	case "bool":
		return &ast.BoolPattern{Mode: ast.BoolAny}, nil
	case "true":
		return &ast.BoolPattern{Mode: ast.BoolTrue}, nil
	case "false":
		return &ast.BoolPattern{Mode: ast.BoolFalse}, nil
	case "number":
		return &ast.NumberPattern{Mode: ast.NumberAny}, nil
	case "NaN":
		return &ast.NumberPattern{Mode: ast.NumberNaN}, nil
	case "Infinity":
		return &ast.NumberPattern{Mode: ast.NumberInfinity}, nil
	case "text":
		return &ast.TextPattern{Mode: ast.TextAny}, nil
	case "bstr":
		return &ast.ByteStringPattern{Mode: ast.BytesAny}, nil
	case "date":
		return p.parseDate(span)
	case "tagged":
		return p.parseTagged(span)
	case "known":
		return p.parseKnown(span)
	case "cbor":
		return p.parseCbor(span)
	case "array":
		return p.parseLengthRangeKeyword(span, func(min, max *uint) ast.Pattern {
			if min == nil {
				return &ast.ArrayPattern{Mode: ast.ArrayAny}
			}
			return &ast.ArrayPattern{Mode: ast.ArrayLengthRange, Min: min, Max: max}
		})
	case "map":
		return p.parseLengthRangeKeyword(span, func(min, max *uint) ast.Pattern {
			if min == nil {
				return &ast.MapPattern{Mode: ast.MapAny}
			}
			return &ast.MapPattern{Mode: ast.MapSizeRange, Min: min, Max: max}
		})
	case "null":
		return &ast.NullPattern{}, nil
	case "leaf":
		return &ast.StructLeafPattern{}, nil
	case "node":
		return p.parseLengthRangeKeyword(span, func(min, max *uint) ast.Pattern {
			if min == nil {
				return &ast.NodePattern{Mode: ast.NodeAny}
			}
			return &ast.NodePattern{Mode: ast.NodeAssertionCount, Min: min, Max: max}
		})
	case "subject":
		return p.parseOptionalInner(func(inner ast.Pattern) ast.Pattern {
			if inner == nil {
				return &ast.SubjectPattern{Mode: ast.SubjectAny}
			}
			return &ast.SubjectPattern{Mode: ast.SubjectInner, Inner: inner}
		})
	case "predicate":
		return p.parseOptionalInner(func(inner ast.Pattern) ast.Pattern {
			if inner == nil {
				return &ast.PredicatePattern{Mode: ast.PredicateAny}
			}
			return &ast.PredicatePattern{Mode: ast.PredicateInner, Inner: inner}
		})
	case "object":
		return p.parseOptionalInner(func(inner ast.Pattern) ast.Pattern {
			if inner == nil {
				return &ast.ObjectPattern{Mode: ast.ObjectAny}
			}
			return &ast.ObjectPattern{Mode: ast.ObjectInner, Inner: inner}
		})
	case "assertion":
		return &ast.AssertionPattern{Mode: ast.AssertionAny}, nil
	case "assertpred":
		if _, err := p.expect(scanner.LPAREN, errors.ExpectedOpenParen); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
			return nil, err
		}
		return &ast.AssertionPattern{Mode: ast.AssertionWithPredicate, Predicate: inner}, nil
	case "assertobj":
		if _, err := p.expect(scanner.LPAREN, errors.ExpectedOpenParen); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
			return nil, err
		}
		return &ast.AssertionPattern{Mode: ast.AssertionWithObject, Object: inner}, nil
	case "wrapped":
		return &ast.WrappedPattern{}, nil
	case "unwrap":
		return p.parseOptionalInner(func(inner ast.Pattern) ast.Pattern {
			if inner == nil {
				return &ast.UnwrapPattern{Mode: ast.UnwrapAny}
			}
			return &ast.UnwrapPattern{Mode: ast.UnwrapInner, Inner: inner}
		})
	case "search":
		if _, err := p.expect(scanner.LPAREN, errors.ExpectedOpenParen); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
			return nil, err
		}
		return &ast.SearchPattern{Inner: inner}, nil
	case "digest":
		return p.parseDigest(span)
	case "obscured":
		return &ast.ObscuredPattern{Mode: ast.ObscuredAny}, nil
	case "elided":
		return &ast.ObscuredPattern{Mode: ast.ObscuredElided}, nil
	case "encrypted":
		return &ast.ObscuredPattern{Mode: ast.ObscuredEncrypted}, nil
	case "compressed":
		return &ast.ObscuredPattern{Mode: ast.ObscuredCompressed}, nil
	default:
		return nil, errors.UnexpectedToken(span, kw)
	}
}

// parseOptionalInner handles the common `kw` / `kw(p)` shape.
func (p *parser) parseOptionalInner(build func(inner ast.Pattern) ast.Pattern) (ast.Pattern, error) {
	if !p.at(scanner.LPAREN) {
		return build(nil), nil
	}
	p.advance()
	inner, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
		return nil, err
	}
	return build(inner), nil
}

// parseLengthRangeKeyword handles `kw`, `kw(n)`, `kw(n,)`, `kw(n,m)`.
func (p *parser) parseLengthRangeKeyword(span token.Span, build func(min, max *uint) ast.Pattern) (ast.Pattern, error) {
	if !p.at(scanner.LPAREN) {
		return build(nil, nil), nil
	}
	p.advance()
	min, err := p.parseUint()
	if err != nil {
		return nil, errors.InvalidRange(p.tok.Span, p.tok.Text)
	}
	max := &min
	if p.at(scanner.COMMA) {
		p.advance()
		if p.at(scanner.RPAREN) {
			max = nil
		} else {
			m, err := p.parseUint()
			if err != nil {
				return nil, errors.InvalidRange(p.tok.Span, p.tok.Text)
			}
			max = &m
		}
	}
	if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
		return nil, err
	}
	return build(&min, max), nil
}

func (p *parser) parseNumberLiteralPrimary() (ast.Pattern, error) {
	switch p.tok.Kind {
	case scanner.GT, scanner.GE, scanner.LT, scanner.LE:
		op := p.tok.Kind
		span := p.tok.Span
		p.advance()
		bound, err := p.parseNumberToken(span)
		if err != nil {
			return nil, err
		}
		mode := map[scanner.Kind]ast.NumberMode{
			scanner.GT: ast.NumberGT, scanner.GE: ast.NumberGE,
			scanner.LT: ast.NumberLT, scanner.LE: ast.NumberLE,
		}[op]
		return &ast.NumberPattern{Mode: mode, Bound: bound}, nil
	default:
		span := p.tok.Span
		first, err := p.parseNumberToken(span)
		if err != nil {
			return nil, err
		}
		if p.at(scanner.ELLIPSIS) {
			p.advance()
			span2 := p.tok.Span
			second, err := p.parseNumberToken(span2)
			if err != nil {
				return nil, err
			}
			return &ast.NumberPattern{Mode: ast.NumberRange, Bound: first, Upper: second}, nil
		}
		return &ast.NumberPattern{Mode: ast.NumberExact, Exact: first}, nil
	}
}

func (p *parser) parseNumberToken(span token.Span) (*apd.Decimal, error) {
	if p.tok.Kind != scanner.INT && p.tok.Kind != scanner.FLOAT {
		return nil, errors.InvalidNumberFormat(p.tok.Span, p.tok.Text)
	}
	text := p.tok.Text
	p.advance()
	d, err := literal.ParseNumber(text)
	if err != nil {
		return nil, errors.InvalidNumberFormat(p.tok.Span, text)
	}
	return d, nil
}

func (p *parser) parseTextLiteral() (ast.Pattern, error) {
	text, err := literal.Unquote(p.tok.Text)
	if err != nil {
		return nil, errors.InvalidNumberFormat(p.tok.Span, p.tok.Text)
	}
	p.advance()
	return &ast.TextPattern{Mode: ast.TextLiteral, Literal: text}, nil
}

func (p *parser) parseTextRegex() (ast.Pattern, error) {
	span := p.tok.Span
	body, err := literal.UnescapeRegexBody(p.tok.Text)
	if err != nil {
		return nil, errors.InvalidRegex(span, err)
	}
	re, err := regexp.Compile(body)
	if err != nil {
		return nil, errors.InvalidRegex(span, err)
	}
	p.advance()
	return &ast.TextPattern{Mode: ast.TextRegex, RegexSrc: body, Regex: re}, nil
}

func (p *parser) parseKnownNameLiteral() (ast.Pattern, error) {
	name := p.tok.Text
	p.advance()
	return &ast.KnownValuePattern{Mode: ast.KnownName, Name: name}, nil
}

func (p *parser) parseHexPrimary() (ast.Pattern, error) {
	span := p.tok.Span
	p.advance() // consume "h" ident
	if !p.at(scanner.KNOWNNAME) {
		return nil, errors.InvalidHexString(span, errShapeErr{"expected h'...'"})
	}
	body := p.tok.Text
	p.advance()
	if len(body) >= 2 && body[0] == '/' && body[len(body)-1] == '/' {
		reSrc := body[1 : len(body)-1]
		re, err := regexp.Compile(reSrc)
		if err != nil {
			return nil, errors.InvalidRegex(span, err)
		}
		return &ast.ByteStringPattern{Mode: ast.BytesRegex, RegexSrc: reSrc, Regex: re}, nil
	}
	raw, err := literal.DecodeHex(body)
	if err != nil {
		return nil, errors.InvalidHexString(span, err)
	}
	return &ast.ByteStringPattern{Mode: ast.BytesLiteral, Literal: raw}, nil
}

func (p *parser) parseDate(span token.Span) (ast.Pattern, error) {
	if !p.at(scanner.KNOWNNAME) {
		return &ast.DatePattern{Mode: ast.DateAny}, nil
	}
	body := p.tok.Text
	tokSpan := p.tok.Span
	p.advance()
	if len(body) >= 2 && body[0] == '/' && body[len(body)-1] == '/' {
		reSrc := body[1 : len(body)-1]
		re, err := regexp.Compile(reSrc)
		if err != nil {
			return nil, errors.InvalidRegex(tokSpan, err)
		}
		return &ast.DatePattern{Mode: ast.DateRegex, RegexSrc: reSrc, Regex: re}, nil
	}
	const sep = "..."
	if idx := indexOf(body, sep); idx >= 0 {
		lo, hi := body[:idx], body[idx+len(sep):]
		switch {
		case lo == "":
			t, err := literal.ParseDate(hi)
			if err != nil {
				return nil, errors.InvalidDateFormat(tokSpan, body)
			}
			return &ast.DatePattern{Mode: ast.DateLatest, Latest: t}, nil
		case hi == "":
			t, err := literal.ParseDate(lo)
			if err != nil {
				return nil, errors.InvalidDateFormat(tokSpan, body)
			}
			return &ast.DatePattern{Mode: ast.DateEarliest, Earliest: t}, nil
		default:
			t1, err1 := literal.ParseDate(lo)
			t2, err2 := literal.ParseDate(hi)
			if err1 != nil || err2 != nil {
				return nil, errors.InvalidDateFormat(tokSpan, body)
			}
			return &ast.DatePattern{Mode: ast.DateRange, Earliest: t1, Latest: t2}, nil
		}
	}
	if hasRune(body, 'T') {
		return &ast.DatePattern{Mode: ast.DateISOString, ISO: body}, nil
	}
	t, err := literal.ParseDate(body)
	if err != nil {
		return nil, errors.InvalidDateFormat(tokSpan, body)
	}
	return &ast.DatePattern{Mode: ast.DateValue, Value: t}, nil
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func hasRune(s string, r byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == r {
			return true
		}
	}
	return false
}

func (p *parser) parseKnown(span token.Span) (ast.Pattern, error) {
	if p.at(scanner.KNOWNNAME) {
		name := p.tok.Text
		p.advance()
		return &ast.KnownValuePattern{Mode: ast.KnownName, Name: name}, nil
	}
	if !p.at(scanner.LPAREN) {
		return &ast.KnownValuePattern{Mode: ast.KnownAny}, nil
	}
	p.advance()
	switch p.tok.Kind {
	case scanner.INT:
		n, err := p.parseUint()
		if err != nil {
			return nil, errors.InvalidNumberFormat(p.tok.Span, p.tok.Text)
		}
		if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
			return nil, err
		}
		return &ast.KnownValuePattern{Mode: ast.KnownValueMode, Value: uint64(n)}, nil
	case scanner.TEXTREGEX:
		reSrc, err := literal.UnescapeRegexBody(p.tok.Text)
		if err != nil {
			return nil, errors.InvalidRegex(p.tok.Span, err)
		}
		re, err := regexp.Compile(reSrc)
		if err != nil {
			return nil, errors.InvalidRegex(p.tok.Span, err)
		}
		p.advance()
		if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
			return nil, err
		}
		return &ast.KnownValuePattern{Mode: ast.KnownNameRegex, RegexSrc: reSrc, Regex: re}, nil
	default:
		return nil, errors.ExpectedPattern(p.tok.Span)
	}
}

func (p *parser) parseTagged(span token.Span) (ast.Pattern, error) {
	if !p.at(scanner.LPAREN) {
		return &ast.TagPattern{Mode: ast.TagAny}, nil
	}
	p.advance()
	tp := &ast.TagPattern{}
	switch p.tok.Kind {
	case scanner.INT:
		n, err := p.parseUint()
		if err != nil {
			return nil, errors.InvalidNumberFormat(p.tok.Span, p.tok.Text)
		}
		tp.Mode, tp.Value = ast.TagValue, uint64(n)
	case scanner.STRING:
		name, err := literal.Unquote(p.tok.Text)
		if err != nil {
			return nil, errors.InvalidNumberFormat(p.tok.Span, p.tok.Text)
		}
		p.advance()
		tp.Mode, tp.Name = ast.TagName, name
	case scanner.TEXTREGEX:
		reSrc, err := literal.UnescapeRegexBody(p.tok.Text)
		if err != nil {
			return nil, errors.InvalidRegex(p.tok.Span, err)
		}
		re, err := regexp.Compile(reSrc)
		if err != nil {
			return nil, errors.InvalidRegex(p.tok.Span, err)
		}
		p.advance()
		tp.Mode, tp.RegexSrc, tp.Regex = ast.TagNameRegex, reSrc, re
	default:
		return nil, errors.ExpectedPattern(p.tok.Span)
	}
	if p.at(scanner.COMMA) {
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		tp.Inner = inner
	}
	if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
		return nil, err
	}
	return tp, nil
}

func (p *parser) parseCbor(span token.Span) (ast.Pattern, error) {
	if !p.at(scanner.LPAREN) {
		return &ast.CborPattern{Mode: ast.CborAny}, nil
	}
	p.advance()
	if p.at(scanner.TEXTREGEX) {
		// Slash-delimited embedded CBOR-pattern, forwarded verbatim.
		body, err := literal.UnescapeRegexBody(p.tok.Text)
		if err != nil {
			return nil, errors.InvalidRegex(p.tok.Span, err)
		}
		tokSpan := p.tok.Span
		p.advance()
		embedded, err := p.cbor.Parse(body)
		if err != nil {
			return nil, errors.InvalidRegex(tokSpan, err)
		}
		if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
			return nil, err
		}
		return &ast.CborPattern{Mode: ast.CborEmbedded, Embedded: embedded}, nil
	}
	val, err := p.parseCborExactValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
		return nil, err
	}
	return &ast.CborPattern{Mode: ast.CborExact, Exact: val}, nil
}

func (p *parser) parseCborExactValue() (envelope.CBOR, error) {
	switch p.tok.Kind {
	case scanner.INT, scanner.FLOAT:
		d, err := literal.ParseNumber(p.tok.Text)
		if err != nil {
			return envelope.CBOR{}, errors.InvalidNumberFormat(p.tok.Span, p.tok.Text)
		}
		p.advance()
		f, err := d.Float64()
		if err != nil {
			return envelope.CBOR{}, errors.InvalidNumberFormat(p.tok.Span, d.String())
		}
		return envelope.NewCBOR(f)
	case scanner.STRING:
		s, err := literal.Unquote(p.tok.Text)
		if err != nil {
			return envelope.CBOR{}, errors.InvalidNumberFormat(p.tok.Span, p.tok.Text)
		}
		p.advance()
		return envelope.NewCBOR(s)
	case scanner.KEYWORD:
		switch p.tok.Text {
		case "true":
			p.advance()
			return envelope.NewCBOR(true)
		case "false":
			p.advance()
			return envelope.NewCBOR(false)
		case "null":
			p.advance()
			return envelope.NewCBOR(nil)
		}
	}
	return envelope.CBOR{}, errors.ExpectedPattern(p.tok.Span)
}

func (p *parser) parseDigest(span token.Span) (ast.Pattern, error) {
	if _, err := p.expect(scanner.LPAREN, errors.ExpectedOpenParen); err != nil {
		return nil, err
	}
	switch p.tok.Kind {
	case scanner.UR:
		text := p.tok.Text
		p.advance()
		if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
			return nil, err
		}
		d, err := digestFromUR(text)
		if err != nil {
			return nil, errors.InvalidUr(p.tok.Span, err.Error())
		}
		return &ast.DigestPattern{Mode: ast.DigestExact, Exact: d}, nil
	case scanner.IDENT:
		body := p.tok.Text
		tokSpan := p.tok.Span
		p.advance()
		if !p.at(scanner.KNOWNNAME) || body != "h" {
			return nil, errors.InvalidHexString(tokSpan, errShapeErr{"expected h'hex'"})
		}
		hexBody := p.tok.Text
		p.advance()
		if _, err := p.expect(scanner.RPAREN, errors.ExpectedCloseParen); err != nil {
			return nil, err
		}
		if len(hexBody) >= 2 && hexBody[0] == '/' && hexBody[len(hexBody)-1] == '/' {
			reSrc := hexBody[1 : len(hexBody)-1]
			re, err := regexp.Compile(reSrc)
			if err != nil {
				return nil, errors.InvalidRegex(tokSpan, err)
			}
			return &ast.DigestPattern{Mode: ast.DigestRegexMode, RegexSrc: reSrc, Regex: re}, nil
		}
		raw, err := literal.DecodeHex(hexBody)
		if err != nil {
			return nil, errors.InvalidHexString(tokSpan, err)
		}
		if len(raw) < 32 {
			return &ast.DigestPattern{Mode: ast.DigestPrefixMode, Prefix: raw}, nil
		}
		d, err := digestFromBytes(raw)
		if err != nil {
			return nil, errors.InvalidHexString(tokSpan, err)
		}
		return &ast.DigestPattern{Mode: ast.DigestExact, Exact: d}, nil
	default:
		return nil, errors.ExpectedPattern(p.tok.Span)
	}
}

type errShapeErr struct{ msg string }

func (e errShapeErr) Error() string { return e.msg }
