package parser

import (
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/ast"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/errors"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/scanner"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/token"
)

// parseArrayElements handles the bracketed `[...]` form: its body is a
// foreign CBOR-pattern matching the array's element sequence, forwarded
// to the configured [cborpattern.Engine] verbatim rather than tokenized
// by this package's scanner (§4.2, §4.3).
func (p *parser) parseArrayElements() (ast.Pattern, error) {
	body, err := p.consumeDelegatedBody('[', ']')
	if err != nil {
		return nil, err
	}
	sub, err := p.cbor.Parse(body)
	if err != nil {
		return nil, err
	}
	return &ast.ArrayPattern{Mode: ast.ArrayElementsMode, Elements: sub}, nil
}

// parseMapElements handles the braced `{...}` form, analogous to
// parseArrayElements but for the map's key/value structure.
func (p *parser) parseMapElements() (ast.Pattern, error) {
	body, err := p.consumeDelegatedBody('{', '}')
	if err != nil {
		return nil, err
	}
	sub, err := p.cbor.Parse(body)
	if err != nil {
		return nil, err
	}
	return &ast.MapPattern{Mode: ast.MapKeyValueMode, KeyValue: sub}, nil
}

// consumeDelegatedBody extracts the raw source text strictly between a
// matching pair of open/close delimiters starting at the current token,
// then resumes scanning immediately after the closing delimiter. The
// bracket/brace nesting scan skips over nested string, regex, and
// quoted known-value literals so a delimiter inside one of those bodies
// is not mistaken for the end of the delegated region.
func (p *parser) consumeDelegatedBody(open, close byte) (string, error) {
	start := p.tok.Span
	openOff := start.Start.Offset
	closeOff, ok := matchDelimiter(p.src, openOff, open, close)
	if !ok {
		return "", errors.UnmatchedBraces(start)
	}
	body := p.src[openOff+1 : closeOff]
	resumeAt := closeOff + 1
	p.sc = scanner.NewAt(p.src[resumeAt:], positionAt(p.src, resumeAt))
	p.advance()
	return body, nil
}

// positionAt computes the line/column of the byte at offset in src by
// scanning the preceding text once.
func positionAt(src string, offset int) token.Position {
	line, col := 1, 0
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return token.Position{Offset: offset, Line: line, Column: col}
}

// matchDelimiter scans src starting at the open delimiter at openOff and
// returns the byte offset of its matching close delimiter, honoring
// nesting and skipping over "...", '...', and /.../ literal bodies.
func matchDelimiter(src string, openOff int, open, close byte) (int, bool) {
	depth := 0
	i := openOff
	for i < len(src) {
		c := src[i]
		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		case '"', '\'', '/':
			j := i + 1
			for j < len(src) && src[j] != c {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			i = j
		}
		i++
	}
	return 0, false
}
