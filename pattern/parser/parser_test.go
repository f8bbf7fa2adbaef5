package parser_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/ast"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/parser"
)

func mustParse(t *testing.T, src string) ast.Pattern {
	t.Helper()
	p, err := parser.Parse(src, nil)
	qt.Assert(t, qt.IsNil(err))
	return p
}

func TestParseEmptyInputErrors(t *testing.T) {
	_, err := parser.Parse("   ", nil)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestParseAndOr(t *testing.T) {
	p := mustParse(t, `number & >40`)
	_, ok := p.(*ast.AndPattern)
	qt.Assert(t, qt.IsTrue(ok))

	p2 := mustParse(t, `"bar" | "baz"`)
	_, ok = p2.(*ast.OrPattern)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestParseCapture(t *testing.T) {
	p := mustParse(t, `@n(42)`)
	cap, ok := p.(*ast.CapturePattern)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(cap.Name, "n"))
}

func TestParseSearchAssertpred(t *testing.T) {
	p := mustParse(t, `search(assertpred("knows"))`)
	_, ok := p.(*ast.SearchPattern)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestParseTraverseRepeatUnwrap(t *testing.T) {
	p := mustParse(t, `(unwrap)*->42`)
	_, ok := p.(*ast.TraversePattern)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestDisplayRoundTrip(t *testing.T) {
	srcs := []string{
		`*`,
		`number & >40`,
		`"bar" | "baz"`,
		`@n(42)`,
		`search(assertpred("knows"))`,
		`(unwrap)*->42`,
	}
	for _, src := range srcs {
		p := mustParse(t, src)
		again, err := parser.Parse(p.String(), nil)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(again.String(), p.String()))
	}
}
