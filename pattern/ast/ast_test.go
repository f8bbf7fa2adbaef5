package ast_test

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/ast"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/interval"
)

func TestEqualIsStructural(t *testing.T) {
	a := ast.And(ast.Number(), ast.NumberGreaterThan(mustDecimal(t, "40")))
	b := ast.And(ast.Number(), ast.NumberGreaterThan(mustDecimal(t, "40")))
	qt.Assert(t, qt.IsTrue(ast.Equal(a, b)))

	c := ast.Or(ast.TextLiteralValue("bar"), ast.TextLiteralValue("baz"))
	qt.Assert(t, qt.IsFalse(ast.Equal(a, c)))
}

func TestHashStableForEqualPatterns(t *testing.T) {
	a := ast.Capture("n", ast.NumberExactValue(mustDecimal(t, "42")))
	b := ast.Capture("n", ast.NumberExactValue(mustDecimal(t, "42")))
	qt.Assert(t, qt.Equals(ast.Hash(a), ast.Hash(b)))

	c := ast.Capture("m", ast.NumberExactValue(mustDecimal(t, "42")))
	qt.Assert(t, ast.Hash(a) != ast.Hash(c))
}

func TestAnyPatternDisplay(t *testing.T) {
	qt.Assert(t, qt.Equals(ast.Any().String(), "*"))
	qt.Assert(t, qt.IsFalse(ast.Any().IsComplex()))
}

func TestRepeatDisplayIncludesQuantifier(t *testing.T) {
	p := ast.Repeat(ast.Unwrap(), interval.Star(interval.Greedy))
	qt.Assert(t, qt.StringContains(p.String(), "{0,}"))
}

func mustDecimal(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := new(apd.Decimal).SetString(s)
	qt.Assert(t, qt.IsNil(err))
	return d
}
