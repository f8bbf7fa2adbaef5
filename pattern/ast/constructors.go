package ast

import (
	"regexp"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/cborpattern"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/interval"
)

// Constructor functions for every pattern shape (§6.3), for programmatic
// clients that want to build a [Pattern] tree without going through the
// parser. The parser builds the exact same node types.

// Meta constructors.

func Any() Pattern  { return &AnyPattern{} }
func None() Pattern { return &NonePattern{} }

func And(patterns ...Pattern) Pattern { return &AndPattern{Patterns: patterns} }
func Or(patterns ...Pattern) Pattern  { return &OrPattern{Patterns: patterns} }
func Not(inner Pattern) Pattern       { return &NotPattern{Inner: inner} }

func Traverse(patterns ...Pattern) Pattern { return &TraversePattern{Patterns: patterns} }
func Search(inner Pattern) Pattern         { return &SearchPattern{Inner: inner} }
func Repeat(inner Pattern, q interval.Quantifier) Pattern {
	return &RepeatPattern{Inner: inner, Quantifier: q}
}
func Capture(name string, inner Pattern) Pattern {
	return &CapturePattern{Name: name, Inner: inner}
}

// Leaf constructors.

func Bool() Pattern      { return &BoolPattern{Mode: BoolAny} }
func BoolValue(b bool) Pattern {
	if b {
		return &BoolPattern{Mode: BoolTrue}
	}
	return &BoolPattern{Mode: BoolFalse}
}

func Number() Pattern                         { return &NumberPattern{Mode: NumberAny} }
func NumberExactValue(v *apd.Decimal) Pattern { return &NumberPattern{Mode: NumberExact, Exact: v} }
func NumberRangeValue(lo, hi *apd.Decimal) Pattern {
	return &NumberPattern{Mode: NumberRange, Bound: lo, Upper: hi}
}
func NumberGreaterThan(v *apd.Decimal) Pattern { return &NumberPattern{Mode: NumberGT, Bound: v} }
func NumberGreaterEqual(v *apd.Decimal) Pattern { return &NumberPattern{Mode: NumberGE, Bound: v} }
func NumberLessThan(v *apd.Decimal) Pattern    { return &NumberPattern{Mode: NumberLT, Bound: v} }
func NumberLessEqual(v *apd.Decimal) Pattern   { return &NumberPattern{Mode: NumberLE, Bound: v} }
func NumberNaN() Pattern                      { return &NumberPattern{Mode: NumberNaN} }
func NumberInfinity() Pattern                 { return &NumberPattern{Mode: NumberInfinity} }

func Text() Pattern                    { return &TextPattern{Mode: TextAny} }
func TextLiteralValue(s string) Pattern { return &TextPattern{Mode: TextLiteral, Literal: s} }
func TextRegexValue(src string, re *regexp.Regexp) Pattern {
	return &TextPattern{Mode: TextRegex, RegexSrc: src, Regex: re}
}

func Bytes() Pattern                      { return &ByteStringPattern{Mode: BytesAny} }
func BytesLiteralValue(b []byte) Pattern  { return &ByteStringPattern{Mode: BytesLiteral, Literal: b} }
func BytesRegexValue(src string, re *regexp.Regexp) Pattern {
	return &ByteStringPattern{Mode: BytesRegex, RegexSrc: src, Regex: re}
}

func Date() Pattern { return &DatePattern{Mode: DateAny} }
func DateValueAt(t time.Time) Pattern { return &DatePattern{Mode: DateValue, Value: t} }
func DateRangeBetween(earliest, latest time.Time) Pattern {
	return &DatePattern{Mode: DateRange, Earliest: earliest, Latest: latest}
}
func DateOnOrAfter(earliest time.Time) Pattern {
	return &DatePattern{Mode: DateEarliest, Earliest: earliest}
}
func DateOnOrBefore(latest time.Time) Pattern {
	return &DatePattern{Mode: DateLatest, Latest: latest}
}
func DateISO(s string) Pattern { return &DatePattern{Mode: DateISOString, ISO: s} }
func DateRegexValue(src string, re *regexp.Regexp) Pattern {
	return &DatePattern{Mode: DateRegex, RegexSrc: src, Regex: re}
}

func Known() Pattern                    { return &KnownValuePattern{Mode: KnownAny} }
func KnownValueOf(v uint64) Pattern     { return &KnownValuePattern{Mode: KnownValueMode, Value: v} }
func KnownNamed(name string) Pattern    { return &KnownValuePattern{Mode: KnownName, Name: name} }
func KnownNameRegexValue(src string, re *regexp.Regexp) Pattern {
	return &KnownValuePattern{Mode: KnownNameRegex, RegexSrc: src, Regex: re}
}

func Array() Pattern { return &ArrayPattern{Mode: ArrayAny} }
func ArrayLength(min, max *uint) Pattern {
	return &ArrayPattern{Mode: ArrayLengthRange, Min: min, Max: max}
}
func ArrayElements(p cborpattern.Pattern) Pattern {
	return &ArrayPattern{Mode: ArrayElementsMode, Elements: p}
}

func Map() Pattern { return &MapPattern{Mode: MapAny} }
func MapSize(min, max *uint) Pattern {
	return &MapPattern{Mode: MapSizeRange, Min: min, Max: max}
}
func MapKeyValue(p cborpattern.Pattern) Pattern {
	return &MapPattern{Mode: MapKeyValueMode, KeyValue: p}
}

func Tag() Pattern { return &TagPattern{Mode: TagAny} }
func TaggedValue(v uint64, inner Pattern) Pattern {
	return &TagPattern{Mode: TagValue, Value: v, Inner: inner}
}
func TaggedName(name string, inner Pattern) Pattern {
	return &TagPattern{Mode: TagName, Name: name, Inner: inner}
}
func TaggedNameRegex(src string, re *regexp.Regexp, inner Pattern) Pattern {
	return &TagPattern{Mode: TagNameRegex, RegexSrc: src, Regex: re, Inner: inner}
}

func Null() Pattern { return &NullPattern{} }

func Cbor() Pattern { return &CborPattern{Mode: CborAny} }
func CborExactValue(v envelope.CBOR) Pattern { return &CborPattern{Mode: CborExact, Exact: v} }
func CborEmbeddedValue(p cborpattern.Pattern) Pattern {
	return &CborPattern{Mode: CborEmbedded, Embedded: p}
}

// Structure constructors.

func Leaf() Pattern { return &StructLeafPattern{} }

func Node() Pattern { return &NodePattern{Mode: NodeAny} }
func NodeAssertionCountRange(min, max *uint) Pattern {
	return &NodePattern{Mode: NodeAssertionCount, Min: min, Max: max}
}

func Subject() Pattern                  { return &SubjectPattern{Mode: SubjectAny} }
func SubjectMatching(inner Pattern) Pattern { return &SubjectPattern{Mode: SubjectInner, Inner: inner} }

func Predicate() Pattern { return &PredicatePattern{Mode: PredicateAny} }
func PredicateMatching(inner Pattern) Pattern {
	return &PredicatePattern{Mode: PredicateInner, Inner: inner}
}

func Object() Pattern { return &ObjectPattern{Mode: ObjectAny} }
func ObjectMatching(inner Pattern) Pattern {
	return &ObjectPattern{Mode: ObjectInner, Inner: inner}
}

func Assertion() Pattern { return &AssertionPattern{Mode: AssertionAny} }
func AssertionWithPredicateMatching(inner Pattern) Pattern {
	return &AssertionPattern{Mode: AssertionWithPredicate, Predicate: inner}
}
func AssertionWithObjectMatching(inner Pattern) Pattern {
	return &AssertionPattern{Mode: AssertionWithObject, Object: inner}
}

func Wrapped() Pattern { return &WrappedPattern{} }

func Unwrap() Pattern { return &UnwrapPattern{Mode: UnwrapAny} }
func UnwrapMatching(inner Pattern) Pattern { return &UnwrapPattern{Mode: UnwrapInner, Inner: inner} }

func Digest(exact envelope.Digest) Pattern { return &DigestPattern{Mode: DigestExact, Exact: exact} }
func DigestPrefix(prefix []byte) Pattern {
	return &DigestPattern{Mode: DigestPrefixMode, Prefix: prefix}
}
func DigestRegexValue(src string, re *regexp.Regexp) Pattern {
	return &DigestPattern{Mode: DigestRegexMode, RegexSrc: src, Regex: re}
}

func Obscured() Pattern  { return &ObscuredPattern{Mode: ObscuredAny} }
func Elided() Pattern    { return &ObscuredPattern{Mode: ObscuredElided} }
func Encrypted() Pattern { return &ObscuredPattern{Mode: ObscuredEncrypted} }
func Compressed() Pattern { return &ObscuredPattern{Mode: ObscuredCompressed} }
