package ast

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/cborpattern"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
)

func (*BoolPattern) patternNode()       {}
func (*BoolPattern) leafNode()          {}
func (*NumberPattern) patternNode()     {}
func (*NumberPattern) leafNode()        {}
func (*TextPattern) patternNode()       {}
func (*TextPattern) leafNode()          {}
func (*ByteStringPattern) patternNode() {}
func (*ByteStringPattern) leafNode()    {}
func (*DatePattern) patternNode()       {}
func (*DatePattern) leafNode()          {}
func (*KnownValuePattern) patternNode() {}
func (*KnownValuePattern) leafNode()    {}
func (*ArrayPattern) patternNode()      {}
func (*ArrayPattern) leafNode()         {}
func (*MapPattern) patternNode()        {}
func (*MapPattern) leafNode()           {}
func (*TagPattern) patternNode()        {}
func (*TagPattern) leafNode()           {}
func (*NullPattern) patternNode()       {}
func (*NullPattern) leafNode()          {}
func (*CborPattern) patternNode()       {}
func (*CborPattern) leafNode()          {}

// BoolPattern matches a CBOR boolean value.
type BoolPattern struct {
	Mode BoolMode
}

type BoolMode int

const (
	BoolAny BoolMode = iota
	BoolTrue
	BoolFalse
)

func (p *BoolPattern) IsComplex() bool { return false }
func (p *BoolPattern) String() string {
	switch p.Mode {
	case BoolTrue:
		return "true"
	case BoolFalse:
		return "false"
	default:
		return "bool"
	}
}

// NumberPattern matches a CBOR numeric value.
type NumberPattern struct {
	Mode  NumberMode
	Exact *apd.Decimal
	Bound *apd.Decimal // used by GT/GE/LT/LE and as the lower bound of a range
	Upper *apd.Decimal // upper bound of a range
}

type NumberMode int

const (
	NumberAny NumberMode = iota
	NumberExact
	NumberRange
	NumberGT
	NumberGE
	NumberLT
	NumberLE
	NumberNaN
	NumberInfinity
)

func (p *NumberPattern) IsComplex() bool { return false }
func (p *NumberPattern) String() string {
	switch p.Mode {
	case NumberExact:
		return p.Exact.String()
	case NumberRange:
		return fmt.Sprintf("%s...%s", p.Bound, p.Upper)
	case NumberGT:
		return ">" + p.Bound.String()
	case NumberGE:
		return ">=" + p.Bound.String()
	case NumberLT:
		return "<" + p.Bound.String()
	case NumberLE:
		return "<=" + p.Bound.String()
	case NumberNaN:
		return "NaN"
	case NumberInfinity:
		return "Infinity"
	default:
		return "number"
	}
}

// TextPattern matches a CBOR text-string value.
type TextPattern struct {
	Mode     TextMode
	Literal  string
	RegexSrc string
	Regex    *regexp.Regexp
}

type TextMode int

const (
	TextAny TextMode = iota
	TextLiteral
	TextRegex
)

func (p *TextPattern) IsComplex() bool { return false }
func (p *TextPattern) String() string {
	switch p.Mode {
	case TextLiteral:
		return strconv.Quote(p.Literal)
	case TextRegex:
		return "/" + p.RegexSrc + "/"
	default:
		return "text"
	}
}

// ByteStringPattern matches a CBOR byte-string value.
type ByteStringPattern struct {
	Mode     BytesMode
	Literal  []byte
	RegexSrc string
	Regex    *regexp.Regexp
}

type BytesMode int

const (
	BytesAny BytesMode = iota
	BytesLiteral
	BytesRegex
)

func (p *ByteStringPattern) IsComplex() bool { return false }
func (p *ByteStringPattern) String() string {
	switch p.Mode {
	case BytesLiteral:
		return fmt.Sprintf("h'%x'", p.Literal)
	case BytesRegex:
		return fmt.Sprintf("h'/%s/'", p.RegexSrc)
	default:
		return "bstr"
	}
}

// DatePattern matches a date carried as a CBOR text leaf in ISO-8601 form.
type DatePattern struct {
	Mode     DateMode
	Value    time.Time
	Earliest time.Time
	Latest   time.Time
	ISO      string
	RegexSrc string
	Regex    *regexp.Regexp
}

type DateMode int

const (
	DateAny DateMode = iota
	DateValue
	DateRange
	DateEarliest
	DateLatest
	DateISOString
	DateRegex
)

func (p *DatePattern) IsComplex() bool { return false }
func (p *DatePattern) String() string {
	iso := func(t time.Time) string { return t.UTC().Format("2006-01-02") }
	switch p.Mode {
	case DateValue:
		return "date'" + iso(p.Value) + "'"
	case DateRange:
		return "date'" + iso(p.Earliest) + "..." + iso(p.Latest) + "'"
	case DateEarliest:
		return "date'" + iso(p.Earliest) + "...'"
	case DateLatest:
		return "date'..." + iso(p.Latest) + "'"
	case DateISOString:
		return "date'" + p.ISO + "'"
	case DateRegex:
		return "date'/" + p.RegexSrc + "/'"
	default:
		return "date"
	}
}

// KnownValuePattern matches an envelope known-value leaf.
type KnownValuePattern struct {
	Mode     KnownMode
	Value    uint64
	Name     string
	RegexSrc string
	Regex    *regexp.Regexp
}

type KnownMode int

const (
	KnownAny KnownMode = iota
	KnownValueMode
	KnownName
	KnownNameRegex
)

func (p *KnownValuePattern) IsComplex() bool { return false }
func (p *KnownValuePattern) String() string {
	switch p.Mode {
	case KnownValueMode:
		return fmt.Sprintf("known(%d)", p.Value)
	case KnownName:
		return "'" + p.Name + "'"
	case KnownNameRegex:
		return "known(/" + p.RegexSrc + "/)"
	default:
		return "known"
	}
}

// ArrayPattern matches a CBOR array value. Elements, when present, is a
// foreign CBOR-pattern matching the array's element sequence (§4.2: the
// bracketed body is delegated to the CBOR-pattern sub-language).
type ArrayPattern struct {
	Mode     ArrayMode
	Min, Max *uint
	Elements cborpattern.Pattern
}

type ArrayMode int

const (
	ArrayAny ArrayMode = iota
	ArrayLengthRange
	ArrayElementsMode
)

func (p *ArrayPattern) IsComplex() bool { return false }
func (p *ArrayPattern) String() string {
	switch p.Mode {
	case ArrayLengthRange:
		return fmt.Sprintf("array(%s)", lengthRangeString(p.Min, p.Max))
	case ArrayElementsMode:
		return fmt.Sprintf("[%s]", p.Elements.String())
	default:
		return "array"
	}
}

func lengthRangeString(min, max *uint) string {
	switch {
	case max != nil && min != nil && *min == *max:
		return fmt.Sprintf("%d", *min)
	case max == nil && min != nil:
		return fmt.Sprintf("%d,", *min)
	case min != nil && max != nil:
		return fmt.Sprintf("%d,%d", *min, *max)
	default:
		return ""
	}
}

// MapPattern matches a CBOR map value. KeyValue, when present, is a
// foreign CBOR-pattern matching the map's key/value structure.
type MapPattern struct {
	Mode     MapModeKind
	Min, Max *uint
	KeyValue cborpattern.Pattern
}

type MapModeKind int

const (
	MapAny MapModeKind = iota
	MapSizeRange
	MapKeyValueMode
)

func (p *MapPattern) IsComplex() bool { return false }
func (p *MapPattern) String() string {
	switch p.Mode {
	case MapSizeRange:
		return fmt.Sprintf("map(%s)", lengthRangeString(p.Min, p.Max))
	case MapKeyValueMode:
		return fmt.Sprintf("{%s}", p.KeyValue.String())
	default:
		return "map"
	}
}

// TagPattern matches a CBOR tagged value. Inner, when present, matches
// the tag's content as a nested leaf pattern.
type TagPattern struct {
	Mode     TagMode
	Value    uint64
	Name     string
	RegexSrc string
	Regex    *regexp.Regexp
	Inner    Pattern
}

type TagMode int

const (
	TagAny TagMode = iota
	TagValue
	TagName
	TagNameRegex
)

func (p *TagPattern) IsComplex() bool { return false }
func (p *TagPattern) String() string {
	var head string
	switch p.Mode {
	case TagValue:
		head = fmt.Sprintf("tagged(%d", p.Value)
	case TagName:
		head = fmt.Sprintf("tagged(%q", p.Name)
	case TagNameRegex:
		head = fmt.Sprintf("tagged(/%s/", p.RegexSrc)
	default:
		return "tagged"
	}
	if p.Inner != nil {
		return head + ", " + p.Inner.String() + ")"
	}
	return head + ")"
}

// NullPattern matches a CBOR null value.
type NullPattern struct{}

func (p *NullPattern) IsComplex() bool { return false }
func (p *NullPattern) String() string  { return "null" }

// CborPattern matches the raw CBOR value via the embedded foreign
// CBOR-pattern sub-language, or a Go-value exact match, or any CBOR
// value at all (§3.1, §4.3).
type CborPattern struct {
	Mode     CborMode
	Exact    envelope.CBOR
	Embedded cborpattern.Pattern
}

type CborMode int

const (
	CborAny CborMode = iota
	CborExact
	CborEmbedded
)

func (p *CborPattern) IsComplex() bool { return false }
func (p *CborPattern) String() string {
	switch p.Mode {
	case CborExact:
		return fmt.Sprintf("cbor(%s)", p.Exact)
	case CborEmbedded:
		return fmt.Sprintf("cbor(/%s/)", p.Embedded.String())
	default:
		return "cbor"
	}
}
