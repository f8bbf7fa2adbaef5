package ast

import (
	"fmt"
	"regexp"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
)

func (*StructLeafPattern) patternNode()   {}
func (*StructLeafPattern) structureNode() {}
func (*NodePattern) patternNode()         {}
func (*NodePattern) structureNode()       {}
func (*SubjectPattern) patternNode()      {}
func (*SubjectPattern) structureNode()    {}
func (*PredicatePattern) patternNode()    {}
func (*PredicatePattern) structureNode()  {}
func (*ObjectPattern) patternNode()       {}
func (*ObjectPattern) structureNode()     {}
func (*AssertionPattern) patternNode()    {}
func (*AssertionPattern) structureNode()  {}
func (*WrappedPattern) patternNode()      {}
func (*WrappedPattern) structureNode()    {}
func (*UnwrapPattern) patternNode()       {}
func (*UnwrapPattern) structureNode()     {}
func (*DigestPattern) patternNode()       {}
func (*DigestPattern) structureNode()     {}
func (*ObscuredPattern) patternNode()     {}
func (*ObscuredPattern) structureNode()   {}

// StructLeafPattern matches an envelope that is terminal: a CBOR leaf or
// a known value (the `leaf` keyword; named to avoid colliding with the
// [LeafPattern] category).
type StructLeafPattern struct{}

func (p *StructLeafPattern) IsComplex() bool { return false }
func (p *StructLeafPattern) String() string  { return "leaf" }

// NodePattern matches a node envelope, optionally constraining its
// assertion count.
type NodePattern struct {
	Mode     NodeMode
	Min, Max *uint
}

type NodeMode int

const (
	NodeAny NodeMode = iota
	NodeAssertionCount
)

func (p *NodePattern) IsComplex() bool { return false }
func (p *NodePattern) String() string {
	if p.Mode == NodeAssertionCount {
		return fmt.Sprintf("node(%s)", lengthRangeString(p.Min, p.Max))
	}
	return "node"
}

// SubjectPattern matches a node's subject, optionally requiring the
// subject itself to match an inner pattern.
type SubjectPattern struct {
	Mode  SubjectMode
	Inner Pattern
}

type SubjectMode int

const (
	SubjectAny SubjectMode = iota
	SubjectInner
)

func (p *SubjectPattern) IsComplex() bool { return p.Mode == SubjectInner }
func (p *SubjectPattern) String() string {
	if p.Mode == SubjectInner {
		return fmt.Sprintf("subject(%s)", p.Inner.String())
	}
	return "subject"
}

// PredicatePattern matches an assertion's predicate position, optionally
// requiring the predicate envelope itself to match an inner pattern.
type PredicatePattern struct {
	Mode  PredicateMode
	Inner Pattern
}

type PredicateMode int

const (
	PredicateAny PredicateMode = iota
	PredicateInner
)

func (p *PredicatePattern) IsComplex() bool { return p.Mode == PredicateInner }
func (p *PredicatePattern) String() string {
	if p.Mode == PredicateInner {
		return fmt.Sprintf("predicate(%s)", p.Inner.String())
	}
	return "predicate"
}

// ObjectPattern matches an assertion's object position, optionally
// requiring the object envelope itself to match an inner pattern.
type ObjectPattern struct {
	Mode  ObjectMode
	Inner Pattern
}

type ObjectMode int

const (
	ObjectAny ObjectMode = iota
	ObjectInner
)

func (p *ObjectPattern) IsComplex() bool { return p.Mode == ObjectInner }
func (p *ObjectPattern) String() string {
	if p.Mode == ObjectInner {
		return fmt.Sprintf("object(%s)", p.Inner.String())
	}
	return "object"
}

// AssertionPattern matches an assertion envelope, optionally requiring
// its predicate and/or object to match an inner pattern.
type AssertionPattern struct {
	Mode      AssertionMode
	Predicate Pattern
	Object    Pattern
}

type AssertionMode int

const (
	AssertionAny AssertionMode = iota
	AssertionWithPredicate
	AssertionWithObject
)

func (p *AssertionPattern) IsComplex() bool { return p.Mode != AssertionAny }
func (p *AssertionPattern) String() string {
	switch p.Mode {
	case AssertionWithPredicate:
		return fmt.Sprintf("assertpred(%s)", p.Predicate.String())
	case AssertionWithObject:
		return fmt.Sprintf("assertobj(%s)", p.Object.String())
	default:
		return "assertion"
	}
}

// WrappedPattern matches a wrapped envelope (without inspecting its
// inner envelope).
type WrappedPattern struct{}

func (p *WrappedPattern) IsComplex() bool { return false }
func (p *WrappedPattern) String() string  { return "wrapped" }

// UnwrapPattern matches a wrapped envelope and continues matching
// against its inner envelope.
type UnwrapPattern struct {
	Mode  UnwrapMode
	Inner Pattern
}

type UnwrapMode int

const (
	UnwrapAny UnwrapMode = iota
	UnwrapInner
)

func (p *UnwrapPattern) IsComplex() bool { return p.Mode == UnwrapInner }
func (p *UnwrapPattern) String() string {
	if p.Mode == UnwrapInner {
		return fmt.Sprintf("unwrap(%s)", p.Inner.String())
	}
	return "unwrap"
}

// DigestPattern matches an envelope by its content digest.
type DigestPattern struct {
	Mode     DigestMode
	Exact    envelope.Digest
	Prefix   []byte
	RegexSrc string
	Regex    *regexp.Regexp
}

type DigestMode int

const (
	DigestExact DigestMode = iota
	DigestPrefixMode
	DigestRegexMode
)

func (p *DigestPattern) IsComplex() bool { return false }
func (p *DigestPattern) String() string {
	switch p.Mode {
	case DigestPrefixMode:
		return fmt.Sprintf("digest(h'%x')", p.Prefix)
	case DigestRegexMode:
		return fmt.Sprintf("digest(h'/%s/')", p.RegexSrc)
	default:
		return fmt.Sprintf("digest(h'%s')", p.Exact.Encoded())
	}
}

// ObscuredPattern matches an envelope that has been elided, encrypted,
// or compressed, or any obscured form at all.
type ObscuredPattern struct {
	Mode ObscuredMode
}

type ObscuredMode int

const (
	ObscuredAny ObscuredMode = iota
	ObscuredElided
	ObscuredEncrypted
	ObscuredCompressed
)

func (p *ObscuredPattern) IsComplex() bool { return false }
func (p *ObscuredPattern) String() string {
	switch p.Mode {
	case ObscuredElided:
		return "elided"
	case ObscuredEncrypted:
		return "encrypted"
	case ObscuredCompressed:
		return "compressed"
	default:
		return "obscured"
	}
}
