package ast

import (
	"strings"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/interval"
)

func (*AnyPattern) patternNode()      {}
func (*AnyPattern) metaNode()         {}
func (*NonePattern) patternNode()     {}
func (*NonePattern) metaNode()        {}
func (*AndPattern) patternNode()      {}
func (*AndPattern) metaNode()         {}
func (*OrPattern) patternNode()       {}
func (*OrPattern) metaNode()          {}
func (*NotPattern) patternNode()      {}
func (*NotPattern) metaNode()         {}
func (*TraversePattern) patternNode() {}
func (*TraversePattern) metaNode()    {}
func (*SearchPattern) patternNode()   {}
func (*SearchPattern) metaNode()      {}
func (*RepeatPattern) patternNode()   {}
func (*RepeatPattern) metaNode()      {}
func (*CapturePattern) patternNode()  {}
func (*CapturePattern) metaNode()     {}

// AnyPattern matches any single envelope.
type AnyPattern struct{}

func (p *AnyPattern) IsComplex() bool { return false }
func (p *AnyPattern) String() string  { return "*" }

// NonePattern matches nothing.
type NonePattern struct{}

func (p *NonePattern) IsComplex() bool { return false }
func (p *NonePattern) String() string  { return "!*" }

// AndPattern requires every sub-pattern to match (intersection, `&`).
type AndPattern struct {
	Patterns []Pattern
}

func (p *AndPattern) IsComplex() bool { return true }
func (p *AndPattern) String() string  { return joinOperands(p.Patterns, " & ") }

// OrPattern requires at least one sub-pattern to match (alternation, `|`).
type OrPattern struct {
	Patterns []Pattern
}

func (p *OrPattern) IsComplex() bool { return true }
func (p *OrPattern) String() string  { return joinOperands(p.Patterns, " | ") }

func joinOperands(ps []Pattern, sep string) string {
	parts := make([]string, len(ps))
	for i, sub := range ps {
		parts[i] = group(sub.String(), sub.IsComplex())
	}
	return strings.Join(parts, sep)
}

// NotPattern negates an inner pattern.
type NotPattern struct {
	Inner Pattern
}

func (p *NotPattern) IsComplex() bool { return false }
func (p *NotPattern) String() string  { return "!" + group(p.Inner.String(), p.Inner.IsComplex()) }

// TraversePattern walks the results of each pattern into the next
// (`->`).
type TraversePattern struct {
	Patterns []Pattern
}

func (p *TraversePattern) IsComplex() bool { return true }
func (p *TraversePattern) String() string  { return joinOperands(p.Patterns, " -> ") }

// SearchPattern recursively visits the current envelope and all of its
// descendants, running the inner pattern at each one.
type SearchPattern struct {
	Inner Pattern
}

func (p *SearchPattern) IsComplex() bool { return false }
func (p *SearchPattern) String() string  { return "search(" + p.Inner.String() + ")" }

// RepeatPattern applies a quantifier to an inner pattern.
type RepeatPattern struct {
	Inner      Pattern
	Quantifier interval.Quantifier
}

func (p *RepeatPattern) IsComplex() bool { return false }
func (p *RepeatPattern) String() string {
	return group(p.Inner.String(), p.Inner.IsComplex()) + p.Quantifier.String()
}

// CapturePattern names the paths matched by an inner pattern.
type CapturePattern struct {
	Name  string
	Inner Pattern
}

func (p *CapturePattern) IsComplex() bool { return false }
func (p *CapturePattern) String() string  { return "@" + p.Name + "(" + p.Inner.String() + ")" }
