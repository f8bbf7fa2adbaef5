// Package compile implements the AST→bytecode compiler (component F):
// it walks a [ast.Pattern] tree and emits a [bytecode.Program] following
// the per-shape rules of §4.4. Atomic shapes (leaf/structure predicates
// with no traversal, search, repeat, or capture beneath them) collapse
// to a single MatchPredicate referencing a compiled [bytecode.Predicate]
// (see predicate.go); everything else becomes real control flow.
package compile

import (
	"github.com/BlockchainCommons/bc-envelope-pattern-go/cborpattern"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/bytecode"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/vm"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/ast"
)

// Compile builds a standalone, immutable [bytecode.Program] for p. engine
// resolves any embedded CBOR-pattern sub-expressions reachable from p.
func Compile(p ast.Pattern, engine cborpattern.Engine) (*bytecode.Program, error) {
	c := &compiler{engine: engine, nameIndex: map[string]int{}}
	c.compile(p)
	c.emit(bytecode.Instr{Op: bytecode.Accept})
	return &bytecode.Program{
		Instrs:   c.instrs,
		Names:    c.names,
		SourceID: ast.Hash(p),
	}, nil
}

type compiler struct {
	engine    cborpattern.Engine
	instrs    []bytecode.Instr
	names     []string
	nameIndex map[string]int
}

func (c *compiler) emit(in bytecode.Instr) int {
	c.instrs = append(c.instrs, in)
	return len(c.instrs) - 1
}

func (c *compiler) captureID(name string) int {
	if id, ok := c.nameIndex[name]; ok {
		return id
	}
	id := len(c.names)
	c.names = append(c.names, name)
	c.nameIndex[name] = id
	return id
}

// mergeNames pre-registers every capture name a nested standalone
// program produces into this compiler's outer capture-name table,
// returning the sub-index → outer-index permutation §4.3/§9's
// "foreign-engine captures" note generalizes to any nested program.
func (c *compiler) mergeNames(sub *bytecode.Program) map[int]int {
	m := make(map[int]int, len(sub.Names))
	for i, name := range sub.Names {
		m[i] = c.captureID(name)
	}
	return m
}

func (c *compiler) compile(p ast.Pattern) {
	if !containsPathOps(p) {
		c.emit(bytecode.Instr{Op: bytecode.MatchPredicate, Pred: compilePredicate(p, c.engine)})
		return
	}

	switch n := p.(type) {
	case *ast.AndPattern:
		for _, sub := range n.Patterns {
			c.compile(sub)
		}

	case *ast.OrPattern:
		c.compileOr(n.Patterns)

	case *ast.NotPattern:
		sub, _ := Compile(n.Inner, c.engine)
		c.emit(bytecode.Instr{Op: bytecode.NotMatch, Sub: sub})

	case *ast.TraversePattern:
		c.compile(n.Patterns[0])
		for _, sub := range n.Patterns[1:] {
			c.emit(bytecode.Instr{Op: bytecode.ExtendTraversal})
			c.compileTraverseStep(sub)
			c.emit(bytecode.Instr{Op: bytecode.CombineTraversal})
		}

	case *ast.SearchPattern:
		sub, _ := Compile(n.Inner, c.engine)
		capMap := c.mergeNames(sub)
		op := bytecode.SearchLit
		if len(capMap) > 0 {
			op = bytecode.SearchCaptureMap
		}
		c.emit(bytecode.Instr{Op: op, Sub: sub, CaptureMap: capMap})

	case *ast.RepeatPattern:
		// A repeated body is itself a traversal step applied n times in
		// sequence (`(unwrap){2,3}` must descend two or three layers,
		// not re-test the same envelope) — compiled the same way a
		// non-first `->` operand is, so bare axis keywords navigate.
		sub := compileStep(n.Inner, c.engine)
		capMap := c.mergeNames(sub)
		c.emit(bytecode.Instr{Op: bytecode.RepeatQuantifier, Sub: sub, Quantifier: n.Quantifier, CaptureMap: capMap})

	case *ast.CborPattern:
		// Only CborEmbedded reaches here (containsPathOps excludes
		// CborExact/CborAny); pre-register the foreign pattern's named
		// captures into the outer table (§4.3 "the adapter must also
		// scan the foreign pattern's serialized form for `@name(`
		// occurrences and pre-register those names") so the outer
		// capture-name table has the right width before the VM ever
		// runs the foreign engine.
		for _, name := range n.Embedded.CollectNames() {
			c.captureID(name)
		}
		c.emit(bytecode.Instr{Op: bytecode.CborLift, Engine: c.engine, CborPat: n.Embedded})

	case *ast.CapturePattern:
		id := c.captureID(n.Name)
		c.emit(bytecode.Instr{Op: bytecode.CaptureStart, Slot: id, Name: n.Name})
		c.compile(n.Inner)
		c.emit(bytecode.Instr{Op: bytecode.CaptureEnd, Slot: id, Name: n.Name})

	case *ast.SubjectPattern:
		c.emit(bytecode.Instr{Op: bytecode.NavigateSubject})
		c.emit(bytecode.Instr{Op: bytecode.ExtendTraversal})
		c.compile(n.Inner)
		c.emit(bytecode.Instr{Op: bytecode.CombineTraversal})

	case *ast.PredicatePattern:
		c.emit(bytecode.Instr{Op: bytecode.MatchStructure, Pred: isAssertionPred})
		c.emit(bytecode.Instr{Op: bytecode.PushAxis, Axis: bytecode.AxisPredicate})
		c.emit(bytecode.Instr{Op: bytecode.ExtendTraversal})
		c.compile(n.Inner)
		c.emit(bytecode.Instr{Op: bytecode.CombineTraversal})

	case *ast.ObjectPattern:
		c.emit(bytecode.Instr{Op: bytecode.MatchStructure, Pred: isAssertionPred})
		c.emit(bytecode.Instr{Op: bytecode.PushAxis, Axis: bytecode.AxisObject})
		c.emit(bytecode.Instr{Op: bytecode.ExtendTraversal})
		c.compile(n.Inner)
		c.emit(bytecode.Instr{Op: bytecode.CombineTraversal})

	case *ast.UnwrapPattern:
		c.emit(bytecode.Instr{Op: bytecode.MatchStructure, Pred: isWrappedPred})
		c.emit(bytecode.Instr{Op: bytecode.PushAxis, Axis: bytecode.AxisUnwrap})
		c.compile(n.Inner)

	case *ast.AssertionPattern:
		// assertpred(p)/assertobj(p) qualify the current assertion
		// envelope without becoming the path's new position (§4.4
		// gives Subject/Unwrap/Predicate/Object navigating compiler
		// rules but not Assertion; a non-atomic predicate/object
		// sub-match is tested existentially against the child,
		// mirroring NotMatch's isolated re-run).
		var sub *bytecode.Program
		axis := bytecode.AxisPredicate
		if n.Mode == ast.AssertionWithPredicate {
			sub, _ = Compile(n.Predicate, c.engine)
		} else {
			axis = bytecode.AxisObject
			sub, _ = Compile(n.Object, c.engine)
		}
		c.emit(bytecode.Instr{Op: bytecode.MatchPredicate, Pred: existsPredicate(axis, sub)})

	default:
		// Unreachable: containsPathOps and this switch enumerate the
		// same set of shapes that can carry path ops.
		c.emit(bytecode.Instr{Op: bytecode.MatchPredicate, Pred: compilePredicate(p, c.engine)})
	}
}

// compileStep compiles p as a standalone program the way a non-first
// `->` operand would be (see compileTraverseStep): bare axis keywords
// navigate instead of degenerating to a no-op predicate test. Used for
// Repeat bodies, which apply their inner pattern as a sequence of
// positional steps rather than a repeated stationary test.
func compileStep(p ast.Pattern, engine cborpattern.Engine) *bytecode.Program {
	c := &compiler{engine: engine, nameIndex: map[string]int{}}
	c.compileTraverseStep(p)
	c.emit(bytecode.Instr{Op: bytecode.Accept})
	return &bytecode.Program{Instrs: c.instrs, Names: c.names, SourceID: ast.Hash(p)}
}

// compileTraverseStep compiles a pattern used as a non-first operand of
// `->`. Bare axis keywords (subject/predicate/object/unwrap/assertion
// with no inner qualifier) only reach the atomic MatchPredicate fast
// path under plain c.compile, which never moves the match position —
// correct when such a pattern is used stand-alone, but `->`'s whole
// purpose for these shapes is positional movement, so this wrapper
// forces the corresponding axis instruction for the bare forms. An
// assertion pattern with a predicate/object qualifier gets the same
// PushAxis over each assertion, followed by its c.compile test. Every
// other shape, including subject/predicate/object/unwrap WITH an inner
// qualifier, goes to c.compile unchanged: that navigates only when the
// inner pattern carries path ops, and otherwise emits one non-moving
// MatchPredicate (§4.5 axis semantics; §9 "subject navigation in
// Traverse").
func (c *compiler) compileTraverseStep(p ast.Pattern) {
	switch n := p.(type) {
	case *ast.SubjectPattern:
		if n.Mode == ast.SubjectAny {
			c.emit(bytecode.Instr{Op: bytecode.NavigateSubject})
			return
		}
	case *ast.PredicatePattern:
		if n.Mode == ast.PredicateAny {
			c.emit(bytecode.Instr{Op: bytecode.MatchStructure, Pred: isAssertionPred})
			c.emit(bytecode.Instr{Op: bytecode.PushAxis, Axis: bytecode.AxisPredicate})
			return
		}
	case *ast.ObjectPattern:
		if n.Mode == ast.ObjectAny {
			c.emit(bytecode.Instr{Op: bytecode.MatchStructure, Pred: isAssertionPred})
			c.emit(bytecode.Instr{Op: bytecode.PushAxis, Axis: bytecode.AxisObject})
			return
		}
	case *ast.UnwrapPattern:
		if n.Mode == ast.UnwrapAny {
			c.emit(bytecode.Instr{Op: bytecode.MatchStructure, Pred: isWrappedPred})
			c.emit(bytecode.Instr{Op: bytecode.PushAxis, Axis: bytecode.AxisUnwrap})
			return
		}
	case *ast.AssertionPattern:
		c.emit(bytecode.Instr{Op: bytecode.PushAxis, Axis: bytecode.AxisEachAssertion})
		if n.Mode == ast.AssertionAny {
			return
		}
		c.compile(p)
		return
	}
	c.compile(p)
}

func (c *compiler) compileOr(alts []ast.Pattern) {
	var jumps []int
	for i, alt := range alts {
		if i == len(alts)-1 {
			c.compile(alt)
			continue
		}
		splitIdx := c.emit(bytecode.Instr{Op: bytecode.Split})
		xTarget := len(c.instrs)
		c.compile(alt)
		jumps = append(jumps, c.emit(bytecode.Instr{Op: bytecode.Jump}))
		yTarget := len(c.instrs)
		c.instrs[splitIdx].X = xTarget
		c.instrs[splitIdx].Y = yTarget
	}
	end := len(c.instrs)
	for _, j := range jumps {
		c.instrs[j].X = end
	}
}

var isAssertionPred = predFunc{"assertion", func(e envelope.Envelope) bool { return e.IsAssertion() }}
var isWrappedPred = predFunc{"wrapped", func(e envelope.Envelope) bool { return e.IsWrapped() }}

// existsPredicate builds the closure backing assertpred(p)/assertobj(p):
// true iff the current envelope is an assertion whose child along axis
// yields at least one match for sub.
func existsPredicate(axis bytecode.Axis, sub *bytecode.Program) bytecode.Predicate {
	return predFunc{"assertion-exists", func(e envelope.Envelope) bool {
		if !e.IsAssertion() {
			return false
		}
		var child envelope.Envelope
		var ok bool
		if axis == bytecode.AxisPredicate {
			child, ok = e.AsPredicate()
		} else {
			child, ok = e.AsObject()
		}
		if !ok {
			return false
		}
		paths, _ := vm.Run(sub, child)
		return len(paths) > 0
	}}
}
