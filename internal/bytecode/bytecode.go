// Package bytecode defines the compiled form of a pattern (component F):
// a flat instruction sequence plus the capture-name table referenced by
// it (nested patterns are carried as sub-programs on the instructions
// themselves rather than in a literal table), executed by a thread-list backtracking VM
// (internal/vm) in the manner of a Thompson/Pike regex engine (§3.3).
package bytecode

import (
	"fmt"
	"strings"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/cborpattern"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/interval"
)

// Op identifies an instruction opcode.
type Op int

const (
	// MatchPredicate tests the current envelope against a leaf/structure
	// predicate named by Pred; on failure the thread dies.
	MatchPredicate Op = iota
	// MatchStructure is executed exactly like MatchPredicate; the
	// compiler emits it for the assertion/wrapped shape test that guards
	// a following PushAxis.
	MatchStructure
	// Split forks the thread: one copy continues at X, one at Y. Used
	// for alternation; the copy at X runs first, so its results precede
	// those of the copy at Y.
	Split
	// Jump transfers control unconditionally to X.
	Jump
	// PushAxis moves the current position along Axis (subject, each
	// assertion, predicate, object, unwrap), forking one thread per
	// child. AxisTagContent yields no children, so a thread reaching a
	// PushAxis on it halts.
	PushAxis
	// NavigateSubject is the specialised PushAxis used by `->` to
	// descend into a node's subject before continuing the traversal.
	NavigateSubject
	// Save emits the current (path, captures) as a result and lets the
	// thread continue with the next instruction.
	Save
	// Accept marks a successful match of the whole program.
	Accept
	// SearchLit begins a recursive pre-order visit of the current
	// envelope and all of its descendants, running the sub-program in
	// Sub against each visited node.
	SearchLit
	// SearchCaptureMap is SearchLit for a sub-program that itself
	// contains named captures, which are merged into the outer capture
	// table by name (§3.4, §9 "foreign-engine captures").
	SearchCaptureMap
	// ExtendTraversal pushes the thread's running path onto its saved
	// stack and restarts the path at the current envelope, so the next
	// traversal step (`->`) matches relative to it.
	ExtendTraversal
	// CombineTraversal pops the saved path and splices the current path
	// onto it, dropping the shared join element.
	CombineTraversal
	// NotMatch runs the sub-program in Sub as a zero-width negative
	// lookaround: the thread survives only if Sub fails to match.
	NotMatch
	// RepeatLit is executed exactly like RepeatQuantifier, from the
	// Quantifier field; the VM does not read Min.
	RepeatLit
	// RepeatQuantifier expands a general-bound quantifier using the
	// Quantifier field, honoring its reluctance mode.
	RepeatQuantifier
	// CaptureStart opens a named capture group: it pushes the index of
	// the current path's last element onto the start stack of capture
	// slot Slot.
	CaptureStart
	// CaptureEnd pops the active-capture stack and files the span
	// recorded since the matching CaptureStart.
	CaptureEnd
	// CborLift runs an embedded foreign CBOR pattern (the `cbor(/…/)`
	// escape hatch) against the current envelope's leaf value via
	// Engine, forking a thread per lifted (path, captures) result
	// (component E, §4.3 "Lift"). Unlike MatchPredicate, a foreign match
	// can both produce more than one path and bind named captures, so it
	// cannot be collapsed into a boolean predicate test.
	CborLift
)

// Axis identifies the kind of structural step a PushAxis/NavigateSubject
// instruction takes (§4.5).
type Axis int

const (
	AxisSubject Axis = iota
	AxisEachAssertion
	AxisPredicate
	AxisObject
	AxisUnwrap
	AxisTagContent
)

// Instr is one bytecode instruction. Not all fields are meaningful for
// every Op; see the Op doc comments for which fields it reads.
type Instr struct {
	Op         Op
	X, Y       int // branch targets (absolute instruction indices)
	Pred       Predicate
	Axis       Axis
	Slot       int
	Name       string
	Quantifier interval.Quantifier
	Min        int      // literal repeat count (not read by the VM)
	Sub        *Program // nested program for NotMatch / Repeat* / Search*
	CaptureMap map[int]int
	Engine     cborpattern.Engine  // CborLift: the foreign engine to invoke
	CborPat    cborpattern.Pattern // CborLift: the embedded foreign pattern
}

// Predicate is a compiled leaf/structure test, opaque to the VM beyond
// its Match method; the compiler builds these from pattern/ast nodes.
type Predicate interface {
	Match(e envelope.Envelope) bool
	String() string
}

// Program is a compiled pattern: an instruction sequence plus the
// capture-name table referenced by CaptureStart/CaptureEnd instructions
// (§3.3). Programs are immutable once built and safe for concurrent use
// by multiple VM runs (§5).
type Program struct {
	Instrs   []Instr
	Names    []string // capture slot index -> name, in declaration order
	SourceID string   // structural hash of the originating AST (facade cache key)
}

func (p *Program) String() string {
	var b strings.Builder
	for i, in := range p.Instrs {
		fmt.Fprintf(&b, "%4d: %s\n", i, in.String())
	}
	return b.String()
}

func (in Instr) String() string {
	switch in.Op {
	case MatchPredicate:
		return fmt.Sprintf("match %s", in.Pred)
	case MatchStructure:
		return fmt.Sprintf("matchStruct %s", in.Pred)
	case Split:
		return fmt.Sprintf("split %d, %d", in.X, in.Y)
	case Jump:
		return fmt.Sprintf("jump %d", in.X)
	case PushAxis:
		return fmt.Sprintf("pushAxis %v", in.Axis)
	case NavigateSubject:
		return "navigateSubject"
	case Save:
		return fmt.Sprintf("save %d", in.Slot)
	case Accept:
		return "accept"
	case SearchLit:
		return fmt.Sprintf("search %d", in.X)
	case SearchCaptureMap:
		return fmt.Sprintf("searchCaptureMap %d", in.X)
	case ExtendTraversal:
		return "extendTraversal"
	case CombineTraversal:
		return "combineTraversal"
	case NotMatch:
		return fmt.Sprintf("not %d", in.X)
	case RepeatLit:
		return fmt.Sprintf("repeatLit %d, body=%d", in.Min, in.X)
	case RepeatQuantifier:
		return fmt.Sprintf("repeat %s, body=%d", in.Quantifier, in.X)
	case CaptureStart:
		return fmt.Sprintf("captureStart %q, slot=%d", in.Name, in.Slot)
	case CaptureEnd:
		return fmt.Sprintf("captureEnd %q, slot=%d", in.Name, in.Slot)
	case CborLift:
		return fmt.Sprintf("cborLift %s", in.CborPat)
	default:
		return "?"
	}
}
