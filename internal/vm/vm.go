// Package vm implements the backtracking virtual machine (component G):
// it executes a [bytecode.Program] against an envelope tree, producing
// (path, captures) results (§4.5). Execution is depth-first and uses
// the Go call stack as the thread stack described by the spec — forks
// (Split, PushAxis, Search, Repeat) recurse rather than maintaining an
// explicit slice of suspended threads, since the tree being walked is
// itself recursive rather than a linear tape.
package vm

import (
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/bytecode"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pathutil"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/interval"
)

// Path mirrors §3.4: an ordered, root-first sequence of envelopes.
type Path = []envelope.Envelope

// Captures mirrors §3.4: a name may accumulate paths from more than one
// alternative or search visit.
type Captures = map[string][]Path

// Result is one thread's successful completion.
type Result struct {
	Path     Path
	Captures Captures
}

// repeatStateCap bounds the number of iteration levels Repeat will
// compute, guarding against a non-advancing body pattern (one whose
// match position never changes) looping forever; real envelope trees
// are finite and terminate long before this is reached (§4.5
// "Termination and determinism").
const repeatStateCap = 4096

// Run executes prog against start and returns every accepted path
// together with a capture table merged across all of them (§6.3
// paths_with_captures).
func Run(prog *bytecode.Program, start envelope.Envelope) ([]Path, Captures) {
	results := runProgram(prog, start)
	paths := make([]Path, len(results))
	merged := Captures{}
	for i, r := range results {
		paths[i] = r.Path
		for name, ps := range r.Captures {
			merged[name] = append(merged[name], ps...)
		}
	}
	return paths, merged
}

func runProgram(prog *bytecode.Program, start envelope.Envelope) []Result {
	var out []Result
	t := thread{
		pc:       0,
		env:      start,
		path:     Path{start},
		caps:     Captures{},
		capStart: map[int][]int{},
	}
	execute(prog, t, &out)
	return out
}

type thread struct {
	pc       int
	env      envelope.Envelope
	path     Path
	saved    []Path
	caps     Captures
	capStart map[int][]int
}

func (t thread) clone() thread {
	nt := t
	nt.path = append(Path{}, t.path...)
	nt.saved = append([]Path{}, t.saved...)
	nt.caps = mergeCaps(t.caps, nil)
	nt.capStart = make(map[int][]int, len(t.capStart))
	for k, v := range t.capStart {
		nt.capStart[k] = append([]int{}, v...)
	}
	return nt
}

func mergeCaps(a, b Captures) Captures {
	out := make(Captures, len(a)+len(b))
	for k, v := range a {
		out[k] = append(out[k], v...)
	}
	for k, v := range b {
		out[k] = append(out[k], v...)
	}
	return out
}

// execute runs t from t.pc until it halts (mismatch or Accept) or
// forks, appending every accepted (path, captures) to out. Forks
// recurse once per branch and return, so the enclosing call's stack
// frame IS the suspended thread (§4.5's "explicit stack of threads").
func execute(prog *bytecode.Program, t thread, out *[]Result) {
	for {
		if t.pc >= len(prog.Instrs) {
			return
		}
		in := prog.Instrs[t.pc]
		switch in.Op {

		case bytecode.MatchPredicate, bytecode.MatchStructure:
			if !in.Pred.Match(t.env) {
				return
			}
			t.pc++

		case bytecode.Accept:
			*out = append(*out, Result{
				Path:     append(Path{}, t.path...),
				Captures: mergeCaps(t.caps, nil),
			})
			return

		case bytecode.Save:
			*out = append(*out, Result{
				Path:     append(Path{}, t.path...),
				Captures: mergeCaps(t.caps, nil),
			})
			t.pc++

		case bytecode.Split:
			x := t.clone()
			x.pc = in.X
			execute(prog, x, out)
			y := t.clone()
			y.pc = in.Y
			execute(prog, y, out)
			return

		case bytecode.Jump:
			t.pc = in.X

		case bytecode.NavigateSubject:
			if !t.env.IsNode() {
				return
			}
			sub := t.env.Subject()
			t.env = sub
			t.path = append(t.path, sub)
			t.pc++

		case bytecode.PushAxis:
			children := axisChildren(t.env, in.Axis)
			if len(children) == 0 {
				return
			}
			for _, child := range children {
				nt := t.clone()
				nt.env = child
				nt.path = append(nt.path, child)
				nt.pc = t.pc + 1
				execute(prog, nt, out)
			}
			return

		case bytecode.ExtendTraversal:
			t.saved = append(t.saved, append(Path{}, t.path...))
			t.path = Path{t.env}
			t.pc++

		case bytecode.CombineTraversal:
			prev := t.saved[len(t.saved)-1]
			t.saved = t.saved[:len(t.saved)-1]
			combined := append(append(Path{}, prev...), t.path[1:]...)
			t.path = combined
			t.pc++

		case bytecode.NotMatch:
			subPaths, _ := Run(in.Sub, t.env)
			if len(subPaths) > 0 {
				return
			}
			t.pc++

		case bytecode.SearchLit, bytecode.SearchCaptureMap:
			raw := runSearch(in.Sub, t.env, t.path)
			for _, r := range dedupResults(raw) {
				nt := t.clone()
				nt.path = r.Path
				nt.env = r.Path[len(r.Path)-1]
				nt.caps = mergeCaps(t.caps, r.Captures)
				nt.pc = t.pc + 1
				execute(prog, nt, out)
			}
			return

		case bytecode.RepeatQuantifier, bytecode.RepeatLit:
			repeat(prog, t, in, out)
			return

		case bytecode.CborLift:
			leaf, ok := t.env.AsLeaf()
			if !ok {
				return
			}
			root := t.env
			foreignPaths, foreignCaps := in.Engine.PathsWithCaptures(in.CborPat, leaf)
			for _, fp := range foreignPaths {
				nt := t.clone()
				nt.path = append(nt.path, liftForeignTail(leaf, fp)...)
				nt.env = nt.path[len(nt.path)-1]
				nt.caps = mergeCaps(t.caps, liftForeignCaptures(root, leaf, foreignCaps))
				nt.pc = t.pc + 1
				execute(prog, nt, out)
			}
			return

		case bytecode.CaptureStart:
			t.capStart[in.Slot] = append(t.capStart[in.Slot], len(t.path)-1)
			t.pc++

		case bytecode.CaptureEnd:
			stack := t.capStart[in.Slot]
			start := stack[len(stack)-1]
			t.capStart[in.Slot] = stack[:len(stack)-1]
			span := append(Path{}, t.path[start:]...)
			t.caps[in.Name] = append(t.caps[in.Name], span)
			t.pc++

		default:
			return
		}
	}
}

func axisChildren(e envelope.Envelope, axis bytecode.Axis) []envelope.Envelope {
	switch axis {
	case bytecode.AxisSubject:
		if e.IsNode() {
			return []envelope.Envelope{e.Subject()}
		}
	case bytecode.AxisEachAssertion:
		if e.IsNode() {
			return e.Assertions()
		}
	case bytecode.AxisPredicate:
		if p, ok := e.AsPredicate(); ok {
			return []envelope.Envelope{p}
		}
	case bytecode.AxisObject:
		if o, ok := e.AsObject(); ok {
			return []envelope.Envelope{o}
		}
	case bytecode.AxisUnwrap:
		if in, ok := e.TryUnwrap(); ok {
			return []envelope.Envelope{in}
		}
	}
	return nil
}

// structuralChildren enumerates e's children in the order Search must
// visit them (§3.4, §5 "Ordering"): subject then assertions; predicate
// then object; wrapped-inner.
func structuralChildren(e envelope.Envelope) []envelope.Envelope {
	switch {
	case e.IsNode():
		children := make([]envelope.Envelope, 0, 1+len(e.Assertions()))
		children = append(children, e.Subject())
		children = append(children, e.Assertions()...)
		return children
	case e.IsAssertion():
		pred, _ := e.AsPredicate()
		obj, _ := e.AsObject()
		return []envelope.Envelope{pred, obj}
	case e.IsWrapped():
		inner, _ := e.TryUnwrap()
		return []envelope.Envelope{inner}
	default:
		return nil
	}
}

// runSearch implements the classical recursive-descent visitor (§4.5
// "Search"): at each visited node it runs sub fresh and splices the
// tail of every resulting path onto pathToHere.
func runSearch(sub *bytecode.Program, node envelope.Envelope, pathToHere Path) []Result {
	var results []Result
	for _, r := range runProgram(sub, node) {
		tail := r.Path
		if len(tail) > 0 {
			tail = tail[1:]
		}
		full := make(Path, 0, len(pathToHere)+len(tail))
		full = append(full, pathToHere...)
		full = append(full, tail...)
		results = append(results, Result{Path: full, Captures: r.Captures})
	}
	for _, child := range structuralChildren(node) {
		childPath := append(append(Path{}, pathToHere...), child)
		results = append(results, runSearch(sub, child, childPath)...)
	}
	return results
}

// liftForeignTail maps a foreign CBOR path's non-root elements into
// synthetic leaf envelopes (§4.3 "Lift": `[E] ++ map(Envelope::new,
// tail)`). fp's head is dropped when it equals root, the value the
// foreign engine was invoked on — the same splice-the-tail convention
// runSearch and repeat use when grafting a fresh sub-result onto an
// existing path.
func liftForeignTail(root envelope.CBOR, fp []envelope.CBOR) Path {
	rest := fp
	if len(rest) > 0 && rest[0].Equal(root) {
		rest = rest[1:]
	}
	tail := make(Path, len(rest))
	for i, v := range rest {
		tail[i] = envelope.NewLeaf(v)
	}
	return tail
}

// liftForeignCaptures lifts every foreign capture path into envelope
// space, each one rooted at e (the envelope whose leaf value the foreign
// engine matched against), per §4.3's capture-lifting rule.
func liftForeignCaptures(e envelope.Envelope, root envelope.CBOR, caps map[string][][]envelope.CBOR) Captures {
	if len(caps) == 0 {
		return nil
	}
	out := make(Captures, len(caps))
	for name, paths := range caps {
		for _, fp := range paths {
			lifted := append(Path{e}, liftForeignTail(root, fp)...)
			out[name] = append(out[name], lifted)
		}
	}
	return out
}

func dedupResults(rs []Result) []Result {
	seen := make(map[string]bool, len(rs))
	out := make([]Result, 0, len(rs))
	for _, r := range rs {
		k := pathutil.Key(r.Path)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

type repState struct {
	env  envelope.Envelope
	path Path
	caps Captures
}

// repeat implements §4.5 "Repeat": it expands the quantified body into
// iteration levels, then tries candidate repetition counts in
// reluctance order, committing to the first count whose continuation
// yields at least one result.
func repeat(prog *bytecode.Program, t thread, in bytecode.Instr, out *[]Result) {
	levels := [][]repState{{{env: t.env, path: Path{t.env}, caps: Captures{}}}}
	cur := levels[0]
	maxCount := in.Quantifier.Max
	for i := 1; i <= repeatStateCap; i++ {
		if maxCount != nil && uint(i) > *maxCount {
			break
		}
		var next []repState
		for _, st := range cur {
			for _, r := range runProgram(in.Sub, st.env) {
				tail := r.Path
				if len(tail) > 0 {
					tail = tail[1:]
				}
				np := make(Path, 0, len(st.path)+len(tail))
				np = append(np, st.path...)
				np = append(np, tail...)
				next = append(next, repState{
					env:  np[len(np)-1],
					path: np,
					caps: mergeCaps(st.caps, r.Captures),
				})
			}
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		cur = next
	}

	k := uint(len(levels) - 1)
	upper := k
	if maxCount != nil && *maxCount < upper {
		upper = *maxCount
	}
	min := in.Quantifier.Min
	if min > upper {
		return
	}

	for _, count := range repeatCounts(min, upper, in.Quantifier.Reluctance) {
		var contResults []Result
		for _, st := range levels[count] {
			nt := t.clone()
			nt.env = st.env
			nt.path = append(append(Path{}, t.path[:len(t.path)-1]...), st.path...)
			nt.caps = mergeCaps(t.caps, st.caps)
			nt.pc = t.pc + 1
			execute(prog, nt, &contResults)
		}
		if len(contResults) > 0 {
			*out = append(*out, contResults...)
			return
		}
	}
}

func repeatCounts(min, upper uint, r interval.Reluctance) []uint {
	switch r {
	case interval.Lazy:
		counts := make([]uint, 0, upper-min+1)
		for c := min; c <= upper; c++ {
			counts = append(counts, c)
		}
		return counts
	case interval.Possessive:
		return []uint{upper}
	default: // Greedy
		counts := make([]uint, 0, upper-min+1)
		for c := upper; ; c-- {
			counts = append(counts, c)
			if c == min {
				break
			}
		}
		return counts
	}
}
