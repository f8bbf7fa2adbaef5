package compile_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/cborpattern"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/compile"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/demo"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/vm"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/parser"
)

// Exercises §8 scenario 6 directly against the compiler+VM (pattern_test.go
// covers the same scenario through the public façade).
func TestCompileUnwrapStarToLiteral(t *testing.T) {
	p, err := parser.Parse(`(unwrap)*->42`, nil)
	qt.Assert(t, qt.IsNil(err))

	prog, err := compile.Compile(p, nil)
	qt.Assert(t, qt.IsNil(err))

	env, ok := demo.Build("wrapped-secret")
	qt.Assert(t, qt.IsTrue(ok))

	paths, _ := vm.Run(prog, env)
	qt.Assert(t, qt.HasLen(paths, 1))
	qt.Assert(t, qt.HasLen(paths[0], 4))
}

// §8 scenario 5: search(text) over the alice demo envelope.
func TestCompileSearchText(t *testing.T) {
	p, err := parser.Parse(`search(text)`, nil)
	qt.Assert(t, qt.IsNil(err))
	prog, err := compile.Compile(p, nil)
	qt.Assert(t, qt.IsNil(err))

	env, ok := demo.Build("alice")
	qt.Assert(t, qt.IsTrue(ok))

	paths, _ := vm.Run(prog, env)
	// "Alice", "knows", "Bob", "knows", "Carol", "age" — six text leaves.
	qt.Assert(t, qt.HasLen(paths, 6))
}

// §8 invariant 5: matches(!p, E) == !matches(p, E).
func TestCompileNegation(t *testing.T) {
	env, ok := demo.Build("alice")
	qt.Assert(t, qt.IsTrue(ok))

	pPat, err := parser.Parse(`node`, nil)
	qt.Assert(t, qt.IsNil(err))
	notPat, err := parser.Parse(`!node`, nil)
	qt.Assert(t, qt.IsNil(err))

	pProg, err := compile.Compile(pPat, nil)
	qt.Assert(t, qt.IsNil(err))
	notProg, err := compile.Compile(notPat, nil)
	qt.Assert(t, qt.IsNil(err))

	pPaths, _ := vm.Run(pProg, env)
	notPaths, _ := vm.Run(notProg, env)
	qt.Assert(t, qt.IsTrue(len(pPaths) > 0))
	qt.Assert(t, qt.HasLen(notPaths, 0))
}

// §8 scenario 7: cbor(/@num(42)/) against E(42) yields one path [E] and
// lifts the foreign capture `num` to [[E]] rather than dropping it.
func TestCompileCborLiftsCapture(t *testing.T) {
	engine := cborpattern.RefEngine{}
	p, err := parser.Parse(`cbor(/@num(42)/)`, engine)
	qt.Assert(t, qt.IsNil(err))

	prog, err := compile.Compile(p, engine)
	qt.Assert(t, qt.IsNil(err))

	val, err := envelope.NewCBOR(int64(42))
	qt.Assert(t, qt.IsNil(err))
	env := envelope.NewLeaf(val)

	paths, caps := vm.Run(prog, env)
	qt.Assert(t, qt.HasLen(paths, 1))
	qt.Assert(t, qt.HasLen(paths[0], 1))

	numPaths, ok := caps["num"]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(numPaths, 1))
	qt.Assert(t, qt.HasLen(numPaths[0], 1))
	qt.Assert(t, qt.Equals(numPaths[0][0].Digest().String(), env.Digest().String()))
}

// A cbor(/…/) pattern that fails to match must contribute no path and no
// capture (§3.4 "If a pattern emits no paths, it contributes no
// captures").
func TestCompileCborLiftNoMatchNoCapture(t *testing.T) {
	engine := cborpattern.RefEngine{}
	p, err := parser.Parse(`cbor(/@num(42)/)`, engine)
	qt.Assert(t, qt.IsNil(err))

	prog, err := compile.Compile(p, engine)
	qt.Assert(t, qt.IsNil(err))

	val, err := envelope.NewCBOR(int64(7))
	qt.Assert(t, qt.IsNil(err))
	env := envelope.NewLeaf(val)

	paths, caps := vm.Run(prog, env)
	qt.Assert(t, qt.HasLen(paths, 0))
	qt.Assert(t, qt.HasLen(caps, 0))
}

// §8 invariant 7: paths(*, E) == [[E]]; paths(!*, E) == [].
func TestCompileAnyNone(t *testing.T) {
	env, ok := demo.Build("alice")
	qt.Assert(t, qt.IsTrue(ok))

	anyPat, err := parser.Parse(`*`, nil)
	qt.Assert(t, qt.IsNil(err))
	anyProg, err := compile.Compile(anyPat, nil)
	qt.Assert(t, qt.IsNil(err))
	anyPaths, _ := vm.Run(anyProg, env)
	qt.Assert(t, qt.HasLen(anyPaths, 1))
	qt.Assert(t, qt.HasLen(anyPaths[0], 1))

	nonePat, err := parser.Parse(`!*`, nil)
	qt.Assert(t, qt.IsNil(err))
	noneProg, err := compile.Compile(nonePat, nil)
	qt.Assert(t, qt.IsNil(err))
	nonePaths, _ := vm.Run(noneProg, env)
	qt.Assert(t, qt.HasLen(nonePaths, 0))
}
