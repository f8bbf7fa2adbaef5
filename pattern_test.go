package envelopepattern_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	envelopepattern "github.com/BlockchainCommons/bc-envelope-pattern-go"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/demo"
)

// Covers search(assertpred(...)) over the alice demo envelope and §8
// scenario 6 ((unwrap)* -> 42).

func TestSearchAssertionPredicate(t *testing.T) {
	env, ok := demo.Build("alice")
	qt.Assert(t, qt.IsTrue(ok))

	pat, err := envelopepattern.Parse(`search(assertpred("knows"))`)
	qt.Assert(t, qt.IsNil(err))

	paths, err := pat.Paths(env)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(paths, 2))
}

func TestSearchNoMatch(t *testing.T) {
	env, _ := demo.Build("alice")
	pat, err := envelopepattern.Parse(`search(assertpred("nope"))`)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(pat.Matches(env)))
}

func TestUnwrapStarToLiteral(t *testing.T) {
	env, _ := demo.Build("wrapped-secret")
	pat, err := envelopepattern.Parse(`(unwrap)*->42`)
	qt.Assert(t, qt.IsNil(err))

	paths, err := pat.Paths(env)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(paths, 1))
	qt.Assert(t, qt.HasLen(paths[0], 4)) // outer, middle, inner, leaf
}

// §8 scenario 7: cbor(/@num(42)/) against a leaf envelope lifts the
// foreign engine's capture into envelope space rather than dropping it.
func TestCborEmbeddedLiftsCapture(t *testing.T) {
	val, err := envelope.NewCBOR(int64(42))
	qt.Assert(t, qt.IsNil(err))
	env := envelope.NewLeaf(val)

	pat, err := envelopepattern.Parse(`cbor(/@num(42)/)`)
	qt.Assert(t, qt.IsNil(err))

	paths, caps, err := pat.PathsWithCaptures(env)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(paths, 1))
	qt.Assert(t, qt.HasLen(caps["num"], 1))
}

func TestCaptureNamedSpan(t *testing.T) {
	env, _ := demo.Build("credential")
	pat, err := envelopepattern.Parse(`subject(@who(text))`)
	qt.Assert(t, qt.IsNil(err))

	_, caps, err := pat.PathsWithCaptures(env)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(caps["who"], 1))
}

func TestProgramCacheReused(t *testing.T) {
	env, _ := demo.Build("alice")
	p1, err := envelopepattern.Parse(`node`)
	qt.Assert(t, qt.IsNil(err))
	p2, err := envelopepattern.Parse(`node`)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.IsTrue(p1.Matches(env)))
	qt.Assert(t, qt.IsTrue(p2.Matches(env)))
}

func TestDisplayRoundTrip(t *testing.T) {
	src := `search(assertpred("knows"))`
	pat, err := envelopepattern.Parse(src)
	qt.Assert(t, qt.IsNil(err))

	again, err := envelopepattern.Parse(pat.String())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(again.String(), pat.String()))
}
