package cborpattern_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/cborpattern"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
)

func mustCBOR(t *testing.T, v any) envelope.CBOR {
	t.Helper()
	c, err := envelope.NewCBOR(v)
	qt.Assert(t, qt.IsNil(err))
	return c
}

func TestRefEngineLiteralMatch(t *testing.T) {
	var e cborpattern.RefEngine
	pat, err := e.Parse(`42`)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(e.Matches(pat, mustCBOR(t, int64(42)))))
	qt.Assert(t, qt.IsFalse(e.Matches(pat, mustCBOR(t, int64(7)))))
}

func TestRefEngineAlternation(t *testing.T) {
	var e cborpattern.RefEngine
	pat, err := e.Parse(`"bar" | "baz"`)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(e.Matches(pat, mustCBOR(t, "baz"))))
	qt.Assert(t, qt.IsFalse(e.Matches(pat, mustCBOR(t, "qux"))))
}

func TestRefEngineCapture(t *testing.T) {
	var e cborpattern.RefEngine
	pat, err := e.Parse(`@num(42)`)
	qt.Assert(t, qt.IsNil(err))

	paths, caps := e.PathsWithCaptures(pat, mustCBOR(t, int64(42)))
	qt.Assert(t, qt.HasLen(paths, 1))
	qt.Assert(t, qt.HasLen(caps["num"], 1))
	qt.Assert(t, qt.DeepEquals(pat.CollectNames(), []string{"num"}))
}

func TestRefEngineAny(t *testing.T) {
	var e cborpattern.RefEngine
	pat, err := e.Parse(`*`)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(e.Matches(pat, mustCBOR(t, "anything"))))
}
