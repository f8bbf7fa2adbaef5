package pathutil_test

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"github.com/kr/pretty"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/demo"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pathutil"
)

// envelope.Envelope has no exported fields for cmp to walk, so digest
// equality is what distinguishes paths; this Comparer lets cmp.Diff
// render a readable mismatch instead of panicking on the interface.
var digestComparer = cmp.Comparer(func(a, b envelope.Envelope) bool {
	return a.Digest().String() == b.Digest().String()
})

func TestDedupRemovesDuplicatePaths(t *testing.T) {
	env, ok := demo.Build("alice")
	qt.Assert(t, qt.IsTrue(ok))

	subj := env.Subject()
	paths := [][]envelope.Envelope{
		{env, subj},
		{env, subj}, // duplicate: same digest sequence
		{env},
	}

	got := pathutil.Dedup(paths)
	want := [][]envelope.Envelope{{env, subj}, {env}}

	if diff := cmp.Diff(want, got, digestComparer); diff != "" {
		t.Fatalf("Dedup mismatch (-want +got):\n%s\n%# v", diff, pretty.Formatter(got))
	}
}

func TestFormatJoinsDigestPrefixes(t *testing.T) {
	env, ok := demo.Build("alice")
	qt.Assert(t, qt.IsTrue(ok))
	subj := env.Subject()

	got := pathutil.Format([]envelope.Envelope{env, subj})
	qt.Assert(t, qt.HasLen(got, 8+4+8)) // two 8-char digest prefixes joined by " -> "
}

func TestKeyStableAcrossEqualPaths(t *testing.T) {
	env, ok := demo.Build("credential")
	qt.Assert(t, qt.IsTrue(ok))
	subj := env.Subject()

	a := pathutil.Key([]envelope.Envelope{env, subj})
	b := pathutil.Key([]envelope.Envelope{env, subj})
	qt.Assert(t, qt.Equals(a, b))
}
