package envelope_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
)

func leafText(t *testing.T, s string) envelope.Envelope {
	t.Helper()
	c, err := envelope.NewCBOR(s)
	qt.Assert(t, qt.IsNil(err))
	return envelope.NewLeaf(c)
}

func TestNodeSubjectAndAssertions(t *testing.T) {
	subj := leafText(t, "Alice")
	a := envelope.NewAssertion(leafText(t, "knows"), leafText(t, "Bob"))
	n := envelope.NewNode(subj, []envelope.Envelope{a})

	qt.Assert(t, qt.Equals(n.Case(), envelope.CaseNode))
	qt.Assert(t, qt.IsTrue(n.IsNode()))
	qt.Assert(t, qt.Equals(n.Subject().Digest().String(), subj.Digest().String()))
	qt.Assert(t, qt.HasLen(n.Assertions(), 1))
}

func TestWrappedTryUnwrap(t *testing.T) {
	inner := leafText(t, "secret")
	w := envelope.NewWrapped(inner)

	qt.Assert(t, qt.IsTrue(w.IsWrapped()))
	got, ok := w.TryUnwrap()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got.Digest().String(), inner.Digest().String()))
}

func TestDigestStableForEqualContent(t *testing.T) {
	a := leafText(t, "same")
	b := leafText(t, "same")
	qt.Assert(t, qt.Equals(a.Digest().String(), b.Digest().String()))

	c := leafText(t, "different")
	qt.Assert(t, a.Digest().String() != c.Digest().String())
}

func TestAssertionPredicateObject(t *testing.T) {
	pred := leafText(t, "knows")
	obj := leafText(t, "Bob")
	assertion := envelope.NewAssertion(pred, obj)

	qt.Assert(t, qt.IsTrue(assertion.IsAssertion()))
	gotPred, ok := assertion.AsPredicate()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(gotPred.Digest().String(), pred.Digest().String()))

	gotObj, ok := assertion.AsObject()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(gotObj.Digest().String(), obj.Digest().String()))
}
