package interval_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/interval"
)

func TestContains(t *testing.T) {
	q := interval.Between(2, 4, interval.Greedy)
	qt.Assert(t, qt.IsFalse(q.Contains(1)))
	qt.Assert(t, qt.IsTrue(q.Contains(2)))
	qt.Assert(t, qt.IsTrue(q.Contains(4)))
	qt.Assert(t, qt.IsFalse(q.Contains(5)))
}

func TestStarIsUnbounded(t *testing.T) {
	q := interval.Star(interval.Lazy)
	qt.Assert(t, qt.IsTrue(q.IsUnbounded()))
	qt.Assert(t, qt.IsTrue(q.Contains(0)))
	qt.Assert(t, qt.IsTrue(q.Contains(1_000_000)))
}

func TestIsSingle(t *testing.T) {
	qt.Assert(t, qt.IsTrue(interval.Exactly(1).IsSingle()))
	qt.Assert(t, qt.IsFalse(interval.Exactly(2).IsSingle()))
	qt.Assert(t, qt.IsFalse(interval.Star(interval.Greedy).IsSingle()))
}

// Widens backs the repeat-monotonicity testable property (§8 property 6):
// widening a quantifier can only grow the set of counts it permits.
func TestWidens(t *testing.T) {
	narrow := interval.Between(1, 3, interval.Greedy)
	wider := interval.Between(0, 5, interval.Greedy)
	qt.Assert(t, qt.IsTrue(wider.Widens(narrow)))
	qt.Assert(t, qt.IsFalse(narrow.Widens(wider)))

	unbounded := interval.AtLeast(0, interval.Greedy)
	qt.Assert(t, qt.IsTrue(unbounded.Widens(narrow)))
	qt.Assert(t, qt.IsFalse(narrow.Widens(unbounded)))
}

func TestQuantifierString(t *testing.T) {
	qt.Assert(t, qt.Equals(interval.Exactly(3).String(), "{3}"))
	qt.Assert(t, qt.Equals(interval.AtLeast(2, interval.Lazy).String(), "{2,}?"))
	qt.Assert(t, qt.Equals(interval.Between(1, 4, interval.Possessive).String(), "{1,4}+"))
}
