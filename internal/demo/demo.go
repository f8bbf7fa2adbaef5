// Package demo builds a small, fixed set of in-memory envelopes for use
// by the envgrep CLI and its script tests, standing in for the CBOR
// fixtures a fuller Gordian Envelope integration would load from disk
// (cue's script_test.go txtar fixtures play the analogous role for that
// project's test suite).
package demo

import (
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
)

// Names lists the builtin envelope names accepted by envgrep's
// --envelope flag.
var Names = []string{"alice", "credential", "wrapped-secret"}

// Build constructs the named demo envelope, or reports ok=false if name
// is not one of [Names].
func Build(name string) (envelope.Envelope, bool) {
	switch name {
	case "alice":
		return alice(), true
	case "credential":
		return credential(), true
	case "wrapped-secret":
		return wrappedSecret(), true
	default:
		return nil, false
	}
}

func leafText(s string) envelope.Envelope {
	c, err := envelope.NewCBOR(s)
	if err != nil {
		panic(err)
	}
	return envelope.NewLeaf(c)
}

func leafNumber(n float64) envelope.Envelope {
	c, err := envelope.NewCBOR(n)
	if err != nil {
		panic(err)
	}
	return envelope.NewLeaf(c)
}

// alice is a node whose subject is a name, with "knows" assertions
// pointing at two other people and an age assertion.
func alice() envelope.Envelope {
	return envelope.NewNode(leafText("Alice"), []envelope.Envelope{
		envelope.NewAssertion(leafText("knows"), leafText("Bob")),
		envelope.NewAssertion(leafText("knows"), leafText("Carol")),
		envelope.NewAssertion(leafText("age"), leafNumber(30)),
	})
}

// credential is a node with a subject and a single assertion whose
// object is itself a node (a nested structure for traversal/search
// demonstrations).
func credential() envelope.Envelope {
	issuer := envelope.NewNode(leafText("issuer"), []envelope.Envelope{
		envelope.NewAssertion(leafText("name"), leafText("Example University")),
	})
	return envelope.NewNode(leafText("diploma"), []envelope.Envelope{
		envelope.NewAssertion(leafText("issuedBy"), issuer),
		envelope.NewAssertion(leafText("subject"), leafText("Alice")),
	})
}

// wrappedSecret is a subject wrapped three times, so `(unwrap)* -> 42`
// style patterns have something nontrivial to descend through.
func wrappedSecret() envelope.Envelope {
	inner := leafNumber(42)
	return envelope.NewWrapped(envelope.NewWrapped(envelope.NewWrapped(inner)))
}
