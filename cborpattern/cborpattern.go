// Package cborpattern declares the capability the pattern engine requires
// of the embedded, foreign CBOR-pattern sub-engine (§6.2), consumed as a
// black box by the `cbor(/ … /)` escape hatch and by the bracketed
// `[…]`/`{…}` array/map element sub-languages (§4.2, §4.3).
//
// The core never implements CBOR-value pattern matching itself; it only
// depends on this interface plus the small reference [Engine]
// implementation in this package, which is sufficient for tests and for
// callers that do not wish to wire in a fuller dcbor-pattern-style
// engine.
package cborpattern

import "github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"

// Pattern is an opaque, compiled foreign CBOR pattern.
type Pattern interface {
	// String renders the pattern in the foreign engine's own canonical
	// syntax; Display round-trips through Parse.
	String() string

	// CollectNames returns the named captures the pattern can produce,
	// in the order the adapter should pre-register them (design notes,
	// "a cleaner implementation exposes a collect_names capability").
	CollectNames() []string
}

// Engine is the capability consumed by the envelope pattern engine.
type Engine interface {
	// Parse compiles foreign pattern source.
	Parse(src string) (Pattern, error)

	// PathsWithCaptures matches p against a CBOR value, returning every
	// matching path (a path is the sequence of CBOR values leading from
	// the root value, typically just [value] itself for non-recursive
	// foreign patterns) plus any named captures.
	PathsWithCaptures(p Pattern, value envelope.CBOR) ([][]envelope.CBOR, map[string][][]envelope.CBOR)

	// Matches is a convenience wrapper around PathsWithCaptures.
	Matches(p Pattern, value envelope.CBOR) bool
}
