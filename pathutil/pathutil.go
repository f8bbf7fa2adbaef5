// Package pathutil implements path deduplication and formatting
// (component I): results are deduplicated by the sequence of content
// digests of their envelopes (§3.4), and formatted for display without
// requiring callers to walk [envelope.Envelope] themselves.
package pathutil

import "github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"

// Key returns a stable string uniquely identifying path's sequence of
// envelope digests, suitable as a deduplication map key.
func Key(path []envelope.Envelope) string {
	b := make([]byte, 0, len(path)*68)
	for i, e := range path {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, e.Digest().String()...)
	}
	return string(b)
}

// Dedup removes paths that share the same digest-sequence key as an
// earlier path, preserving the order of first occurrence.
func Dedup(paths [][]envelope.Envelope) [][]envelope.Envelope {
	seen := make(map[string]bool, len(paths))
	out := make([][]envelope.Envelope, 0, len(paths))
	for _, p := range paths {
		k := Key(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

// Format renders path as a `->`-joined sequence of short digest
// prefixes, e.g. "a1b2c3d4 -> e5f6a7b8". It is a debugging aid, not the
// canonical envelope notation (the core does not implement envelope
// pretty-printing; §1 scope).
func Format(path []envelope.Envelope) string {
	out := make([]byte, 0, len(path)*12)
	for i, e := range path {
		if i > 0 {
			out = append(out, []byte(" -> ")...)
		}
		d := e.Digest().Encoded()
		if len(d) > 8 {
			d = d[:8]
		}
		out = append(out, d...)
	}
	return string(out)
}
