package envelope

import (
	"fmt"

	digest "github.com/opencontainers/go-digest"
)

// memEnvelope is a minimal, immutable in-memory [Envelope]. It exists so
// the pattern engine, its tests, and its callers have a concrete type to
// build trees with; production users are expected to supply their own
// Envelope implementation backed by a real Gordian Envelope library.
type memEnvelope struct {
	kind       Case
	leaf       CBOR
	known      KnownValue
	subject    Envelope
	assertions []Envelope
	predicate  Envelope
	object     Envelope
	inner      Envelope
	obscured   Digest
}

func NewLeaf(v CBOR) Envelope {
	e := &memEnvelope{kind: CaseLeaf, leaf: v}
	return e
}

func NewKnownValue(kv KnownValue) Envelope {
	return &memEnvelope{kind: CaseKnownValue, known: kv}
}

func NewWrapped(inner Envelope) Envelope {
	return &memEnvelope{kind: CaseWrapped, inner: inner}
}

func NewAssertion(predicate, object Envelope) Envelope {
	return &memEnvelope{kind: CaseAssertion, predicate: predicate, object: object}
}

func NewNode(subject Envelope, assertions []Envelope) Envelope {
	cp := make([]Envelope, len(assertions))
	copy(cp, assertions)
	return &memEnvelope{kind: CaseNode, subject: subject, assertions: cp}
}

func NewElided(d Digest) Envelope { return &memEnvelope{kind: CaseElided, obscured: d} }

func NewEncrypted(d Digest) Envelope { return &memEnvelope{kind: CaseEncrypted, obscured: d} }

func NewCompressed(d Digest) Envelope { return &memEnvelope{kind: CaseCompressed, obscured: d} }

func (e *memEnvelope) Case() Case { return e.kind }

func (e *memEnvelope) Subject() Envelope { return e.subject }

func (e *memEnvelope) Assertions() []Envelope { return e.assertions }

func (e *memEnvelope) AsLeaf() (CBOR, bool) { return e.leaf, e.kind == CaseLeaf }

func (e *memEnvelope) AsKnownValue() (KnownValue, bool) {
	return e.known, e.kind == CaseKnownValue
}

func (e *memEnvelope) AsPredicate() (Envelope, bool) {
	return e.predicate, e.kind == CaseAssertion
}

func (e *memEnvelope) AsObject() (Envelope, bool) {
	return e.object, e.kind == CaseAssertion
}

func (e *memEnvelope) TryUnwrap() (Envelope, bool) {
	return e.inner, e.kind == CaseWrapped
}

func (e *memEnvelope) IsLeaf() bool       { return e.kind == CaseLeaf }
func (e *memEnvelope) IsNode() bool       { return e.kind == CaseNode }
func (e *memEnvelope) IsAssertion() bool  { return e.kind == CaseAssertion }
func (e *memEnvelope) IsWrapped() bool    { return e.kind == CaseWrapped }
func (e *memEnvelope) IsKnownValue() bool { return e.kind == CaseKnownValue }
func (e *memEnvelope) IsElided() bool     { return e.kind == CaseElided }
func (e *memEnvelope) IsEncrypted() bool  { return e.kind == CaseEncrypted }
func (e *memEnvelope) IsCompressed() bool { return e.kind == CaseCompressed }
func (e *memEnvelope) IsObscured() bool {
	return e.kind == CaseElided || e.kind == CaseEncrypted || e.kind == CaseCompressed
}

// Digest computes (and does not cache; callers needing performance
// should memoize) a stable content digest over the envelope's
// structure. The encoding is internal to this reference implementation
// and is not a Gordian Envelope wire format.
func (e *memEnvelope) Digest() Digest {
	return digest.FromBytes(e.canonicalBytes())
}

func (e *memEnvelope) canonicalBytes() []byte {
	switch e.kind {
	case CaseLeaf:
		return append([]byte("leaf:"), e.leaf.Raw()...)
	case CaseKnownValue:
		return []byte(fmt.Sprintf("known:%d:%s", e.known.Value, e.known.Name))
	case CaseWrapped:
		inner := e.inner.(*memEnvelope)
		return append([]byte("wrapped:"), inner.canonicalBytes()...)
	case CaseAssertion:
		p := e.predicate.(*memEnvelope).canonicalBytes()
		o := e.object.(*memEnvelope).canonicalBytes()
		return []byte(fmt.Sprintf("assertion:%x:%x", p, o))
	case CaseNode:
		b := []byte(fmt.Sprintf("node:%x", e.subject.(*memEnvelope).canonicalBytes()))
		for _, a := range e.assertions {
			b = append(b, []byte(fmt.Sprintf(":%x", a.(*memEnvelope).canonicalBytes()))...)
		}
		return b
	case CaseElided:
		return []byte("elided:" + e.obscured.String())
	case CaseEncrypted:
		return []byte("encrypted:" + e.obscured.String())
	case CaseCompressed:
		return []byte("compressed:" + e.obscured.String())
	default:
		return nil
	}
}
