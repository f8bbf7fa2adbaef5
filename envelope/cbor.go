package envelope

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/apd/v3"
	"github.com/fxamacker/cbor/v2"
)

// CBORKind classifies the major shape of a decoded CBOR value, used by
// the leaf-pattern matchers to dispatch without repeated type switches.
type CBORKind int

const (
	KindNull CBORKind = iota
	KindBool
	KindNumber
	KindText
	KindBytes
	KindArray
	KindMap
	KindTag
	KindOther
)

// CBOR is an immutable, decoded CBOR value together with its canonical
// byte encoding. It is the value type that leaf patterns (§3.1) match
// against.
type CBOR struct {
	raw        []byte
	kind       CBORKind
	boolVal    bool
	numVal     *apd.Decimal
	textVal    string
	bytesVal   []byte
	arrVal     []CBOR
	mapVal     []CBORMapEntry
	tagNum     uint64
	tagContent *CBOR
}

// CBORMapEntry is one key/value pair of a CBOR map. A decoded map's
// entries are ordered by the canonical encoding of their keys.
type CBORMapEntry struct {
	Key   CBOR
	Value CBOR
}

var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return m
}()

// DecodeCBOR parses a canonical CBOR encoding into a [CBOR] value tree.
func DecodeCBOR(raw []byte) (CBOR, error) {
	var v any
	if err := cbor.Unmarshal(raw, &v); err != nil {
		return CBOR{}, fmt.Errorf("envelope: decode cbor: %w", err)
	}
	return fromAny(raw, v)
}

func fromAny(raw []byte, v any) (CBOR, error) {
	switch t := v.(type) {
	case nil:
		return CBOR{raw: raw, kind: KindNull}, nil
	case bool:
		return CBOR{raw: raw, kind: KindBool, boolVal: t}, nil
	case uint64:
		d, _, err := new(apd.Decimal).SetString(fmt.Sprintf("%d", t))
		if err != nil {
			return CBOR{}, err
		}
		return CBOR{raw: raw, kind: KindNumber, numVal: d}, nil
	case int64:
		return CBOR{raw: raw, kind: KindNumber, numVal: apd.New(t, 0)}, nil
	case float64:
		d := new(apd.Decimal)
		if _, err := d.SetFloat64(t); err != nil {
			return CBOR{}, err
		}
		return CBOR{raw: raw, kind: KindNumber, numVal: d}, nil
	case string:
		return CBOR{raw: raw, kind: KindText, textVal: t}, nil
	case []byte:
		return CBOR{raw: raw, kind: KindBytes, bytesVal: t}, nil
	case []any:
		arr := make([]CBOR, 0, len(t))
		for _, e := range t {
			ev, err := NewCBOR(e)
			if err != nil {
				return CBOR{}, err
			}
			arr = append(arr, ev)
		}
		return CBOR{raw: raw, kind: KindArray, arrVal: arr}, nil
	case map[any]any:
		entries := make([]CBORMapEntry, 0, len(t))
		for k, val := range t {
			kv, err := NewCBOR(k)
			if err != nil {
				return CBOR{}, err
			}
			vv, err := NewCBOR(val)
			if err != nil {
				return CBOR{}, err
			}
			entries = append(entries, CBORMapEntry{Key: kv, Value: vv})
		}
		sort.Slice(entries, func(i, j int) bool {
			return string(entries[i].Key.raw) < string(entries[j].Key.raw)
		})
		return CBOR{raw: raw, kind: KindMap, mapVal: entries}, nil
	case cbor.Tag:
		content, err := NewCBOR(t.Content)
		if err != nil {
			return CBOR{}, err
		}
		return CBOR{raw: raw, kind: KindTag, tagNum: t.Number, tagContent: &content}, nil
	default:
		return CBOR{raw: raw, kind: KindOther}, nil
	}
}

// NewCBOR re-encodes a decoded Go value to canonical CBOR and wraps it.
// Used when constructing sub-values (array elements, map entries, tag
// content) that were not individually present in the original byte
// stream.
func NewCBOR(v any) (CBOR, error) {
	raw, err := encMode.Marshal(v)
	if err != nil {
		return CBOR{}, fmt.Errorf("envelope: encode cbor: %w", err)
	}
	return fromAny(raw, v)
}

func (c CBOR) Kind() CBORKind { return c.kind }
func (c CBOR) Raw() []byte    { return c.raw }

func (c CBOR) AsBool() (bool, bool)          { return c.boolVal, c.kind == KindBool }
func (c CBOR) AsNumber() (*apd.Decimal, bool) { return c.numVal, c.kind == KindNumber }
func (c CBOR) AsText() (string, bool)        { return c.textVal, c.kind == KindText }
func (c CBOR) AsBytes() ([]byte, bool)       { return c.bytesVal, c.kind == KindBytes }
func (c CBOR) AsArray() ([]CBOR, bool)       { return c.arrVal, c.kind == KindArray }
func (c CBOR) AsMap() ([]CBORMapEntry, bool) { return c.mapVal, c.kind == KindMap }
func (c CBOR) AsTag() (uint64, CBOR, bool) {
	if c.kind != KindTag {
		return 0, CBOR{}, false
	}
	return c.tagNum, *c.tagContent, true
}
func (c CBOR) IsNull() bool { return c.kind == KindNull }

// Equal reports structural equality by comparing canonical encodings.
func (c CBOR) Equal(other CBOR) bool {
	if len(c.raw) == 0 || len(other.raw) == 0 {
		return fmt.Sprintf("%v", c) == fmt.Sprintf("%v", other)
	}
	return string(c.raw) == string(other.raw)
}

func (c CBOR) String() string {
	switch c.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", c.boolVal)
	case KindNumber:
		return c.numVal.String()
	case KindText:
		return fmt.Sprintf("%q", c.textVal)
	case KindBytes:
		return fmt.Sprintf("h'%x'", c.bytesVal)
	case KindArray:
		return fmt.Sprintf("array[%d]", len(c.arrVal))
	case KindMap:
		return fmt.Sprintf("map[%d]", len(c.mapVal))
	case KindTag:
		return fmt.Sprintf("tag(%d, %s)", c.tagNum, c.tagContent)
	default:
		return "cbor(?)"
	}
}
