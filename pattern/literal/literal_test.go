package literal_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/literal"
)

func TestUnquoteEscapes(t *testing.T) {
	got, err := literal.Unquote(`line1\nline2\t\"end\"`)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "line1\nline2\t\"end\""))
}

func TestDecodeHex(t *testing.T) {
	got, err := literal.DecodeHex("ab12")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(got, []byte{0xab, 0x12}))
}

func TestParseNumber(t *testing.T) {
	d, err := literal.ParseNumber("42.5")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(d.String(), "42.5"))
}

func TestParseDateISO(t *testing.T) {
	d, err := literal.ParseDate("2023-12-25")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(d.Year(), 2023))
	qt.Assert(t, qt.Equals(int(d.Month()), 12))
	qt.Assert(t, qt.Equals(d.Day(), 25))
}
