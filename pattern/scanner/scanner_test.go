package scanner_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/scanner"
)

func kinds(src string) []scanner.Kind {
	sc := scanner.New(src)
	var ks []scanner.Kind
	for {
		tok := sc.Next()
		ks = append(ks, tok.Kind)
		if tok.Kind == scanner.EOF {
			return ks
		}
	}
}

func TestScansArrowAndAmp(t *testing.T) {
	got := kinds(`-> &`)
	qt.Assert(t, qt.DeepEquals(got, []scanner.Kind{scanner.ARROW, scanner.AMP, scanner.EOF}))
}

func TestScansTextLiteral(t *testing.T) {
	sc := scanner.New(`"knows"`)
	tok := sc.Next()
	qt.Assert(t, qt.Equals(tok.Kind, scanner.STRING))
	qt.Assert(t, qt.Equals(tok.Text, "knows"))
}

func TestSkipsLineComments(t *testing.T) {
	got := kinds("// a comment\n*")
	qt.Assert(t, qt.DeepEquals(got, []scanner.Kind{scanner.STAR, scanner.EOF}))
}

func TestIllegalTokenRecorded(t *testing.T) {
	sc := scanner.New(`$`)
	sc.Next()
	qt.Assert(t, qt.HasLen(sc.Errs(), 1))
}
