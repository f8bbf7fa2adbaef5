package bytecode_test

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/bytecode"
)

func TestProgramStringDisassemblesEachInstr(t *testing.T) {
	prog := &bytecode.Program{
		Instrs: []bytecode.Instr{
			{Op: bytecode.PushAxis, Axis: bytecode.AxisUnwrap},
			{Op: bytecode.Jump, X: 0},
			{Op: bytecode.Accept},
		},
	}
	out := prog.String()
	qt.Assert(t, qt.Equals(strings.Count(out, "\n"), 3))
	qt.Assert(t, qt.StringContains(out, "jump 0"))
	qt.Assert(t, qt.StringContains(out, "pushAxis"))
}
