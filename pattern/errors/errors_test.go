package errors_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/errors"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/token"
)

func TestEmptyInputHasInvalidSpan(t *testing.T) {
	err := errors.EmptyInput()
	qt.Assert(t, qt.IsFalse(err.Span().Start.IsValid()))
	qt.Assert(t, qt.StringContains(err.Error(), "empty"))
}

func TestListJoinsMessages(t *testing.T) {
	sp := token.Span{}
	var l errors.List
	l.Add(errors.UnexpectedEndOfInput(sp))
	l.Add(errors.ExtraData(sp, "xyz"))
	qt.Assert(t, qt.HasLen(l, 2))
	qt.Assert(t, qt.StringContains(l.Error(), "; "))
}

func TestInvalidCaptureGroupNameIncludesName(t *testing.T) {
	err := errors.InvalidCaptureGroupName(token.Span{}, "9bad")
	qt.Assert(t, qt.StringContains(err.Error(), "9bad"))
}
