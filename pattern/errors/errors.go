// Package errors defines the typed error taxonomy produced while lexing,
// parsing, and compiling pattern-language source text.
//
// Every error value carries a source [token.Span] so that a caller can
// point a user at the offending text. Matching itself is total and never
// fails; these errors only ever originate from the lexer, parser, and the
// (user-unreachable) compiler invariant checks.
package errors

import (
	"fmt"
	"strings"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/token"
)

// Error is implemented by every error produced by this module.
type Error interface {
	error
	Span() token.Span
}

// List collects multiple errors, e.g. from a lexer that keeps scanning
// after the first bad token.
type List []Error

func (l List) Error() string {
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// Add appends err to the list.
func (l *List) Add(err Error) {
	*l = append(*l, err)
}

type baseErr struct {
	span token.Span
	msg  string
}

func (e *baseErr) Span() token.Span { return e.span }
func (e *baseErr) Error() string {
	if e.span.Start.IsValid() {
		return fmt.Sprintf("%s: %s", e.span, e.msg)
	}
	return e.msg
}

func newf(span token.Span, format string, args ...any) *baseErr {
	return &baseErr{span: span, msg: fmt.Sprintf(format, args...)}
}

// Lexer errors (§4.1).

func UnrecognizedToken(span token.Span, lexeme string) Error {
	return newf(span, "unrecognized token %q", lexeme)
}

func InvalidRegex(span token.Span, cause error) Error {
	return newf(span, "invalid regular expression: %s", cause)
}

func InvalidHexString(span token.Span, cause error) Error {
	return newf(span, "invalid hex byte-string: %s", cause)
}

func InvalidDateFormat(span token.Span, text string) Error {
	return newf(span, "invalid ISO-8601 date literal %q", text)
}

func InvalidNumberFormat(span token.Span, text string) Error {
	return newf(span, "invalid number literal %q", text)
}

func InvalidUr(span token.Span, msg string) Error {
	return newf(span, "invalid UR literal: %s", msg)
}

func UnterminatedRegex(span token.Span) Error {
	return newf(span, "unterminated regular expression literal")
}

// Parser errors (§4.2).

func EmptyInput() Error {
	return newf(token.NoSpan, "empty pattern input")
}

func UnexpectedEndOfInput(span token.Span) Error {
	return newf(span, "unexpected end of input")
}

func ExtraData(span token.Span, text string) Error {
	return newf(span, "unexpected trailing input %q", text)
}

func UnexpectedToken(span token.Span, got string) Error {
	return newf(span, "unexpected token %q", got)
}

func ExpectedOpenParen(span token.Span) Error {
	return newf(span, "expected '('")
}

func ExpectedCloseParen(span token.Span) Error {
	return newf(span, "expected ')'")
}

func ExpectedPattern(span token.Span) Error {
	return newf(span, "expected a pattern")
}

func UnmatchedParentheses(span token.Span) Error {
	return newf(span, "unmatched parentheses")
}

func UnmatchedBraces(span token.Span) Error {
	return newf(span, "unmatched braces")
}

func InvalidCaptureGroupName(span token.Span, name string) Error {
	return newf(span, "invalid capture group name %q", name)
}

func InvalidRange(span token.Span, text string) Error {
	return newf(span, "invalid quantifier range %q", text)
}

// Compile-time invariant violation. Never user-visible in a correct
// implementation; a non-nil value here indicates a bug in the compiler.
type InternalError struct {
	baseErr
}

func Internalf(format string, args ...any) *InternalError {
	return &InternalError{baseErr{span: token.NoSpan, msg: fmt.Sprintf(format, args...)}}
}
