// Package literal implements the token-level literal parsing helpers
// shared by the scanner and parser: double-quoted text strings, hex
// byte-strings, ISO-8601 dates, and numbers (§4.1).
package literal

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Unquote decodes a double-quoted pattern-language string literal body
// (the text between the quotes), honoring `\"` and the common Go-style
// backslash escapes.
func Unquote(body string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("literal: unterminated escape sequence")
		}
		switch body[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", fmt.Errorf("literal: invalid escape sequence \\%c", body[i])
		}
	}
	return b.String(), nil
}

// UnescapeRegexBody decodes a slash-delimited regex literal body,
// honoring `\/` and `\\` (§4.1).
func UnescapeRegexBody(body string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("literal: unterminated escape in regex")
		}
		switch body[i] {
		case '/':
			b.WriteByte('/')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String(), nil
}

// DecodeHex decodes a `h'...'` byte-string body.
func DecodeHex(body string) ([]byte, error) {
	return hex.DecodeString(body)
}

// ParseNumber parses a signed/unsigned decimal integer or float
// (including scientific notation) into an arbitrary-precision decimal.
func ParseNumber(text string) (*apd.Decimal, error) {
	d, _, err := new(apd.Decimal).SetString(text)
	if err != nil {
		return nil, fmt.Errorf("literal: invalid number %q: %w", text, err)
	}
	return d, nil
}

// ParseDate parses an ISO-8601 date (date-only or full RFC3339) literal.
func ParseDate(text string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("literal: invalid ISO-8601 date %q", text)
}

// ParseUR validates (loosely) a `ur:<type>/<bytewords>` literal and
// returns its type and body.
func ParseUR(text string) (urType string, body string, err error) {
	const prefix = "ur:"
	if !strings.HasPrefix(text, prefix) {
		return "", "", fmt.Errorf("literal: not a UR literal: %q", text)
	}
	rest := text[len(prefix):]
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return "", "", fmt.Errorf("literal: malformed UR literal %q (missing '/')", text)
	}
	urType = rest[:slash]
	body = rest[slash+1:]
	if urType == "" || body == "" {
		return "", "", fmt.Errorf("literal: malformed UR literal %q", text)
	}
	return urType, body, nil
}

// FormatNumber renders a decimal the way the Display form expects: as
// compactly as strconv would for integral values, falling back to the
// decimal's own canonical text otherwise.
func FormatNumber(d *apd.Decimal) string {
	if d.Exponent == 0 {
		if i, err := strconv.ParseInt(d.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
	}
	return d.String()
}
