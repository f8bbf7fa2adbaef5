package parser

import (
	"encoding/hex"

	digest "github.com/opencontainers/go-digest"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/literal"
)

// digestFromUR resolves a `ur:digest/...` literal to the digest it
// names. The bytewords payload of a Blockchain Commons UR is, when it
// decodes as hex, treated as the digest's raw bytes; otherwise the
// literal body is hashed as opaque text, since no bytewords decoder is
// wired into this module.
func digestFromUR(text string) (envelope.Digest, error) {
	_, body, err := literal.ParseUR(text)
	if err != nil {
		return envelope.Digest(""), err
	}
	if raw, err := hex.DecodeString(body); err == nil {
		return digestFromBytes(raw)
	}
	return digest.FromString(body), nil
}

// digestFromBytes wraps raw digest bytes as a SHA-256 [envelope.Digest].
func digestFromBytes(raw []byte) (envelope.Digest, error) {
	return digest.NewDigestFromBytes(digest.SHA256, raw), nil
}
