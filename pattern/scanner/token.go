package scanner

import "github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/token"

// Kind classifies a lexical token (§4.1).
type Kind int

const (
	EOF Kind = iota
	ILLEGAL

	// Punctuation & operators.
	AMP        // &
	PIPE       // |
	BANG       // !
	GT         // >
	ARROW      // ->
	STAR       // *
	STARLAZY   // *?
	STARPOSS   // *+
	PLUS       // +
	PLUSLAZY   // +?
	PLUSPOSS   // ++
	QUESTION   // ?
	QUESTLAZY  // ??
	QUESTPOSS  // ?+
	LPAREN     // (
	RPAREN     // )
	LBRACKET   // [
	RBRACKET   // ]
	LBRACE     // {
	RBRACE     // }
	COMMA      // ,
	ELLIPSIS   // ...
	GE         // >=
	LE         // <=
	LT         // <
	EQ         // =

	// Keywords.
	KEYWORD

	// Literals / identifiers.
	IDENT     // bare identifier (also used for unrecognized keyword-shaped words)
	INT       // 42, -3
	FLOAT     // 4.5, 1e10
	STRING    // "..."
	TEXTREGEX // /.../
	KNOWNNAME // '...'; reinterpreted by the parser as a hex/date body when
	          // it immediately follows an `h` identifier or a `date` keyword
	CAPTURE   // @name
	UR        // ur:type/bytewords
)

// Keywords recognized by the pattern language (§4.1). Case-sensitive.
var Keywords = map[string]bool{
	"bool": true, "true": true, "false": true,
	"number": true, "NaN": true, "Infinity": true,
	"text": true, "bstr": true, "date": true, "tagged": true,
	"known": true, "cbor": true, "array": true, "map": true, "null": true,
	"leaf": true, "node": true, "subject": true, "predicate": true,
	"object": true, "assertion": true, "assertpred": true, "assertobj": true,
	"wrapped": true, "unwrap": true, "search": true, "digest": true,
	"obscured": true, "elided": true, "encrypted": true, "compressed": true,
}

// Token is one lexical token with its source span.
type Token struct {
	Kind Kind
	Text string // literal/raw text, escapes not yet decoded
	Span token.Span
}

func (k Kind) IsKeyword() bool { return k == KEYWORD }
