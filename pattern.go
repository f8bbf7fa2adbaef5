// Package envelopepattern implements the public matcher façade
// (component H, §6.3): it parses pattern source into an AST, compiles
// it to bytecode on first use, and runs the bytecode VM against a
// caller-supplied envelope. Compiled programs are cached process-wide,
// keyed by the AST's structural hash, so repeated use of the same
// pattern text across many envelopes compiles once (§5 "Shared
// resources").
package envelopepattern

import (
	"sync"

	"github.com/BlockchainCommons/bc-envelope-pattern-go/cborpattern"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/envelope"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/bytecode"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/compile"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/vm"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/ast"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pattern/parser"
)

// Path is an ordered, root-first sequence of envelopes matched by a
// pattern (§3.4).
type Path = []envelope.Envelope

// Captures maps a capture name to every path it was bound to across a
// match (§3.4).
type Captures = map[string][]Path

// Pattern is a parsed, lazily-compiled pattern. The zero value is not
// usable; construct one with [Parse], [ParseWithEngine], or [FromAST]
// applied to a tree built with the pattern/ast constructor functions.
type Pattern struct {
	ast    ast.Pattern
	engine cborpattern.Engine
}

// Parse compiles pattern source text using the default reference
// CBOR-pattern engine ([cborpattern.RefEngine]) for any embedded
// `cbor(/…/)`, `[…]`, or `{…}` sub-expressions.
func Parse(text string) (*Pattern, error) {
	return ParseWithEngine(text, nil)
}

// ParseWithEngine compiles pattern source text, delegating embedded
// CBOR-pattern sub-expressions to engine. A nil engine selects
// [cborpattern.RefEngine].
func ParseWithEngine(text string, engine cborpattern.Engine) (*Pattern, error) {
	p, err := parser.Parse(text, engine)
	if err != nil {
		return nil, err
	}
	if engine == nil {
		engine = cborpattern.RefEngine{}
	}
	return &Pattern{ast: p, engine: engine}, nil
}

// FromAST wraps an already-built AST node (e.g. produced by the
// pattern/ast constructor functions) as a Pattern, using the reference
// CBOR-pattern engine for any embedded sub-expressions.
func FromAST(p ast.Pattern) *Pattern {
	return &Pattern{ast: p, engine: cborpattern.RefEngine{}}
}

// String renders the pattern's canonical surface syntax; parsing it
// again yields an equal pattern (§6.3 Display, §8 property 1).
func (p *Pattern) String() string {
	return p.ast.String()
}

// Matches reports whether e has at least one matching path.
func (p *Pattern) Matches(e envelope.Envelope) bool {
	paths, _ := p.Paths(e)
	return len(paths) > 0
}

// Paths returns every path matched against e, in VM thread-stack
// (depth-first, left-to-right) order (§5 "Ordering").
func (p *Pattern) Paths(e envelope.Envelope) ([]Path, error) {
	paths, _, err := p.PathsWithCaptures(e)
	return paths, err
}

// PathsWithCaptures returns every matching path together with a table
// of named captures accumulated across all of them.
func (p *Pattern) PathsWithCaptures(e envelope.Envelope) ([]Path, Captures, error) {
	prog, err := p.program()
	if err != nil {
		return nil, nil, err
	}
	paths, caps := vm.Run(prog, e)
	return paths, Captures(caps), nil
}

// program returns the compiled bytecode for p, consulting and
// populating the process-wide cache.
func (p *Pattern) program() (*bytecode.Program, error) {
	id := ast.Hash(p.ast)
	if prog, ok := programCache.get(id); ok {
		return prog, nil
	}
	prog, err := compile.Compile(p.ast, p.engine)
	if err != nil {
		return nil, err
	}
	programCache.put(id, prog)
	return prog, nil
}

// cache is a process-wide compiled-program cache, keyed by the
// originating AST's structural hash (§5: "multiple readers, exclusive
// writer; compilation is idempotent so lost races may recompute
// without harm").
type cache struct {
	mu      sync.RWMutex
	entries map[string]*bytecode.Program
}

func (c *cache) get(id string) (*bytecode.Program, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prog, ok := c.entries[id]
	return prog, ok
}

func (c *cache) put(id string, prog *bytecode.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]*bytecode.Program)
	}
	c.entries[id] = prog
}

var programCache = &cache{entries: make(map[string]*bytecode.Program)}
