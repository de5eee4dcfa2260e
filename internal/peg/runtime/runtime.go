// Package runtime is the support library shipped alongside every parser
// CodeEmitter produces: the FAILURE/NO_MATCH sentinels and the packrat
// memoization / seed-and-grow machinery. Emitted
// parser types embed *BaseParser[M] and call its Memoize/SeedGrow helpers
// from each generated rule method; the emitter itself never re-implements
// this logic inline.
package runtime

import (
	"fmt"
	"os"
)

// failureType and noMatchType are distinct unexported types so that a
// generated rule's match value can never accidentally compare equal to a
// sentinel: a grammar whose action legitimately returns the empty struct{}
// would otherwise collide with FAILURE under reflect-based equality.
type failureType struct{}
type noMatchType struct{}

func (failureType) String() string { return "<FAILURE>" }
func (noMatchType) String() string { return "<NO_MATCH>" }

// FAILURE is the sentinel a rule method returns when it does not match.
// It is propagated by every caller that receives it.
var FAILURE interface{} = failureType{}

// NO_MATCH is the sentinel Opt yields when its body fails; unlike FAILURE
// it is a legitimate value that is carried through the parse tree.
var NO_MATCH interface{} = noMatchType{}

// IsFailure reports whether v is the FAILURE sentinel.
func IsFailure(v interface{}) bool {
	_, ok := v.(failureType)
	return ok
}

// Parser is the fixed, generated-class-independent interface every emitted
// parser type satisfies. The loader of GenerateParser's plugins
// (cmd/peggen/repl.go) type-asserts a loaded plugin's fixed-name constructor symbol against a
// func literal returning Parser rather than the grammar's own generated
// class name, since a dynamically loaded plugin symbol only type-asserts
// successfully against a statically known function type.
type Parser interface {
	Parse() (interface{}, error)
}

// IsNoMatch reports whether v is the NO_MATCH sentinel.
func IsNoMatch(v interface{}) bool {
	_, ok := v.(noMatchType)
	return ok
}

// memoKey identifies one packrat cache entry: the mark the rule was tried
// at, the rule name, and a string rendition of its argument tuple (parser
// rules in this system are niladic at the grammar level, but the key shape
// keeps room for parameterised sub-rules the same way the source project's
// memoization dict does).
type memoKey[M comparable] struct {
	Mark M
	Rule string
	Args string
}

type memoEntry[M any] struct {
	Result interface{}
	End    M
}

// BaseParser holds the packrat cache and diagnostic counters every emitted
// parser needs, parameterised over the tokenizer's Mark type (int for the
// token-stream tokenizer, tokenizer.Pos for the character-stream one).
// Emitted parser types embed *BaseParser[M] and never touch its fields
// directly outside the Memoize/SeedGrow calls the CodeEmitter generates.
type BaseParser[M comparable] struct {
	memo map[memoKey[M]]memoEntry[M]

	// Less orders two marks by stream position; required only for the
	// seed-and-grow loop's termination check (end_mark <= last_end_mark).
	Less func(a, b M) bool

	Verbosity        int
	debugIndent      int
	LeftRecDepth     int
	CallInvalidRules bool
}

// NewBaseParser constructs a BaseParser ready for use. less must implement
// a strict less-than over M; it is the only ordering operation the runtime
// needs out of an otherwise opaque Mark type.
func NewBaseParser[M comparable](less func(a, b M) bool) *BaseParser[M] {
	return &BaseParser[M]{
		memo: make(map[memoKey[M]]memoEntry[M]),
		Less: less,
	}
}

// argKey renders an argument tuple into the opaque string component of a
// memoKey. Grammar rules in this system take no arguments, so in practice
// this is always called with nil, but the hook is kept so a hand-written
// base-parser subclass with parameterised sub-rules (an extern, say) can
// still participate in memoization correctly.
func argKey(args []interface{}) string {
	if len(args) == 0 {
		return ""
	}
	return fmt.Sprint(args)
}

// Memoize implements the ordinary (non-left-recursive) rule protocol of
// Packrat memoization: snapshot the mark, consult the cache, else run body and
// record its result before returning. body must itself leave the tokenizer
// at the correct end position; Memoize only records and restores marks, it
// does not reset the tokenizer itself (the caller's resetMark closure
// does that).
func (p *BaseParser[M]) Memoize(
	mark M,
	rule string,
	args []interface{},
	resetMark func(M),
	body func() (interface{}, M),
) (interface{}, M) {
	key := memoKey[M]{Mark: mark, Rule: rule, Args: argKey(args)}
	if entry, ok := p.memo[key]; ok {
		resetMark(entry.End)
		return entry.Result, entry.End
	}

	result, end := body()
	p.memo[key] = memoEntry[M]{Result: result, End: end}
	return result, end
}

// SeedGrow implements the left-recursion seed-and-grow protocol of
// for a rule that is the leader of a left-recursive SCC.
// resetMark restores the tokenizer to a given mark between iterations;
// body runs the rule's ordinary alternative-trying logic once, reading
// whatever is currently memoized for nested (non-leader) invocations at
// the same mark.
func (p *BaseParser[M]) SeedGrow(
	mark M,
	rule string,
	args []interface{},
	resetMark func(M),
	body func() (interface{}, M),
) (interface{}, M) {
	key := memoKey[M]{Mark: mark, Rule: rule, Args: argKey(args)}

	// A nested call into the leader at the same mark lands here too (body
	// recurses back into the leader rule's own method, which dispatches
	// back to SeedGrow). Without this check it would re-seed and re-grow
	// forever instead of reading back the seed the outer call just planted,
	// so the recursion never bottoms out on the base-case alternative.
	// Consulting the cache first makes growth re-entrant: the outer call
	// finds nothing and proceeds to seed, every nested call finds the seed
	// (or the latest grown result) and returns immediately.
	if entry, ok := p.memo[key]; ok {
		resetMark(entry.End)
		return entry.Result, entry.End
	}

	// Step 1: seed with FAILURE so the first nested recursive call into
	// this same rule at this same mark immediately fails and lets the
	// base case of the alternative win.
	p.memo[key] = memoEntry[M]{Result: FAILURE, End: mark}

	lastEnd := mark
	var lastResult interface{} = FAILURE

	p.LeftRecDepth++
	defer func() { p.LeftRecDepth-- }()

	for {
		resetMark(mark)
		result, end := body()

		if IsFailure(result) {
			break
		}
		if !p.Less(lastEnd, end) {
			// end <= lastEnd: no more growth, stop growing.
			break
		}

		p.memo[key] = memoEntry[M]{Result: result, End: end}
		lastResult, lastEnd = result, end
	}

	resetMark(lastEnd)
	return lastResult, lastEnd
}

// Tracef writes a verbosity-gated diagnostic trace to stderr, indented by
// the parser's current debug depth. The ambient stack carries no
// structured-logging dependency (see DESIGN.md); this mirrors the
// teacher's own fmt.Println debug traces in ictiobus.ProcessFishiMd.
func (p *BaseParser[M]) Tracef(level int, format string, a ...interface{}) {
	if p.Verbosity < level {
		return
	}
	indent := ""
	for i := 0; i < p.debugIndent; i++ {
		indent += "  "
	}
	fmt.Fprintf(os.Stderr, indent+format+"\n", a...)
}

// Enter and Leave bracket a rule invocation for Tracef's indentation.
func (p *BaseParser[M]) Enter() { p.debugIndent++ }
func (p *BaseParser[M]) Leave() {
	if p.debugIndent > 0 {
		p.debugIndent--
	}
}
