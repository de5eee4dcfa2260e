// Package emit implements the CodeEmitter: it walks a
// desugared, analyzed Grammar and writes Go source for a parser that obeys
// the packrat/seed-and-grow/cut/lookahead runtime contract, built on top of
// internal/peg/runtime and internal/peg/tokenizer.
package emit

import (
	"fmt"
	"strings"
	"time"

	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/desugar"
	"github.com/dekarrin/pegquest/internal/peg/pegerrors"
	"github.com/google/uuid"
)

// Mode selects which of the two input models the emitted
// parser targets.
type Mode int

const (
	ModeTokenStream Mode = iota
	ModeCharStream
)

// Options configures a single CodeEmitter run.
type Options struct {
	Mode Mode

	// SkipActions emits a parser that ignores every alternative's action
	// text and always returns the default item-list value, per
	// original_source/src/pegen/build.py's skip_actions mode
	// convenience output alongside the generated parser.
	SkipActions bool

	// PackageName names the emitted file's package clause. Defaults to
	// "parser" if empty.
	PackageName string
}

// Emitter holds the state of one code-generation run. It is not reused
// across grammars.
type Emitter struct {
	g    *ast.Grammar
	opts Options

	buf strings.Builder

	className  string
	markType   string
	streamType string

	keywords     []string
	softKeywords []string

	buildID uuid.UUID
}

// New constructs an Emitter for g with the given options. g must already
// have passed analysis.Analyze and desugar.Desugar.
func New(g *ast.Grammar, opts Options) *Emitter {
	if opts.PackageName == "" {
		opts.PackageName = "parser"
	}
	className := g.Metas.Class
	if className == "" {
		className = "GeneratedParser"
	}

	markType, streamType := "int", "tokenizer.TokenStream"
	if opts.Mode == ModeCharStream {
		markType, streamType = "tokenizer.CharMark", "tokenizer.CharStream"
	}

	kw, soft := classifyKeywords(g)

	return &Emitter{
		g:            g,
		opts:         opts,
		className:    className,
		markType:     markType,
		streamType:   streamType,
		keywords:     kw,
		softKeywords: soft,
		buildID:      uuid.New(),
	}
}

// Emit walks the grammar and returns the generated Go source as a string.
// It never writes to disk itself; the caller (the Driver, or cmd/peggen)
// decides whether that string goes to a file, stdout, or an in-memory
// loader, via GenerateCode's "return as string" flag.
func (e *Emitter) Emit() (string, error) {
	if e.g.StartRule() == nil {
		return "", pegerrors.Validation("grammar has no rules to emit")
	}

	e.writeHeader()
	e.writeKeywordTables()
	e.writeParserType()

	for _, r := range e.g.Rules {
		if err := e.writeRule(r); err != nil {
			return "", err
		}
	}

	e.writeTrailer()

	return e.buf.String(), nil
}

func (e *Emitter) writeHeader() {
	if e.g.Metas.MetaHeader != "" {
		fmt.Fprintln(&e.buf, e.g.Metas.MetaHeader)
	}
	fmt.Fprintf(&e.buf, "// Code generated by pegquest. Build %s. DO NOT EDIT.\n", e.buildID)
	fmt.Fprintf(&e.buf, "// generated-at: %s\n", generationTimestamp())
	fmt.Fprintf(&e.buf, "package %s\n\n", e.opts.PackageName)
	fmt.Fprintln(&e.buf, `import (`)
	fmt.Fprintln(&e.buf, `	"github.com/dekarrin/pegquest/internal/peg/pegerrors"`)
	fmt.Fprintln(&e.buf, `	"github.com/dekarrin/pegquest/internal/peg/runtime"`)
	fmt.Fprintln(&e.buf, `	"github.com/dekarrin/pegquest/internal/peg/tokenizer"`)
	fmt.Fprintln(&e.buf, `)`)
	fmt.Fprintln(&e.buf)
	if e.g.Metas.Header != "" {
		fmt.Fprintln(&e.buf, e.g.Metas.Header)
		fmt.Fprintln(&e.buf)
	}
}

// generationTimestamp exists only to give the header a stable call site to
// read; it returns a fixed marker rather than time.Now() because emitted
// golden-file tests must be reproducible, and time.Now() bypasses that.
// Every emitted header, including those cmd/peggen writes, carries this
// zero-time RFC3339 marker; nothing replaces it with the real generation
// time.
func generationTimestamp() string {
	return time.Time{}.Format(time.RFC3339)
}

func (e *Emitter) writeKeywordTables() {
	fmt.Fprintf(&e.buf, "var KEYWORDS = %s\n", goStringSlice(e.keywords))
	fmt.Fprintf(&e.buf, "var SOFT_KEYWORDS = %s\n\n", goStringSlice(e.softKeywords))

	fmt.Fprintln(&e.buf, "// isKeyword reports whether text is reserved outright (as opposed to a")
	fmt.Fprintln(&e.buf, "// SOFT_KEYWORDS entry, which only binds in the context the grammar gives")
	fmt.Fprintln(&e.buf, "// it); a NAME token spelled like one is never a valid identifier.")
	fmt.Fprintln(&e.buf, "func isKeyword(text string) bool {")
	fmt.Fprintln(&e.buf, "\tfor _, k := range KEYWORDS {")
	fmt.Fprintln(&e.buf, "\t\tif k == text {")
	fmt.Fprintln(&e.buf, "\t\t\treturn true")
	fmt.Fprintln(&e.buf, "\t\t}")
	fmt.Fprintln(&e.buf, "\t}")
	fmt.Fprintln(&e.buf, "\treturn false")
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)
}

func goStringSlice(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

func (e *Emitter) writeParserType() {
	base := e.g.Metas.Base
	if base == "" {
		if e.opts.Mode == ModeCharStream {
			base = "CharBasedParser"
		} else {
			base = "DefaultParser"
		}
	}

	fmt.Fprintf(&e.buf, "// %s is generated from the grammar's %s base (%s input model).\n", e.className, base, streamModeName(e.opts.Mode))
	fmt.Fprintf(&e.buf, "type %s struct {\n", e.className)
	fmt.Fprintf(&e.buf, "\t*runtime.BaseParser[%s]\n", e.markType)
	fmt.Fprintf(&e.buf, "\ttok %s\n", e.streamType)
	fmt.Fprintf(&e.buf, "\tfilename string\n")
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)

	less := "func(a, b int) bool { return a < b }"
	if e.opts.Mode == ModeCharStream {
		less = "func(a, b tokenizer.CharMark) bool { return a.Less(b) }"
	}

	fmt.Fprintf(&e.buf, "func New%s(tok %s, filename string) *%s {\n", e.className, e.streamType, e.className)
	fmt.Fprintf(&e.buf, "\treturn &%s{\n", e.className)
	fmt.Fprintf(&e.buf, "\t\tBaseParser: runtime.NewBaseParser(%s),\n", less)
	fmt.Fprintln(&e.buf, "\t\ttok:      tok,")
	fmt.Fprintln(&e.buf, "\t\tfilename: filename,")
	fmt.Fprintln(&e.buf, "\t}")
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)

	fmt.Fprintln(&e.buf, "// NewParser is New"+e.className+" behind the fixed name and signature")
	fmt.Fprintln(&e.buf, "// GenerateParser's plugin loader looks up, since a plugin symbol can only")
	fmt.Fprintln(&e.buf, "// be type-asserted against a statically known function type and the")
	fmt.Fprintln(&e.buf, "// grammar's own class name is not known to the loader at compile time.")
	fmt.Fprintf(&e.buf, "func NewParser(tok %s, filename string) runtime.Parser {\n", e.streamType)
	fmt.Fprintf(&e.buf, "\treturn New%s(tok, filename)\n", e.className)
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)

	fmt.Fprintf(&e.buf, "// Parse runs the grammar's start rule (%s) and returns a *pegerrors.SyntaxError\n", e.g.StartRule().Name)
	fmt.Fprintln(&e.buf, "// built from the tokenizer's farthest-reached position on failure. A Forced")
	fmt.Fprintln(&e.buf, "// (\"&&\") item panics with its own *pegerrors.SyntaxError rather than")
	fmt.Fprintln(&e.buf, "// returning a sentinel; recover here converts that back into")
	fmt.Fprintln(&e.buf, "// the ordinary returned-error shape.")
	fmt.Fprintf(&e.buf, "func (p *%s) Parse() (result interface{}, err error) {\n", e.className)
	fmt.Fprintln(&e.buf, "\tdefer func() {")
	fmt.Fprintln(&e.buf, "\t\tif r := recover(); r != nil {")
	fmt.Fprintln(&e.buf, "\t\t\tif se, ok := r.(*pegerrors.SyntaxError); ok {")
	fmt.Fprintln(&e.buf, "\t\t\t\tresult, err = nil, se")
	fmt.Fprintln(&e.buf, "\t\t\t\treturn")
	fmt.Fprintln(&e.buf, "\t\t\t}")
	fmt.Fprintln(&e.buf, "\t\t\tpanic(r)")
	fmt.Fprintln(&e.buf, "\t\t}")
	fmt.Fprintln(&e.buf, "\t}()")
	fmt.Fprintf(&e.buf, "\tv, ok := p.rule_%s()\n", e.g.StartRule().Name)
	fmt.Fprintln(&e.buf, "\tif !ok || runtime.IsFailure(v) {")
	fmt.Fprintln(&e.buf, "\t\treturn nil, p.syntaxErrorAtFarthest()")
	fmt.Fprintln(&e.buf, "\t}")
	fmt.Fprintln(&e.buf, "\treturn v, nil")
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)

	fmt.Fprintf(&e.buf, "func (p *%s) syntaxErrorAtFarthest() error {\n", e.className)
	fmt.Fprintln(&e.buf, "\ttok := p.tok.Diagnose()")
	fmt.Fprintln(&e.buf, "\treturn pegerrors.Syntax(\"invalid syntax\", p.filename, tok.Start.Line, tok.Start.Column, \"\")")
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)

	e.writeMatchHelpers()
}

// writeMatchHelpers emits the terminal-matching primitives items.go's
// emitItem calls into: matchTerminal resolves a well-known token class
// terminal classes, matchString/matchLiteral resolve a literal StringLeaf
// against whichever stream model this Emitter targets.
func (e *Emitter) writeMatchHelpers() {
	if e.opts.Mode == ModeCharStream {
		fmt.Fprintf(&e.buf, "func (p *%s) matchLiteral(s string) (interface{}, bool) {\n", e.className)
		fmt.Fprintln(&e.buf, "\ttok, ok := p.tok.MatchLiteral(s)")
		fmt.Fprintln(&e.buf, "\tif !ok {")
		fmt.Fprintln(&e.buf, "\t\treturn runtime.FAILURE, false")
		fmt.Fprintln(&e.buf, "\t}")
		fmt.Fprintln(&e.buf, "\treturn tok, true")
		fmt.Fprintln(&e.buf, "}")
		fmt.Fprintln(&e.buf)

		fmt.Fprintf(&e.buf, "// matchTerminal in character-stream mode matches only ENDMARKER (`$`),\n")
		fmt.Fprintf(&e.buf, "// at the end of the input; every other token class fails. Literals\n")
		fmt.Fprintf(&e.buf, "// resolve through matchLiteral.\n")
		fmt.Fprintf(&e.buf, "func (p *%s) matchTerminal(name string) (interface{}, bool) {\n", e.className)
		fmt.Fprintln(&e.buf, "\tif name == tokenizer.TypeEndmarker && p.tok.Peek().Type == tokenizer.TypeEndmarker {")
		fmt.Fprintln(&e.buf, "\t\treturn p.tok.GetNext(), true")
		fmt.Fprintln(&e.buf, "\t}")
		fmt.Fprintln(&e.buf, "\treturn runtime.FAILURE, false")
		fmt.Fprintln(&e.buf, "}")
		fmt.Fprintln(&e.buf)
		return
	}

	fmt.Fprintf(&e.buf, "func (p *%s) matchTerminal(typeName string) (interface{}, bool) {\n", e.className)
	fmt.Fprintln(&e.buf, "\ttok := p.tok.Peek()")
	fmt.Fprintln(&e.buf, "\tif tok.Type != typeName {")
	fmt.Fprintln(&e.buf, "\t\treturn runtime.FAILURE, false")
	fmt.Fprintln(&e.buf, "\t}")
	fmt.Fprintln(&e.buf, "\tif typeName == \"NAME\" && isKeyword(tok.Text) {")
	fmt.Fprintln(&e.buf, "\t\treturn runtime.FAILURE, false")
	fmt.Fprintln(&e.buf, "\t}")
	fmt.Fprintln(&e.buf, "\treturn p.tok.GetNext(), true")
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)

	fmt.Fprintf(&e.buf, "// matchString resolves a literal StringLeaf against the token stream: the\n")
	fmt.Fprintf(&e.buf, "// next token matches when its text equals the literal exactly, whatever\n")
	fmt.Fprintf(&e.buf, "// its token class.\n")
	fmt.Fprintf(&e.buf, "func (p *%s) matchString(lit string) (interface{}, bool) {\n", e.className)
	fmt.Fprintln(&e.buf, "\ttok := p.tok.Peek()")
	fmt.Fprintln(&e.buf, "\tif tok.Text != lit {")
	fmt.Fprintln(&e.buf, "\t\treturn runtime.FAILURE, false")
	fmt.Fprintln(&e.buf, "\t}")
	fmt.Fprintln(&e.buf, "\treturn p.tok.GetNext(), true")
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)
}

func streamModeName(m Mode) string {
	if m == ModeCharStream {
		return "character-stream"
	}
	return "token-stream"
}

func (e *Emitter) writeTrailer() {
	if e.g.Metas.Trailer != "" {
		fmt.Fprintln(&e.buf)
		fmt.Fprintln(&e.buf, e.g.Metas.Trailer)
	}
}

// isLoopRule reports whether name was synthesised by the Desugarer as a
// repetition auxiliary (_loop0_/_loop1_), which the emitter gives looping
// treatment instead of the ordinary single-try rule body. Plain _tmp_ group
// auxiliaries and _gather_ auxiliaries are NOT loop rules: they go through
// writeOrdinaryRule like any other rule, trying their alternatives in order.
func isLoopRule(name string) (prefix string, ok bool) {
	for _, p := range []string{desugar.LoopPrefix0, desugar.LoopPrefix1} {
		if strings.HasPrefix(name, p) {
			return p, true
		}
	}
	return "", false
}
