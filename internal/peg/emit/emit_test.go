package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dekarrin/pegquest/internal/peg/analysis"
	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/desugar"
	"github.com/dekarrin/pegquest/internal/peg/metaparser"
)

func Test_Emit_SimpleGrammarProducesParserType(t *testing.T) {
	require := require.New(t)

	src := "start: NAME { $1 }\n"
	g, err := metaparser.Parse(src, "<test>")
	require.NoError(err)
	_, err = analysis.Analyze(g)
	require.NoError(err)
	require.NoError(desugar.Desugar(g))

	e := New(g, Options{})
	out, err := e.Emit()
	require.NoError(err)

	require.Contains(out, "package parser")
	require.Contains(out, "type GeneratedParser struct")
	require.Contains(out, "func NewGeneratedParser(")
	require.Contains(out, "func (p *GeneratedParser) Parse() (result interface{}, err error)")
	require.Contains(out, "func (p *GeneratedParser) rule_start()")
	require.Contains(out, "p.matchTerminal(\"NAME\")")
}

func Test_Emit_ErrorsWhenGrammarHasNoRules(t *testing.T) {
	require := require.New(t)

	g := &ast.Grammar{}
	e := New(g, Options{})
	_, err := e.Emit()
	require.Error(err)
}

func Test_Emit_AlternativesTriedInOrder(t *testing.T) {
	require := require.New(t)

	src := "start: 'if' NAME { 1 } | NAME { 2 }\n"
	g, err := metaparser.Parse(src, "<test>")
	require.NoError(err)
	_, err = analysis.Analyze(g)
	require.NoError(err)
	require.NoError(desugar.Desugar(g))

	e := New(g, Options{})
	out, err := e.Emit()
	require.NoError(err)

	require.Contains(out, "_startAlts := []func() (interface{}, bool, bool){")
	require.Contains(out, "for _, alt := range _startAlts {")
	require.NotContains(out, "goto ")
}

func Test_Emit_LeftRecursiveLeaderUsesSeedGrow(t *testing.T) {
	require := require.New(t)

	src := "expr: expr '+' NAME { 1 } | NAME { 2 }\n"
	g, err := metaparser.Parse(src, "<test>")
	require.NoError(err)
	_, err = analysis.Analyze(g)
	require.NoError(err)
	require.NoError(desugar.Desugar(g))

	e := New(g, Options{})
	out, err := e.Emit()
	require.NoError(err)

	require.Contains(out, "p.SeedGrow(mark, \"expr\"")
}

func Test_Emit_RepetitionProducesLoopRule(t *testing.T) {
	require := require.New(t)

	src := "items: NAME* { 1 }\n"
	g, err := metaparser.Parse(src, "<test>")
	require.NoError(err)
	_, err = analysis.Analyze(g)
	require.NoError(err)
	require.NoError(desugar.Desugar(g))

	e := New(g, Options{})
	out, err := e.Emit()
	require.NoError(err)

	require.Contains(out, "func (p *GeneratedParser) rule__loop0_0()")
	require.Contains(out, "items := make([]interface{}, 0)")
}

func Test_Emit_ForcedItemPanicsWithSyntaxError(t *testing.T) {
	require := require.New(t)

	src := "start: 'if' &&NAME { 1 }\n"
	g, err := metaparser.Parse(src, "<test>")
	require.NoError(err)
	_, err = analysis.Analyze(g)
	require.NoError(err)
	require.NoError(desugar.Desugar(g))

	e := New(g, Options{})
	out, err := e.Emit()
	require.NoError(err)

	require.Contains(out, "pegerrors.Forced(")
	require.Contains(out, "if r := recover(); r != nil {")
	require.Contains(out, "if se, ok := r.(*pegerrors.SyntaxError); ok {")
}

func Test_Emit_SkipActionsIgnoresActionText(t *testing.T) {
	require := require.New(t)

	src := "start: NAME { doSomethingUserDefined() }\n"
	g, err := metaparser.Parse(src, "<test>")
	require.NoError(err)
	_, err = analysis.Analyze(g)
	require.NoError(err)
	require.NoError(desugar.Desugar(g))

	e := New(g, Options{SkipActions: true})
	out, err := e.Emit()
	require.NoError(err)

	require.NotContains(out, "doSomethingUserDefined")
}

func Test_Emit_CharStreamModeUsesMatchLiteral(t *testing.T) {
	require := require.New(t)

	src := "start: 'x' { 1 }\n"
	g, err := metaparser.Parse(src, "<test>")
	require.NoError(err)
	_, err = analysis.Analyze(g)
	require.NoError(err)
	require.NoError(desugar.Desugar(g))

	e := New(g, Options{Mode: ModeCharStream})
	out, err := e.Emit()
	require.NoError(err)

	require.Contains(out, "tokenizer.CharStream")
	require.Contains(out, "tokenizer.CharMark")
	require.Contains(out, "p.matchLiteral(\"x\")")
}

func Test_Emit_KeywordTablesSplitByQuoteChar(t *testing.T) {
	require := require.New(t)

	src := "start: 'one' NAME \"six\" { 1 }\n"
	g, err := metaparser.Parse(src, "<test>")
	require.NoError(err)
	_, err = analysis.Analyze(g)
	require.NoError(err)
	require.NoError(desugar.Desugar(g))

	e := New(g, Options{})
	out, err := e.Emit()
	require.NoError(err)

	require.Contains(out, `var KEYWORDS = []string{"one"}`)
	require.Contains(out, `var SOFT_KEYWORDS = []string{"six"}`)
}

// Test_Emit_MatchTerminalRejectsKeywordSpelledNames guards against the NAME
// terminal silently accepting a token whose text is a reserved keyword: the
// KEYWORDS table is useless if matchTerminal never consults it.
func Test_Emit_MatchTerminalRejectsKeywordSpelledNames(t *testing.T) {
	require := require.New(t)

	src := "start: 'one' NAME { 1 }\n"
	g, err := metaparser.Parse(src, "<test>")
	require.NoError(err)
	_, err = analysis.Analyze(g)
	require.NoError(err)
	require.NoError(desugar.Desugar(g))

	e := New(g, Options{Mode: ModeTokenStream})
	out, err := e.Emit()
	require.NoError(err)

	require.Contains(out, "func isKeyword(text string) bool {")
	require.Contains(out, `if typeName == "NAME" && isKeyword(tok.Text) {`)
}
