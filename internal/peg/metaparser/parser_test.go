package metaparser

import (
	"testing"

	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_SimpleRule(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `start: a=NUMBER "+" b=NUMBER NEWLINE $`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	require.Len(g.Rules, 1)

	r := g.Rules[0]
	assert.Equal("start", r.Name)
	require.Len(r.Rhs.Alts, 1)
	alt := r.Rhs.Alts[0]
	require.Len(alt.Items, 5)
	assert.Equal("a", alt.Items[0].Name)
	assert.Equal(ast.NameLeaf{Name: "NUMBER"}, alt.Items[0].Item)
	assert.Equal(ast.StringLeaf{Value: "+", Quote: '"'}, alt.Items[1].Item)
	assert.Equal("b", alt.Items[2].Name)
	assert.Equal(ast.NameLeaf{Name: "NUMBER"}, alt.Items[2].Item)
	assert.Equal(ast.NameLeaf{Name: "NEWLINE"}, alt.Items[3].Item)
	assert.Equal(ast.NameLeaf{Name: "ENDMARKER"}, alt.Items[4].Item)
}

func Test_Parse_Action(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `start: a=NUMBER "+" b=NUMBER NEWLINE $ { int(a.string)+int(b.string) }`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	alt := g.Rules[0].Rhs.Alts[0]
	assert.Equal("int(a.string)+int(b.string)", alt.Action)
}

func Test_Parse_MultipleAlternatives(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `
expr: expr '+' term { 1 }
    | expr '-' term { 2 }
    | term { 3 }
term: NUMBER
`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	require.Len(g.Rules, 2)
	assert.Equal("expr", g.Rules[0].Name)
	require.Len(g.Rules[0].Rhs.Alts, 3)
	assert.Equal("term", g.Rules[1].Name)
}

func Test_Parse_CutOperator(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `start: '(' ~ expr ')' | '(' name ')'
expr: NUMBER
name: NAME`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	alt0 := g.Rules[0].Rhs.Alts[0]
	assert.True(alt0.HasCut())
	assert.Equal(1, alt0.CutIndex)

	alt1 := g.Rules[0].Rhs.Alts[1]
	assert.False(alt1.HasCut())
}

func Test_Parse_QuantifiersAndGroups(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `start: ("a" | "b")+ $`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	item := g.Rules[0].Rhs.Alts[0].Items[0]
	rep1, ok := item.Item.(ast.Repeat1)
	require.True(ok)
	_, ok = rep1.Item.(ast.Group)
	assert.True(ok)
}

func Test_Parse_Gather(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `items: ',' . NAME +`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	item := g.Rules[0].Rhs.Alts[0].Items[0]
	gather, ok := item.Item.(ast.Gather)
	require.True(ok)
	assert.Equal(ast.StringLeaf{Value: ",", Quote: '\''}, gather.Separator)
	assert.Equal(ast.NameLeaf{Name: "NAME"}, gather.Node)
}

func Test_Parse_Lookaheads(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `start: &&NAME !NUMBER &STRING`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	items := g.Rules[0].Rhs.Alts[0].Items
	_, ok := items[0].Item.(ast.Forced)
	assert.True(ok)
	_, ok = items[1].Item.(ast.NegativeLookahead)
	assert.True(ok)
	_, ok = items[2].Item.(ast.PositiveLookahead)
	assert.True(ok)
}

func Test_Parse_Metas(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `@class MyParser
@base DefaultParser
@trailer { package footer }
start: NAME`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	assert.Equal("MyParser", g.Metas.Class)
	assert.Equal("DefaultParser", g.Metas.Base)
	assert.Equal("package footer", g.Metas.Trailer)
}

func Test_Parse_Extern(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `extern bar[int]
start: bar NAME`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	require.Len(g.Externs, 1)
	assert.Equal("bar", g.Externs[0].Name)
	assert.Equal("int", g.Externs[0].Type)
}

func Test_Parse_ReservedPrefixRejected(t *testing.T) {
	require := require.New(t)

	src := `_tmp: NAME`
	_, err := Parse(src, "test.peg")
	require.Error(err)
}

func Test_Parse_DuplicateRuleRejected(t *testing.T) {
	require := require.New(t)

	src := `start: NAME
start: NUMBER`
	_, err := Parse(src, "test.peg")
	require.Error(err)
}

func Test_Parse_EmptyGrammarRejected(t *testing.T) {
	require := require.New(t)

	_, err := Parse("", "test.peg")
	require.Error(err)
}

func Test_Parse_TypeAnnotations(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `start[int]: a=NUMBER[int]`
	g, err := Parse(src, "test.peg")
	require.NoError(err)
	assert.Equal("int", g.Rules[0].Type)
	assert.Equal("int", g.Rules[0].Rhs.Alts[0].Items[0].Type)
}
