package desugar

import (
	"testing"

	"github.com/dekarrin/pegquest/internal/peg/analysis"
	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/metaparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeAndDesugar(t *testing.T, src string) *ast.Grammar {
	t.Helper()
	g, err := metaparser.Parse(src, "test.peg")
	require.NoError(t, err)
	_, err = analysis.Analyze(g)
	require.NoError(t, err)
	require.NoError(t, Desugar(g))
	return g
}

func Test_Desugar_GroupBecomesNamedRule(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := analyzeAndDesugar(t, `start: ("a" | "b") NEWLINE`)

	start := g.LookupRule("start")
	require.NotNil(start)
	item := start.Rhs.Alts[0].Items[0].Item
	name, ok := item.(ast.NameLeaf)
	require.True(ok)
	assert.Equal(GroupPrefix+"0", name.Name)

	synth := g.LookupRule(name.Name)
	require.NotNil(synth)
	require.True(synth.IsSynthetic())
	require.Len(synth.Rhs.Alts, 2)
}

func Test_Desugar_Repeat0BecomesLoopRule(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := analyzeAndDesugar(t, `start: NAME* NEWLINE`)

	start := g.LookupRule("start")
	item := start.Rhs.Alts[0].Items[0].Item
	name, ok := item.(ast.NameLeaf)
	require.True(ok)
	assert.Equal(LoopPrefix0+"0", name.Name)

	loop := g.LookupRule(name.Name)
	require.NotNil(loop)
	require.Len(loop.Rhs.Alts, 1)
	require.Len(loop.Rhs.Alts[0].Items, 1)
	assert.Equal(ast.NameLeaf{Name: "NAME"}, loop.Rhs.Alts[0].Items[0].Item)
}

func Test_Desugar_Repeat1BecomesLoopRule(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := analyzeAndDesugar(t, `start: NAME+ NEWLINE`)

	start := g.LookupRule("start")
	item := start.Rhs.Alts[0].Items[0].Item
	name, ok := item.(ast.NameLeaf)
	require.True(ok)
	assert.Equal(LoopPrefix1+"0", name.Name)
}

func Test_Desugar_GatherProducesLoopAndGatherRules(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := analyzeAndDesugar(t, `items: ',' . NAME +`)

	rule := g.LookupRule("items")
	item := rule.Rhs.Alts[0].Items[0].Item
	gatherRef, ok := item.(ast.NameLeaf)
	require.True(ok)
	assert.Equal(GatherPrefix+"1", gatherRef.Name)

	gather := g.LookupRule(gatherRef.Name)
	require.NotNil(gather)
	require.True(gather.IsSynthetic())
	require.Len(gather.Rhs.Alts[0].Items, 2)
	assert.Equal("first", gather.Rhs.Alts[0].Items[0].Name)
	assert.Equal("rest", gather.Rhs.Alts[0].Items[1].Name)
	assert.NotEmpty(gather.Rhs.Alts[0].Action)

	loopRef := gather.Rhs.Alts[0].Items[1].Item.(ast.NameLeaf)
	loop := g.LookupRule(loopRef.Name)
	require.NotNil(loop)
	assert.Equal(LoopPrefix0+"0", loop.Name)
	require.Len(loop.Rhs.Alts[0].Items, 2)
	assert.Equal(ast.StringLeaf{Value: ",", Quote: '\''}, loop.Rhs.Alts[0].Items[0].Item)
	assert.Equal("n", loop.Rhs.Alts[0].Items[1].Name)
	assert.Equal("n", loop.Rhs.Alts[0].Action)
}

func Test_Desugar_OptIsKeptInline(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	before, err := metaparser.Parse(`start: NAME?`, "test.peg")
	require.NoError(err)
	ruleCountBefore := len(before.Rules)

	g := analyzeAndDesugar(t, `start: NAME?`)
	assert.Equal(ruleCountBefore, len(g.Rules), "Opt must not spawn a synthetic rule")

	item := g.Rules[0].Rhs.Alts[0].Items[0].Item
	_, ok := item.(ast.Opt)
	assert.True(ok)
}

func Test_Desugar_NestedConstructsEachGetOwnRule(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := analyzeAndDesugar(t, `start: (NAME NUMBER*)+ NEWLINE`)

	var synthetic int
	for _, r := range g.Rules {
		if r.IsSynthetic() {
			synthetic++
		}
	}
	assert.GreaterOrEqual(synthetic, 2, "both the group and the inner/outer repeats need synthetic rules")
}
