package analysis

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/dekarrin/pegquest/internal/peg/metaparser"
	"github.com/dekarrin/pegquest/internal/peg/pegerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Analyze_UndeclaredNameIsValidationError(t *testing.T) {
	require := require.New(t)

	src := `start: foo ENDMARKER
foo: bar NAME`
	g, err := metaparser.Parse(src, "test.peg")
	require.NoError(err)

	_, err = Analyze(g)
	require.Error(err)
	var verr *pegerrors.ValidationError
	require.ErrorAs(err, &verr)
}

func Test_Analyze_SimpleSelfLeftRecursion(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `expr: expr '+' term { 1 }
    | term { 2 }
term: NUMBER`
	g, err := metaparser.Parse(src, "test.peg")
	require.NoError(err)

	_, err = Analyze(g)
	require.NoError(err)

	expr := g.LookupRule("expr")
	require.NotNil(expr)
	assert.True(expr.LeftRecursive)
	assert.True(expr.Leader)

	term := g.LookupRule("term")
	require.NotNil(term)
	assert.False(term.LeftRecursive)
}

func Test_Analyze_MutualLeftRecursionPicksLexicallySmallestLeader(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `a: b 'x' { 1 }
    | 'y' { 2 }
b: a 'z' { 1 }
    | 'w' { 2 }`
	g, err := metaparser.Parse(src, "test.peg")
	require.NoError(err)

	_, err = Analyze(g)
	require.NoError(err)

	a := g.LookupRule("a")
	b := g.LookupRule("b")
	require.NotNil(a)
	require.NotNil(b)
	assert.True(a.LeftRecursive)
	assert.True(b.LeftRecursive)
	assert.True(a.Leader, "lexicographically smaller member of the SCC should be leader")
	assert.False(b.Leader)
}

func Test_Analyze_NullableFixedPoint(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `start: a b NEWLINE
a: "x"?
b: a`
	g, err := metaparser.Parse(src, "test.peg")
	require.NoError(err)

	result, err := Analyze(g)
	require.NoError(err)
	require.NotNil(result)

	a := g.LookupRule("a")
	b := g.LookupRule("b")
	require.NotNil(a)
	require.NotNil(b)
	assert.True(a.Nullable)
	assert.True(b.Nullable, "b is nullable because it delegates entirely to nullable a")
}

func Test_Analyze_ShadowedAlternativeIsValidationError(t *testing.T) {
	require := require.New(t)

	src := `start: NAME
    | NAME NUMBER`
	g, err := metaparser.Parse(src, "test.peg")
	require.NoError(err)

	_, err = Analyze(g)
	require.Error(err)
	var verr *pegerrors.ValidationError
	require.ErrorAs(err, &verr)
}

func Test_Analyze_GraphAndSCCsExposedOnResult(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `start: expr NEWLINE
expr: expr '+' term { 1 }
    | term { 2 }
term: NUMBER`
	g, err := metaparser.Parse(src, "test.peg")
	require.NoError(err)

	result, err := Analyze(g)
	require.NoError(err)
	require.NotNil(result.Graph)
	require.NotEmpty(result.SCCs)

	neighbors := result.Graph.Neighbors("start")
	assert.Contains(neighbors, "expr")
}

// Test_Analyze_SCCMembershipStableAcrossMutuallyRecursiveRules uses go-cmp
// instead of testify's reflect-based equality: an SCC is a set, so two runs
// that agree on membership but disagree on slice order must still compare
// equal, which require.ElementsMatch only checks one level deep and would
// miss inside a [][]string.
func Test_Analyze_SCCMembershipStableAcrossMutuallyRecursiveRules(t *testing.T) {
	require := require.New(t)

	src := `start: a NEWLINE
a: b '+' NAME { 1 }
    | NAME { 2 }
b: a '-' NAME { 1 }
    | NAME { 2 }`
	g, err := metaparser.Parse(src, "test.peg")
	require.NoError(err)

	result, err := Analyze(g)
	require.NoError(err)

	var mutual []string
	for _, scc := range result.SCCs {
		if len(scc) > 1 {
			mutual = append(mutual, scc...)
		}
	}
	sort.Strings(mutual)

	want := []string{"a", "b"}
	if diff := cmp.Diff(want, mutual, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("mutually-recursive SCC membership mismatch (-want +got):\n%s", diff)
	}
}

func Test_Analyze_ValidGrammarWithNoIssues(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `start: NAME NUMBER NEWLINE $`
	g, err := metaparser.Parse(src, "test.peg")
	require.NoError(err)

	_, err = Analyze(g)
	require.NoError(err)

	start := g.LookupRule("start")
	require.NotNil(start)
	assert.False(start.LeftRecursive)
	assert.False(start.Nullable)
}
