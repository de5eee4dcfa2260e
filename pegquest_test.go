package pegquest

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dekarrin/pegquest/internal/peg/emit"
)

// Test_Driver_LoadAndGenerate_Arithmetic runs the full
// LoadGrammarFile/GenerateCodeString pipeline over the checked-in
// testdata/arithmetic.peg grammar, the module's golden end-to-end fixture.
// It checks structural landmarks rather than a byte-exact golden file, since
// the emitted header carries a fresh build-id UUID on every run.
func Test_Driver_LoadAndGenerate_Arithmetic(t *testing.T) {
	require := require.New(t)

	_, err := os.Stat("testdata/arithmetic.peg")
	require.NoError(err, "testdata/arithmetic.peg must exist")

	d := Driver{Emit: emit.Options{Mode: emit.ModeTokenStream}}

	g, err := d.LoadGrammarFile("testdata/arithmetic.peg")
	require.NoError(err)
	require.Equal("ArithmeticParser", g.Metas.Class)
	require.NotNil(g.LookupRule("expr"))
	require.NotNil(g.LookupRule("term"))
	require.NotNil(g.LookupRule("factor"))

	out, err := d.GenerateCodeString(g)
	require.NoError(err)

	require.Contains(out, "package parser")
	require.Contains(out, "type ArithmeticParser struct")
	require.Contains(out, "func NewArithmeticParser(")
	require.Contains(out, "func NewParser(")
	require.Contains(out, "func (p *ArithmeticParser) rule_expr()")
	require.Contains(out, "func (p *ArithmeticParser) rule_term()")
	require.Contains(out, "func (p *ArithmeticParser) rule_factor()")
}

func Test_Driver_LoadGrammarSource_RejectsUndeclaredName(t *testing.T) {
	require := require.New(t)

	d := Driver{}
	_, err := d.LoadGrammarSource("start: foo NAME\nfoo: bar NAME", "<test>")
	require.Error(err)
}
