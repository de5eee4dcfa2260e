package emit

import (
	"fmt"
	"strings"

	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/desugar"
)

// writeRule emits one rule's Go method(s). Loop auxiliaries
// synthesised by the Desugarer (names starting with desugar.LoopPrefix0 or
// desugar.LoopPrefix1) get the special repeat-until-failure body; every
// other rule, including the desugar.GroupPrefix and desugar.GatherPrefix
// auxiliaries, gets the ordinary alternative-trying body.
func (e *Emitter) writeRule(r *ast.Rule) error {
	if prefix, ok := isLoopRule(r.Name); ok {
		return e.writeLoopRule(r, prefix == desugar.LoopPrefix1)
	}
	return e.writeOrdinaryRule(r)
}

func (e *Emitter) writeOrdinaryRule(r *ast.Rule) error {
	altFuncs := make([]string, 0, len(r.Rhs.Alts))
	for i, alt := range r.Rhs.Alts {
		fn, err := e.buildAltClosure(r, alt, i)
		if err != nil {
			return err
		}
		altFuncs = append(altFuncs, fn)
	}

	fmt.Fprintf(&e.buf, "// rule_%s implements %s.\n", r.Name, strings.ReplaceAll(r.Rhs.String(), "\n", " "))
	if r.Nullable {
		fmt.Fprintln(&e.buf, "// nullable: may match without consuming input.")
	}
	fmt.Fprintf(&e.buf, "func (p *%s) rule_%s() (interface{}, bool) {\n", e.className, r.Name)
	fmt.Fprintln(&e.buf, "\tmark := p.tok.Mark()")

	fmt.Fprintf(&e.buf, "\t%sAlts := []func() (interface{}, bool, bool){\n", varPrefix(r.Name))
	for _, fn := range altFuncs {
		fmt.Fprintf(&e.buf, "\t\t%s,\n", fn)
	}
	fmt.Fprintln(&e.buf, "\t}")

	fmt.Fprintf(&e.buf, "\tresult, end := p.%s(mark, %q, nil, p.tok.Reset, func() (interface{}, %s) {\n",
		memoMethod(r), r.Name, e.markType)
	fmt.Fprintf(&e.buf, "\t\tfor _, alt := range %sAlts {\n", varPrefix(r.Name))
	fmt.Fprintln(&e.buf, "\t\t\tif v, ok, committed := alt(); ok {")
	fmt.Fprintln(&e.buf, "\t\t\t\treturn v, p.tok.Mark()")
	fmt.Fprintln(&e.buf, "\t\t\t} else if committed {")
	fmt.Fprintln(&e.buf, "\t\t\t\tbreak")
	fmt.Fprintln(&e.buf, "\t\t\t}")
	fmt.Fprintln(&e.buf, "\t\t\tp.tok.Reset(mark)")
	fmt.Fprintln(&e.buf, "\t\t}")
	fmt.Fprintln(&e.buf, "\t\treturn runtime.FAILURE, mark")
	fmt.Fprintln(&e.buf, "\t})")
	fmt.Fprintln(&e.buf, "\tif runtime.IsFailure(result) {")
	fmt.Fprintln(&e.buf, "\t\treturn runtime.FAILURE, false")
	fmt.Fprintln(&e.buf, "\t}")
	fmt.Fprintln(&e.buf, "\t_ = end")
	fmt.Fprintln(&e.buf, "\treturn result, true")
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)
	return nil
}

// memoMethod picks Memoize or SeedGrow depending on whether r is the
// leader of a left-recursive SCC.
func memoMethod(r *ast.Rule) string {
	if r.Leader {
		return "SeedGrow"
	}
	return "Memoize"
}

func varPrefix(ruleName string) string {
	return "_" + strings.TrimPrefix(ruleName, "_")
}

// buildAltClosure renders one alternative as a Go func literal of type
// func() (interface{}, bool, bool) — (value, matched, cutCommitted).
func (e *Emitter) buildAltClosure(r *ast.Rule, alt *ast.Alt, altIdx int) (string, error) {
	var b strings.Builder
	fmt.Fprintln(&b, "func() (interface{}, bool, bool) {")
	fmt.Fprintln(&b, "\t\t_start := p.tok.Mark()")
	fmt.Fprintln(&b, "\t\t_committed := false")

	var valueVars []string
	for i, top := range alt.Items {
		code, err := e.emitItem(top, i)
		if err != nil {
			return "", err
		}
		fmt.Fprintln(&b, "\t\t"+code.stmt)
		if code.contributesValue {
			valueVars = append(valueVars, code.varName)
		}
	}

	action := alt.Action
	if e.opts.SkipActions {
		action = ""
	}

	if action != "" {
		fmt.Fprintf(&b, "\t\t_result := func() interface{} { return %s }()\n", action)
	} else {
		fmt.Fprintf(&b, "\t\t_result := []interface{}{%s}\n", strings.Join(valueVars, ", "))
	}
	fmt.Fprintln(&b, "\t\treturn _result, true, _committed")
	fmt.Fprint(&b, "\t}")

	return b.String(), nil
}

// writeLoopRule emits the special repeat-until-failure body the
// CodeEmitter uses for _loop0_/_loop1_ auxiliaries: the
// synthesised rule always has exactly one alternative, which is evaluated
// repeatedly until it fails to match, collecting each success into a
// slice. _loop1_ rules additionally require at least one match.
func (e *Emitter) writeLoopRule(r *ast.Rule, requireOne bool) error {
	alt := r.Rhs.Alts[0]
	fn, err := e.buildAltClosure(r, alt, 0)
	if err != nil {
		return err
	}

	fmt.Fprintf(&e.buf, "// rule_%s is a Desugarer-synthesised repetition of %s.\n", r.Name, strings.ReplaceAll(alt.String(), "\n", " "))
	fmt.Fprintf(&e.buf, "func (p *%s) rule_%s() (interface{}, bool) {\n", e.className, r.Name)
	fmt.Fprintln(&e.buf, "\tmark := p.tok.Mark()")
	fmt.Fprintf(&e.buf, "\t%sIter := %s\n", varPrefix(r.Name), fn)
	fmt.Fprintf(&e.buf, "\tresult, _ := p.Memoize(mark, %q, nil, p.tok.Reset, func() (interface{}, %s) {\n", r.Name, e.markType)
	fmt.Fprintln(&e.buf, "\t\titems := make([]interface{}, 0)")
	fmt.Fprintln(&e.buf, "\t\tfor {")
	fmt.Fprintf(&e.buf, "\t\t\tv, ok, _ := %sIter()\n", varPrefix(r.Name))
	fmt.Fprintln(&e.buf, "\t\t\tif !ok {")
	fmt.Fprintln(&e.buf, "\t\t\t\tbreak")
	fmt.Fprintln(&e.buf, "\t\t\t}")
	fmt.Fprintln(&e.buf, "\t\t\titems = append(items, v)")
	fmt.Fprintln(&e.buf, "\t\t}")
	if requireOne {
		fmt.Fprintln(&e.buf, "\t\tif len(items) == 0 {")
		fmt.Fprintln(&e.buf, "\t\t\treturn runtime.FAILURE, mark")
		fmt.Fprintln(&e.buf, "\t\t}")
	}
	fmt.Fprintln(&e.buf, "\t\treturn items, p.tok.Mark()")
	fmt.Fprintln(&e.buf, "\t})")
	fmt.Fprintln(&e.buf, "\tif runtime.IsFailure(result) {")
	fmt.Fprintln(&e.buf, "\t\treturn runtime.FAILURE, false")
	fmt.Fprintln(&e.buf, "\t}")
	fmt.Fprintln(&e.buf, "\treturn result, true")
	fmt.Fprintln(&e.buf, "}")
	fmt.Fprintln(&e.buf)
	return nil
}
