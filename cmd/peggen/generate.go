package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/dekarrin/pegquest"
	"github.com/dekarrin/pegquest/internal/peg/analysis"
	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/config"
	"github.com/dekarrin/pegquest/internal/peg/emit"
)

func runGenerate(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Expected exactly one GRAMMAR_FILE argument\nDo -h for help.\n")
		return ExitIOError
	}
	grammarPath := args[0]

	proj, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", *flagConfig, err.Error())
		return ExitIOError
	}

	mode := resolveMode(proj)
	skipActions := *flagSkipActions || proj.SkipActions

	start := time.Now()

	src, err := readGrammarSource(grammarPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitIOError
	}

	d := pegquest.Driver{Emit: emit.Options{Mode: mode, SkipActions: skipActions}}

	g, err := d.LoadGrammarSource(src, grammarPath)
	if err != nil {
		reportGrammarError(err)
		return ExitGrammarError
	}
	if g.Metas.Class == "" {
		g.Metas.Class = proj.DefaultClass
	}

	if *flagVerbosity >= 2 {
		printAnalysisTree(g)
	}

	generated, err := d.GenerateCodeString(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitEmissionError
	}

	if err := writeGeneratedOutput(generated); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitIOError
	}

	if *flagEmitStub {
		if err := writeStub(g); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: writing stub: %s\n", err.Error())
			return ExitIOError
		}
	}

	if *flagVerbosity >= 1 {
		elapsed := time.Since(start)
		fmt.Fprintf(os.Stderr, "generated %d rules in %s (%s)\n",
			len(g.Rules), elapsed.Round(time.Microsecond), humanize.Bytes(uint64(len(generated))))
	}

	return ExitSuccess
}

func resolveMode(proj config.Project) emit.Mode {
	modeFlag := *flagMode
	if modeFlag == "" {
		modeFlag = string(proj.DefaultMode)
	}
	if modeFlag == "char" || modeFlag == string(config.OutputCharStream) {
		return emit.ModeCharStream
	}
	return emit.ModeTokenStream
}

func readGrammarSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read grammar file %q: %w", path, err)
	}
	if looksLikeMarkdown(path) {
		data = extractGrammarFromMarkdown(data)
	}
	return string(data), nil
}

func writeGeneratedOutput(src string) error {
	if *flagOut == "" {
		_, err := fmt.Print(src)
		return err
	}
	return os.WriteFile(*flagOut, []byte(src), 0644)
}

// reportGrammarError prints a *pegerrors.SyntaxError/ValidationError/
// GrammarError using its caret-annotated FullMessage when available,
// falling back to Error() otherwise.
func reportGrammarError(err error) {
	type fullMessager interface{ FullMessage() string }
	if fm, ok := err.(fullMessager); ok {
		fmt.Fprintf(os.Stderr, "ERROR:\n%s\n", fm.FullMessage())
		return
	}
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
}

// printAnalysisTree re-derives the first-invocation graph and SCC summary
// (-VV and above) and renders them as a colored tree, grounded in gorgo's
// use of pterm for diagnostic trees.
func printAnalysisTree(g *ast.Grammar) {
	res, err := analysis.Analyze(g)
	if err != nil {
		return
	}

	root := pterm.TreeNode{Text: "grammar"}
	for _, name := range g.RuleNames() {
		node := pterm.TreeNode{Text: name}
		for _, nb := range res.Graph.Neighbors(name) {
			node.Children = append(node.Children, pterm.TreeNode{Text: nb})
		}
		root.Children = append(root.Children, node)
	}
	pterm.DefaultTree.WithRoot(root).Render()

	if len(res.SCCs) > 0 {
		pterm.DefaultSection.Println("left-recursive SCCs")
		for _, scc := range res.SCCs {
			if len(scc) > 1 {
				pterm.Info.Printfln("%v", scc)
			}
		}
	}
}

// writeStub writes a companion typed-stub interface listing every rule as a
// method signature with no body, the Go analogue of original_source's
// build_typings.py mypy-stub output.
func writeStub(g *ast.Grammar) error {
	className := g.Metas.Class
	if className == "" {
		className = "GeneratedParser"
	}

	stubPath := *flagOut
	if stubPath == "" {
		stubPath = "parser_gen.go"
	}
	stubPath = stubPath[:len(stubPath)-len(".go")] + "_stub_gen.go"

	var out string
	out += "// Code generated by pegquest --emit-stub. DO NOT EDIT.\n"
	out += "package parser\n\n"
	out += fmt.Sprintf("// %sRules lists every rule the grammar declares, as a method with no\n", className)
	out += "// body — a typed reference surface, not an executable implementation.\n"
	out += fmt.Sprintf("type %sRules interface {\n", className)
	for _, r := range g.Rules {
		if r.IsSynthetic() {
			continue
		}
		out += fmt.Sprintf("\trule_%s() (interface{}, bool)\n", r.Name)
	}
	out += "}\n"

	return os.WriteFile(stubPath, []byte(out), 0644)
}
