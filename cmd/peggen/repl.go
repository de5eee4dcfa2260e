package main

import (
	"fmt"
	"io"
	"os"
	"plugin"

	"github.com/dekarrin/pegquest"
	"github.com/dekarrin/pegquest/internal/input"
	"github.com/dekarrin/pegquest/internal/peg/emit"
	"github.com/dekarrin/pegquest/internal/peg/runtime"
	"github.com/dekarrin/pegquest/internal/peg/tokenizer"
)

// runRepl loads a grammar once, compiles it to a plugin via
// Driver.GenerateParser, and then drops into an interactive console where
// each line of input is run through the compiled grammar's start rule and
// the resulting parse tree (or syntax error) is printed. Grounded on the
// NewInteractiveReader/RunUntilQuit console loop style in internal/input,
// generalized to running arbitrary input through whatever grammar was
// loaded rather than a fixed set of commands.
func runRepl(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: peggen repl GRAMMAR_FILE\n")
		return ExitIOError
	}
	grammarPath := args[0]

	d := pegquest.Driver{Emit: emit.Options{Mode: emit.ModeCharStream}}

	g, err := d.LoadGrammarFile(grammarPath)
	if err != nil {
		reportGrammarError(err)
		return ExitGrammarError
	}

	factory, err := d.GenerateParser(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: compiling grammar for repl: %s\n", err.Error())
		return ExitEmissionError
	}
	defer os.RemoveAll(factory.BuildDir)

	plug, err := plugin.Open(factory.PluginPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: loading compiled grammar: %s\n", err.Error())
		return ExitEmissionError
	}

	sym, err := plug.Lookup(factory.ConstructorSymbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitEmissionError
	}
	newParser, ok := sym.(func(tokenizer.CharStream, string) runtime.Parser)
	if !ok {
		fmt.Fprintf(os.Stderr, "ERROR: compiled grammar's constructor has an unexpected signature\n")
		return ExitEmissionError
	}

	rl, err := input.NewInteractiveReader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: starting console: %s\n", err.Error())
		return ExitIOError
	}
	defer rl.Close()
	rl.SetPrompt(g.Metas.Class + "> ")
	rl.AllowBlank(false)

	fmt.Printf("loaded %d rules from %s, starting at %q. Type QUIT to exit.\n",
		len(g.Rules), grammarPath, g.StartRule().Name)

	for {
		line, err := rl.ReadCommand()
		if err != nil {
			if err == io.EOF {
				return ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			return ExitIOError
		}
		if line == "QUIT" {
			return ExitSuccess
		}

		p := newParser(tokenizer.NewCharTokenizer(line), "<repl>")
		result, err := p.Parse()
		if err != nil {
			fmt.Printf("syntax error: %s\n", err.Error())
			continue
		}
		fmt.Printf("%#v\n", result)
	}
}
