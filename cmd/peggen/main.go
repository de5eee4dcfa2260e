/*
Peggen turns a PEG grammar into a generated Go parser.

Usage:

	peggen [flags] GRAMMAR_FILE
	peggen repl [flags] GRAMMAR_FILE
	peggen serve [flags]

With no subcommand, peggen runs the one-shot Driver.GenerateCode pipeline:
load GRAMMAR_FILE (a plain .peg file, or a Markdown file with grammar rules
in ```peg fenced code blocks), analyze and desugar it, and write the
generated parser to --out (default stdout).

The flags are:

	-v, --version
		Print the current version and exit.

	-o, --out FILE
		Write generated Go source to FILE instead of stdout.

	-m, --mode token|char
		Target the token-stream or character-stream input model. Defaults to
		the peggen.toml project file's default_mode, or token-stream if
		neither is set.

	-s, --skip-actions
		Emit a parser that ignores every alternative's action text and
		always returns the default item-list value.

	--emit-stub
		Additionally write a companion _gen.go interface listing every rule
		as a method signature with no body, alongside the generated parser.

	--config FILE
		Use the given peggen.toml project file instead of the default
		"./peggen.toml".

	-V
		Increase verbosity; can be repeated (-VV, -VVV).

`peggen repl` loads a grammar and drops into an interactive console where
typed input is run through the grammar's start rule and the resulting parse
tree (or syntax error) is printed.

`peggen serve` starts an HTTP generation-as-a-service front end; see
serve.go.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/pegquest/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitGrammarError indicates the grammar failed to parse or validate.
	ExitGrammarError

	// ExitIOError indicates a problem reading the grammar or writing
	// generated output.
	ExitIOError

	// ExitEmissionError indicates an internal CodeEmitter invariant was
	// violated — a generator bug, not a problem with the user's grammar.
	ExitEmissionError
)

var (
	flagVersion     = pflag.BoolP("version", "v", false, "Print the current version and exit")
	flagOut         = pflag.StringP("out", "o", "", "Write generated Go source to FILE instead of stdout")
	flagMode        = pflag.StringP("mode", "m", "", "Target input model: token or char")
	flagSkipActions = pflag.BoolP("skip-actions", "s", false, "Emit a parser that ignores action text")
	flagEmitStub    = pflag.Bool("emit-stub", false, "Additionally write a typed-stub interface")
	flagConfig      = pflag.String("config", "peggen.toml", "Project config file")
	flagVerbosity   = pflag.CountP("verbose", "V", "Increase verbosity; can be repeated")
)

func main() {
	returnCode := ExitSuccess
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		}
		os.Exit(returnCode)
	}()

	// repl and serve own their flags entirely (see runRepl/runServe): dispatch
	// on the raw args before the root flag set ever sees them, since pflag.Parse
	// would otherwise choke on a subcommand flag it doesn't recognize.
	if len(os.Args) > 1 && os.Args[1] == "repl" {
		returnCode = runRepl(os.Args[2:])
		return
	}
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		returnCode = runServe(os.Args[2:])
		return
	}

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("peggen %s\n", version.Current)
		return
	}

	returnCode = runGenerate(pflag.Args())
}
