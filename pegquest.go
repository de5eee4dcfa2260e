// Package pegquest implements the Driver: the orchestration
// pipeline that turns PEG grammar source into a generated Go parser. It
// composes internal/peg/metaparser, internal/peg/analysis,
// internal/peg/desugar, and internal/peg/emit into the three public
// operations it exposes: LoadGrammar, GenerateCode, and GenerateParser.
package pegquest

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dekarrin/pegquest/internal/peg/analysis"
	"github.com/dekarrin/pegquest/internal/peg/ast"
	"github.com/dekarrin/pegquest/internal/peg/desugar"
	"github.com/dekarrin/pegquest/internal/peg/emit"
	"github.com/dekarrin/pegquest/internal/peg/metaparser"
)

// Driver holds the options shared across a LoadGrammar/GenerateCode/
// GenerateParser pipeline run: the code-emission Options described in
// internal/peg/emit, plus where GenerateParser should build its temporary
// plugin artifacts. The zero value is ready to use.
type Driver struct {
	Emit emit.Options

	// BuildDir overrides the directory GenerateParser uses for its
	// temporary compile-and-load workspace. Empty uses os.MkdirTemp's
	// default.
	BuildDir string
}

// LoadGrammar parses and validates grammar source read from r, returning
// the analyzed, desugared Grammar ready for GenerateCode/GenerateParser.
// filename is used only to anchor error messages.
func (d Driver) LoadGrammar(r io.Reader, filename string) (*ast.Grammar, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read grammar source: %w", err)
	}
	return d.LoadGrammarSource(string(src), filename)
}

// LoadGrammarFile is LoadGrammar for a path on disk.
func (d Driver) LoadGrammarFile(path string) (*ast.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar file %q: %w", path, err)
	}
	defer f.Close()
	return d.LoadGrammar(f, path)
}

// LoadGrammarSource is LoadGrammar for grammar text already held in memory.
func (d Driver) LoadGrammarSource(src, filename string) (*ast.Grammar, error) {
	g, err := metaparser.Parse(src, filename)
	if err != nil {
		return nil, err
	}

	if _, err := analysis.Analyze(g); err != nil {
		return nil, err
	}

	if err := desugar.Desugar(g); err != nil {
		return nil, err
	}

	return g, nil
}

// GenerateCode runs the CodeEmitter over g and writes the generated Go
// source to out. g must have already passed through LoadGrammar (or the
// equivalent Analyze+Desugar sequence) — an un-analyzed Grammar produces
// emission errors, since the emitter assumes post-desugar item shapes and
// populated left-recursion/nullability flags.
func (d Driver) GenerateCode(g *ast.Grammar, out io.Writer) error {
	src, err := d.GenerateCodeString(g)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, src)
	return err
}

// GenerateCodeString is GenerateCode with the "return as string" flag
// GenerateCode describes, for callers (cmd/peggen, GenerateParser below)
// that want the source in memory rather than written to a sink.
func (d Driver) GenerateCodeString(g *ast.Grammar) (string, error) {
	e := emit.New(g, d.Emit)
	return e.Emit()
}

// ParserFactory is the result of GenerateParser: the path to the compiled
// plugin and the exported constructor symbol name a caller dlopen's it and
// looks up. Go has no "exec the generated source" analogue the way a
// dynamic language does, so this implements an explicitly optional
// parser-from-grammar convenience via `go build -buildmode=plugin` plus
// plugin.Open/Lookup — the nearest idiomatic Go equivalent of "compile and
// dynamically load what was just generated". Short-lived CLI or test use
// only; it runs the Go toolchain as an os/exec subprocess.
type ParserFactory struct {
	// PluginPath is the compiled .so file's path, valid until the caller
	// removes the build directory.
	PluginPath string

	// ConstructorSymbol is the exported Go identifier the plugin exposes,
	// always the fixed name NewParser; see GenerateParser.
	ConstructorSymbol string

	// BuildDir is the temporary directory GenerateParser created this
	// plugin package in. Callers are responsible for removing it once
	// done loading the plugin.
	BuildDir string
}

// GenerateParser composes GenerateCodeString with a compile step: it writes
// the generated source to a fresh temp package directory, invokes `go
// build -buildmode=plugin`, and returns a ParserFactory describing the
// result. It does not open the plugin itself — Go plugins, once opened,
// cannot be closed or reloaded within a process, so leaving that step to
// the caller avoids surprising a caller that only wanted the compiled
// artifact (e.g. to ship it, not load it in-process).
func (d Driver) GenerateParser(g *ast.Grammar) (ParserFactory, error) {
	src, err := d.GenerateCodeString(g)
	if err != nil {
		return ParserFactory{}, err
	}

	buildDir := d.BuildDir
	if buildDir == "" {
		buildDir, err = os.MkdirTemp("", "pegquest-parser-*")
		if err != nil {
			return ParserFactory{}, fmt.Errorf("create parser build dir: %w", err)
		}
	}

	genFile := filepath.Join(buildDir, "parser_gen.go")
	if err := os.WriteFile(genFile, []byte(src), 0644); err != nil {
		return ParserFactory{}, fmt.Errorf("write generated parser source: %w", err)
	}

	modFile := filepath.Join(buildDir, "go.mod")
	modContents := fmt.Sprintf("module pegquest.generated/%s\n\ngo 1.21\n", uuid.New())
	if err := os.WriteFile(modFile, []byte(modContents), 0644); err != nil {
		return ParserFactory{}, fmt.Errorf("write generated parser go.mod: %w", err)
	}

	pluginPath := filepath.Join(buildDir, "parser.so")
	cmd := exec.Command("go", "build", "-buildmode=plugin", "-o", pluginPath, genFile)
	cmd.Dir = buildDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return ParserFactory{}, fmt.Errorf("compile generated parser: %w\n%s", err, out)
	}

	return ParserFactory{
		PluginPath:        pluginPath,
		ConstructorSymbol: "NewParser",
		BuildDir:          buildDir,
	}, nil
}
