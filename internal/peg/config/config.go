// Package config loads pegquest's project-level settings and persists a
// small amount of generation history. It is outside THE CORE
// (tokenizer/ast/metaparser/analysis/desugar/emit/runtime): nothing in that
// pipeline imports it, the same way server/config.go sits
// beside, not inside, the game engine it configures.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// OutputMode mirrors emit.Mode without importing the emit package, keeping
// config a leaf dependency the way server/config.go never imports the game
// engine internals it configures.
type OutputMode string

const (
	OutputTokenStream OutputMode = "token-stream"
	OutputCharStream  OutputMode = "char-stream"
)

// Project is the optional `peggen.toml` project file: per-directory
// defaults for the CLI flags a user would otherwise repeat on every
// invocation. Empty fields fall back to the CLI's own flag defaults.
type Project struct {
	// DefaultMode selects which of OutputTokenStream / OutputCharStream
	// cmd/peggen targets when --mode is not given on the command line.
	DefaultMode OutputMode `toml:"default_mode"`

	// DefaultClass is used for a grammar's @class meta when the grammar
	// file itself doesn't set one.
	DefaultClass string `toml:"default_class"`

	// HeaderIncludeDirs is loaded from peggen.toml but not read by
	// cmd/peggen; the grammar meta-syntax has no directive that names a
	// header file to search for, so @header text always comes from the
	// grammar file itself.
	HeaderIncludeDirs []string `toml:"header_include_dirs"`

	// SkipActions is the project-wide default for the skip-actions
	// generation mode.
	SkipActions bool `toml:"skip_actions"`

	// HistoryDB is the path of a SQLite generation-history database (see
	// history.go). It is loaded from peggen.toml but not read by
	// cmd/peggen: `peggen serve` takes its database path from its own
	// --history-db flag.
	HistoryDB string `toml:"history_db"`
}

// Load reads and parses a peggen.toml file at path. A missing file is not an
// error: it returns a zero-value Project, matching the
// permissive "no config file means defaults" convention.
func Load(path string) (Project, error) {
	var p Project

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return p, nil
	}

	if _, err := toml.DecodeFile(path, &p); err != nil {
		return p, err
	}
	return p, nil
}
