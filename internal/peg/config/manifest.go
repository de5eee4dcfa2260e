package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dekarrin/rezi"
)

// Manifest is a small on-disk record that can be written beside a generated
// parser file: enough to tell, on a later run, whether the grammar has
// changed since the last `generate_code` without re-parsing it. cmd/peggen
// neither writes nor reads one; WriteManifest and ReadManifest are its only
// entry points. Binary
// rather than TOML because it's a generator-internal cache file a user is
// never expected to hand-edit, the same distinction drawn
// between server/config.go's human-edited YAML and dao/sqlite.go's
// rezi-encoded game.State blobs.
type Manifest struct {
	GrammarPath string
	GrammarHash string
	RuleCount   int
	Mode        OutputMode
	BuildID     string
	GeneratedAt time.Time
}

// WriteManifest REZI-encodes m and writes it to path, truncating any
// existing file.
func WriteManifest(path string, m Manifest) error {
	data := rezi.EncBinary(m)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest %q: %w", path, err)
	}
	return nil
}

// ReadManifest decodes a Manifest previously written by WriteManifest. A
// missing file returns (Manifest{}, false, nil): callers treat "no prior
// manifest" the same as "grammar definitely needs regenerating", not as an
// error condition.
func ReadManifest(path string) (Manifest, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, fmt.Errorf("read manifest %q: %w", path, err)
	}

	var m Manifest
	n, err := rezi.DecBinary(data, &m)
	if err != nil {
		return Manifest{}, false, fmt.Errorf("decode manifest %q: %w", path, err)
	}
	if n != len(data) {
		return Manifest{}, false, fmt.Errorf("manifest %q: decoded %d/%d bytes", path, n, len(data))
	}
	return m, true, nil
}

// Stale reports whether a grammar with the given hash and rule count
// differs from what this Manifest last recorded — i.e. whether
// generate_code needs to run again.
func (m Manifest) Stale(grammarHash string, ruleCount int) bool {
	return m.GrammarHash != grammarHash || m.RuleCount != ruleCount
}
