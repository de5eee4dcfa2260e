package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Manifest_RoundTrip(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "grammar.manifest")
	want := Manifest{
		GrammarPath: "grammar.peg",
		GrammarHash: "abc123",
		RuleCount:   12,
		Mode:        OutputTokenStream,
		BuildID:     "11111111-1111-1111-1111-111111111111",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(WriteManifest(path, want))

	got, ok, err := ReadManifest(path)
	require.NoError(err)
	require.True(ok)
	assert.Equal(want.GrammarPath, got.GrammarPath)
	assert.Equal(want.GrammarHash, got.GrammarHash)
	assert.Equal(want.RuleCount, got.RuleCount)
	assert.Equal(want.Mode, got.Mode)
}

func Test_ReadManifest_MissingFileIsNotAnError(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	m, ok, err := ReadManifest(filepath.Join(t.TempDir(), "absent.manifest"))
	require.NoError(err)
	assert.False(ok)
	assert.Equal(Manifest{}, m)
}

func Test_Manifest_Stale(t *testing.T) {
	assert := assert.New(t)

	m := Manifest{GrammarHash: "abc", RuleCount: 5}

	assert.False(m.Stale("abc", 5))
	assert.True(m.Stale("xyz", 5))
	assert.True(m.Stale("abc", 6))
}
