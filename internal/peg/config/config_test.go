package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_MissingFileReturnsZeroValue(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	p, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	require.NoError(err)
	assert.Equal(Project{}, p)
}

func Test_Load_ParsesProjectFields(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "peggen.toml")
	contents := `
default_mode = "char-stream"
default_class = "MyParser"
header_include_dirs = ["includes", "shared/includes"]
skip_actions = true
history_db = "history.db"
`
	require.NoError(os.WriteFile(path, []byte(contents), 0644))

	p, err := Load(path)
	require.NoError(err)

	assert.Equal(OutputCharStream, p.DefaultMode)
	assert.Equal("MyParser", p.DefaultClass)
	assert.Equal([]string{"includes", "shared/includes"}, p.HeaderIncludeDirs)
	assert.True(p.SkipActions)
	assert.Equal("history.db", p.HistoryDB)
}

func Test_Load_MalformedTomlIsError(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "peggen.toml")
	require.NoError(os.WriteFile(path, []byte("this is not [ valid toml"), 0644))

	_, err := Load(path)
	require.Error(err)
}
