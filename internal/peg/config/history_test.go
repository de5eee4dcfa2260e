package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_History_RecordAndRecent(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	dbPath := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenHistory(dbPath)
	require.NoError(err)
	defer h.Close()

	ctx := context.Background()

	first, err := h.Record(ctx, GenerationRecord{
		GrammarPath: "a.peg",
		GrammarHash: "hash-a",
		RuleCount:   3,
		OutputMode:  string(OutputTokenStream),
		GeneratedAt: time.Now().Add(-time.Hour),
	})
	require.NoError(err)
	require.NotEmpty(first.ID)

	second, err := h.Record(ctx, GenerationRecord{
		GrammarPath: "b.peg",
		GrammarHash: "hash-b",
		RuleCount:   7,
		OutputMode:  string(OutputCharStream),
	})
	require.NoError(err)
	require.NotEmpty(second.ID)
	require.NotEqual(first.ID, second.ID)

	recent, err := h.Recent(ctx, 10)
	require.NoError(err)
	require.Len(recent, 2)
	assert.Equal(second.ID, recent[0].ID, "most recent generation sorts first")
}

func Test_History_ForGrammar(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	dbPath := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenHistory(dbPath)
	require.NoError(err)
	defer h.Close()

	ctx := context.Background()

	_, err = h.Record(ctx, GenerationRecord{GrammarPath: "a.peg", GrammarHash: "v1", RuleCount: 1})
	require.NoError(err)
	_, err = h.Record(ctx, GenerationRecord{GrammarPath: "a.peg", GrammarHash: "v2", RuleCount: 2})
	require.NoError(err)
	_, err = h.Record(ctx, GenerationRecord{GrammarPath: "b.peg", GrammarHash: "v1", RuleCount: 9})
	require.NoError(err)

	recs, err := h.ForGrammar(ctx, "a.peg")
	require.NoError(err)
	assert.Len(recs, 2)
	for _, r := range recs {
		assert.Equal("a.peg", r.GrammarPath)
	}
}
