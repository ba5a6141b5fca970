package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/record"
)

func TestEnrichOffline(t *testing.T) {
	dir := t.TempDir()
	four := record.New(1, "四", "four", "4", nil)
	four.StrokeCount = 7
	one := record.New(2, "一", "one", "1", nil)
	path := writeDataset(t, dir, "kanji.json", []record.Record{four, one})

	opts, _ := testOptions()
	stdout, _, err := execute(t, opts, "enrich", "--offline",
		"--cache", filepath.Join(dir, "cache.json"), "--dataset", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ enrich wrote 2 records to "+path)
	assert.Contains(t, stdout, "2 visited, 1 already counted")

	records, err := record.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Order is preserved and existing counts are not touched.
	assert.Equal(t, "四", records[0].Kanji)
	assert.Equal(t, 7, records[0].StrokeCount)
	assert.Equal(t, "一", records[1].Kanji)
	assert.Equal(t, 1, records[1].StrokeCount)
}

func TestEnrichLimitKeepsRemainingRecords(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "kanji.json", []record.Record{
		record.New(1, "一", "one", "1", nil),
		record.New(2, "二", "two", "2", nil),
		record.New(3, "三", "three", "3", nil),
	})

	opts, _ := testOptions()
	_, _, err := execute(t, opts, "enrich", "--offline", "--limit", "1",
		"--cache", filepath.Join(dir, "cache.json"), "--dataset", path)
	require.NoError(t, err)

	records, err := record.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 1, records[0].StrokeCount)
	assert.Equal(t, 0, records[1].StrokeCount)
	assert.Equal(t, 0, records[2].StrokeCount)
}

func TestEnrichMissingDataset(t *testing.T) {
	dir := t.TempDir()

	opts, _ := testOptions()
	stdout, _, err := execute(t, opts, "enrich", "--offline",
		"--cache", filepath.Join(dir, "cache.json"), "--dataset", filepath.Join(dir, "kanji.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, string(pipeline.ErrCodeDatasetMissing))
	assert.Contains(t, stdout, "run extract first")
}

func TestEnrichRejectsArgs(t *testing.T) {
	opts, _ := testOptions()
	_, _, err := execute(t, opts, "enrich", "extra")
	require.Error(t, err)
}
