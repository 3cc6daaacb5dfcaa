package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fortuna/gridiron/internal/league"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestDocument(t *testing.T) *Document {
	t.Helper()
	doc, err := BuildDocument(context.Background(), newFakeSession(), 1, 7, Options{Clock: testClock})
	require.NoError(t, err)
	return doc
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "league_data_week_7_20241105_143000.json", FileName(7, testClock))
}

func TestWriteExportRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data_exports")
	doc := buildTestDocument(t)

	path, err := WriteExport(doc, dir, 7, testClock)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "league_data_week_7_20241105_143000.json"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&0o111, "export files are not executable")

	got, err := ReadExport(path)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteExportIndentsWithFourSpaces(t *testing.T) {
	path, err := WriteExport(buildTestDocument(t), t.TempDir(), 7, testClock)
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(body))
	assert.Contains(t, string(body), "{\n    \"date_info\": {\n        \"current_day of the week\": \"Tuesday\"")
}

func TestWriteExportSameSecondGetsSuffix(t *testing.T) {
	dir := t.TempDir()
	doc := buildTestDocument(t)

	var paths []string
	for i := 0; i < 3; i++ {
		path, err := WriteExport(doc, dir, 7, testClock)
		require.NoError(t, err)
		paths = append(paths, filepath.Base(path))
	}
	assert.Equal(t, []string{
		"league_data_week_7_20241105_143000.json",
		"league_data_week_7_20241105_143000_1.json",
		"league_data_week_7_20241105_143000_2.json",
	}, paths)
}

type failingWriter struct {
	io.WriteCloser
}

func (w failingWriter) Write(p []byte) (int, error) {
	n, _ := w.WriteCloser.Write(p[:len(p)/2])
	return n, errors.New("disk full")
}

func TestWriteExportRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	doc := buildTestDocument(t)

	orig := createExclusive
	createExclusive = func(path string) (io.WriteCloser, error) {
		f, err := orig(path)
		if err != nil {
			return nil, err
		}
		return failingWriter{f}, nil
	}
	_, err := WriteExport(doc, dir, 7, testClock)
	createExclusive = orig

	require.ErrorIs(t, err, league.ErrIO)
	assert.Contains(t, err.Error(), "disk full")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The next export takes the unsuffixed name.
	path, err := WriteExport(doc, dir, 7, testClock)
	require.NoError(t, err)
	assert.Equal(t, "league_data_week_7_20241105_143000.json", filepath.Base(path))
}

func TestWriteExportTeamVariant(t *testing.T) {
	path, err := WriteExportVariant(buildTestDocument(t), VariantTeam, t.TempDir(), 7, testClock)
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	var sections map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &sections))
	assert.Len(t, sections, 3)
	assert.NotContains(t, sections, "matchup_info")
}

func TestWriteExportDirectoryFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := WriteExport(buildTestDocument(t), filepath.Join(blocker, "exports"), 7, testClock)
	require.ErrorIs(t, err, league.ErrIO)
	assert.Contains(t, err.Error(), blocker)
}

func TestReadExportMissingFile(t *testing.T) {
	_, err := ReadExport(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, league.ErrIO)
}
