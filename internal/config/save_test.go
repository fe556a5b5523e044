package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

func readMap(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

func TestSaveLastProject_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atelier.yaml")

	require.NoError(t, SaveLastProject(path, "Foo"))

	require.Equal(t, map[string]any{"last_project": "Foo"}, readMap(t, path))
}

func TestSaveLastProject_AppendsAndPreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atelier.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveLastProject(path, "Foo"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Backend settings")
	require.Contains(t, string(data), "last_project: Foo")

	m := readMap(t, path)
	require.Equal(t, "Foo", m["last_project"])
	require.Equal(t, false, m["reopen_last"])
}

func TestSaveLastProject_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atelier.yaml")
	initial := "reopen_last: true\nlast_project: Foo # previous\nui:\n  show_status_bar: false\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	require.NoError(t, SaveLastProject(path, "Bar"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "last_project"))
	require.Contains(t, string(data), "# previous")

	m := readMap(t, path)
	require.Equal(t, "Bar", m["last_project"])
	require.Equal(t, true, m["reopen_last"])
	require.Equal(t, map[string]any{"show_status_bar": false}, m["ui"])
}

func TestSaveLastProject_QuotesNumericNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atelier.yaml")

	require.NoError(t, SaveLastProject(path, "2024"))

	require.Equal(t, "2024", readMap(t, path)["last_project"])
}

func TestSaveLastProject_RejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atelier.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	require.ErrorContains(t, SaveLastProject(path, "Foo"), "not a mapping")
}

func TestSaveLastProject_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atelier.yaml")

	require.NoError(t, SaveLastProject(path, "Foo"))
	require.NoError(t, SaveLastProject(path, "Bar"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
