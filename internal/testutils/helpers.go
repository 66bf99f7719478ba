package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleCSV is a small reference table covering every hierarchy level.
const SampleCSV = `HSNCode,Description
01,Live animals
0101,"Live horses, asses, mules and hinnies"
010121,Pure-bred breeding horses
01012100,Pure-bred breeding horses (8-digit)
84,"Nuclear reactors, boilers, machinery"
8471,Automatic data processing machines
847130,Portable digital automatic data processing machines
`

// WriteFiles creates a temporary directory holding the given files and
// returns its absolute path. It fails the test immediately on error.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	}
	return dir
}

// WriteSampleTable writes SampleCSV and returns the file path.
func WriteSampleTable(t *testing.T) string {
	t.Helper()
	return filepath.Join(WriteFiles(t, map[string]string{"hsn.csv": SampleCSV}), "hsn.csv")
}
