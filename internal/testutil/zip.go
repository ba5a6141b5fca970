package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ZipMember is one entry of a test archive. A Name ending in "/" is
// written as a directory entry.
type ZipMember struct {
	Name string `yaml:"name"`
	Body string `yaml:"body"`
}

// BuildZip encodes members in the given order. Members are stored
// uncompressed so their bytes can be located and damaged by FlipMarker.
func BuildZip(members ...ZipMember) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m.Name, Method: zip.Store})
		if err != nil {
			return nil, fmt.Errorf("zip member %s: %w", m.Name, err)
		}
		if m.Body != "" {
			if _, err := w.Write([]byte(m.Body)); err != nil {
				return nil, fmt.Errorf("zip member %s: %w", m.Name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FlipMarker changes the last byte of the first occurrence of marker in
// data. A stored member containing it still decodes, but its checksum no
// longer matches once it is read to the end.
func FlipMarker(data []byte, marker string) error {
	i := bytes.Index(data, []byte(marker))
	if marker == "" || i < 0 {
		return fmt.Errorf("marker %q not found", marker)
	}
	data[i+len(marker)-1] ^= 0x01
	return nil
}

// WriteZip writes members to dir/name in the given order and returns the
// archive path.
func WriteZip(t testing.TB, dir, name string, members ...ZipMember) string {
	t.Helper()

	data, err := BuildZip(members...)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// CorruptZip damages the archive at path with FlipMarker.
func CorruptZip(t testing.TB, path, marker string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, FlipMarker(data, marker), "in %s", path)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
