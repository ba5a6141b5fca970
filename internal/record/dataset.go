package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// MarshalDataset produces the on-disk form of a dataset.
//
// Output is a two-space indented JSON array with a trailing newline.
// HTML characters are not escaped and every string is NFC normalized, so
// identical records always produce identical bytes.
func MarshalDataset(records []Record) ([]byte, error) {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = canonicalize(r)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("marshal dataset: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalDataset parses a dataset previously written by MarshalDataset
// (or by older tooling using the same keys).
func UnmarshalDataset(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal dataset: %w", err)
	}
	for i := range records {
		if records[i].Primitives == nil {
			records[i].Primitives = []string{}
		}
	}
	return records, nil
}

// ReadFile loads a dataset from disk.
// A missing file is reported as an error wrapping os.ErrNotExist.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return UnmarshalDataset(data)
}

// WriteFile writes a dataset atomically, creating the parent directory
// if it does not exist.
func WriteFile(path string, records []Record) error {
	data, err := MarshalDataset(records)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// canonicalize returns a copy of r with NFC-normalized strings and a
// non-nil primitives slice.
func canonicalize(r Record) Record {
	r.Kanji = norm.NFC.String(r.Kanji)
	r.Keyword = norm.NFC.String(r.Keyword)
	r.HeisigNumber = norm.NFC.String(r.HeisigNumber)
	r.UserStory = norm.NFC.String(r.UserStory)

	prims := make([]string, len(r.Primitives))
	for i, p := range r.Primitives {
		prims[i] = norm.NFC.String(p)
	}
	r.Primitives = prims
	return r
}
