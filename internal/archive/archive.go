package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// OpenError reports an archive that could not be opened at all.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open archive %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Missing reports whether the archive path does not exist.
func (e *OpenError) Missing() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// DelimiterFor returns the field delimiter for a member name, or false if
// the member is not a table.
func DelimiterFor(name string) (rune, bool) {
	switch {
	case strings.HasSuffix(name, ".tsv"):
		return '\t', true
	case strings.HasSuffix(name, ".csv"):
		return ',', true
	default:
		return 0, false
	}
}

// Scan opens the ZIP archive at path and calls fn for each table member in
// central-directory order.
//
// An archive that cannot be opened yields an *OpenError. An error returned
// by fn stops the scan and is returned unchanged.
func Scan(path string, fn func(*Table) error) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return &OpenError{Path: path, Err: err}
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		delim, ok := DelimiterFor(f.Name)
		if !ok {
			continue
		}
		t := &Table{
			Archive:   path,
			Member:    f.Name,
			Delimiter: delim,
			open:      f.Open,
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}
