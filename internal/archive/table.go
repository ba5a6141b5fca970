package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/kanjidex/internal/normalize"
)

const bom = "\ufeff"

// MalformedError reports a table member that could not be read to the end.
// Rows delivered before the failure remain valid.
type MalformedError struct {
	Archive string
	Member  string
	Line    int
	Err     error
}

func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%s: line %d: %v", e.Archive, e.Member, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%s: %v", e.Archive, e.Member, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Table is one delimited member of an archive.
type Table struct {
	Archive   string
	Member    string
	Delimiter rune

	open func() (io.ReadCloser, error)
}

// Each streams the table's rows to fn.
//
// Short rows are padded with empty strings; fields beyond the header are
// dropped. When a header name repeats, the rightmost column wins. Read and
// parse failures are returned as *MalformedError; an error from fn stops
// iteration and is returned unchanged.
func (t *Table) Each(fn func(normalize.Row) error) error {
	rc, err := t.open()
	if err != nil {
		return t.malformed(0, err)
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.Comma = t.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return t.malformed(lineOf(err), err)
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return t.malformed(lineOf(err), err)
		}

		row := make(normalize.Row, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = fields[i]
			} else {
				row[name] = ""
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

func (t *Table) malformed(line int, err error) error {
	return &MalformedError{Archive: t.Archive, Member: t.Member, Line: line, Err: err}
}

func lineOf(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}
