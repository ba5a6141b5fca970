package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/kanjidex/internal/record"
)

// Normalize builds a canonical record from a raw row.
//
// position becomes the record ID (the caller passes 1 + accepted so far).
// The second result is false when the row has no kanji and must be skipped.
// StrokeCount is left at zero for the caller to resolve. Deduplication is
// the caller's responsibility.
func Normalize(row Row, position int) (record.Record, bool) {
	kanji := FirstPresent(row, KanjiFields)
	if kanji == "" {
		return record.Record{}, false
	}

	return record.New(
		position,
		kanji,
		FirstPresent(row, KeywordFields),
		FirstPresent(row, IndexFields),
		SplitPrimitives(FirstPresent(row, ComponentFields)),
	), true
}

// SplitPrimitives splits a components column.
//
// ';' is used if present anywhere, otherwise ','. Without either, the whole
// trimmed string is the only primitive. Empty fragments are dropped, so
// the result is never nil and may be empty.
func SplitPrimitives(s string) []string {
	s = trim(s)
	if s == "" {
		return []string{}
	}
	for _, sep := range PrimitiveSeps {
		if !strings.Contains(s, sep) {
			continue
		}
		parts := strings.Split(s, sep)
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = trim(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return []string{s}
}

// trim strips surrounding whitespace and NFC-normalizes, so canonically
// equivalent spellings (including CJK compatibility ideographs) compare
// equal.
func trim(s string) string {
	return norm.NFC.String(strings.TrimFunc(s, unicode.IsSpace))
}
