package resolver

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrNotSingleCharacter is returned for input that is not exactly one
// Unicode code point.
var ErrNotSingleCharacter = errors.New("not a single character")

// CodePointHex returns the five-digit lowercase hex code point KanjiVG uses
// in file names ("一" -> "04e00").
func CodePointHex(kanji string) (string, error) {
	r, size := utf8.DecodeRuneInString(kanji)
	if r == utf8.RuneError || size != len(kanji) {
		return "", fmt.Errorf("%w: %q", ErrNotSingleCharacter, kanji)
	}
	return fmt.Sprintf("%05x", r), nil
}
