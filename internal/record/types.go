package record

import "time"

// Defaults applied to fields the pipeline does not resolve itself.
const (
	// DefaultStrokeCount is the best-guess stroke count used when no
	// resolver produced a value.
	DefaultStrokeCount = 10

	// DefaultEaseFactor is the initial spaced-repetition ease factor.
	DefaultEaseFactor = 2.5
)

// Record is one kanji entry in the study dataset.
//
// JSON keys match the dataset consumed by the study application, so files
// written by older tooling round-trip without loss.
type Record struct {
	// ID is 1 + the number of records accepted before this one.
	// It is stable only within a single run.
	ID int `json:"id"`

	// Kanji is the character itself and the deduplication key.
	Kanji string `json:"kanji"`

	// Keyword is a short English gloss; may be empty.
	Keyword string `json:"keyword"`

	// HeisigNumber is the raw curriculum index ("123", "RTK1-123").
	HeisigNumber string `json:"heisig_number"`

	// Primitives lists component names in source order.
	Primitives []string `json:"primitives"`

	// StrokeCount is positive once the record has been enriched.
	// Zero means "not yet resolved".
	StrokeCount int `json:"strokeCount"`

	// Study-tracking fields. The pipeline only initializes them.
	UserStory    string     `json:"user_story"`
	LastReviewed *time.Time `json:"last_reviewed"`
	EaseFactor   float64    `json:"ease_factor"`
}

// New returns a record with the study-tracking fields at their defaults.
func New(id int, kanji, keyword, heisigNumber string, primitives []string) Record {
	if primitives == nil {
		primitives = []string{}
	}
	return Record{
		ID:           id,
		Kanji:        kanji,
		Keyword:      keyword,
		HeisigNumber: heisigNumber,
		Primitives:   primitives,
		EaseFactor:   DefaultEaseFactor,
	}
}

// HasStrokeCount reports whether the record already carries a usable count.
func (r Record) HasStrokeCount() bool {
	return r.StrokeCount > 0
}
