// Package schema validates dataset files.
//
// Each record is unified with the CUE definition #Record embedded from
// schema.cue, then the dataset as a whole is checked for unique kanji,
// unique IDs and non-decreasing sort keys. Validation collects every
// problem instead of stopping at the first.
package schema
