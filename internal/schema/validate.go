package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/kanjidex/internal/record"
)

//go:embed schema.cue
var schemaSource []byte

// Validation error codes (E200-E299)
const (
	ErrDatasetSyntax  = "E200" // not JSON, or not a JSON array
	ErrRecordSchema   = "E201" // record does not satisfy #Record
	ErrDuplicateKanji = "E202" // kanji appears more than once
	ErrSortOrder      = "E203" // sort key decreases
	ErrDuplicateID    = "E204" // id appears more than once
)

// recordFields are the JSON keys of a record, used to pick the field out
// of a CUE error path.
var recordFields = map[string]bool{
	"id": true, "kanji": true, "keyword": true, "heisig_number": true,
	"primitives": true, "strokeCount": true, "user_story": true,
	"last_reviewed": true, "ease_factor": true,
}

// ValidationError represents a dataset validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateDataset validates the dataset file contents in data.
// Returns all errors found (does not fail-fast); an empty result means the
// dataset is valid.
func ValidateDataset(data []byte) []ValidationError {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return []ValidationError{{Field: "schema", Message: err.Error(), Code: ErrDatasetSyntax}}
	}
	def := schema.LookupPath(cue.ParsePath("#Record"))

	expr, err := cuejson.Extract("dataset.json", data)
	if err != nil {
		return []ValidationError{{Field: "dataset", Message: err.Error(), Code: ErrDatasetSyntax}}
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return []ValidationError{{Field: "dataset", Message: err.Error(), Code: ErrDatasetSyntax}}
	}
	if doc.Kind() != cue.ListKind {
		return []ValidationError{{
			Field:   "dataset",
			Message: fmt.Sprintf("top level must be an array, got %s", doc.Kind()),
			Code:    ErrDatasetSyntax,
			Line:    doc.Pos().Line(),
		}}
	}

	iter, err := doc.List()
	if err != nil {
		return []ValidationError{{Field: "dataset", Message: err.Error(), Code: ErrDatasetSyntax}}
	}

	var errs []ValidationError
	kanjiAt := make(map[string]int)
	idAt := make(map[int64]int)
	prevKey, prevIdx := 0, -1

	for i := 0; iter.Next(); i++ {
		elem := iter.Value()
		line := elem.Pos().Line()

		if err := def.Unify(elem).Validate(cue.Concrete(true)); err != nil {
			errs = append(errs, recordErrors(i, elem, err)...)
		}

		if k, err := elem.LookupPath(cue.ParsePath("kanji")).String(); err == nil && k != "" {
			if first, dup := kanjiAt[k]; dup {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("[%d].kanji", i),
					Message: fmt.Sprintf("duplicate kanji %q (first at [%d])", k, first),
					Code:    ErrDuplicateKanji,
					Line:    line,
				})
			} else {
				kanjiAt[k] = i
			}
		}

		if id, err := elem.LookupPath(cue.ParsePath("id")).Int64(); err == nil {
			if first, dup := idAt[id]; dup {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("[%d].id", i),
					Message: fmt.Sprintf("duplicate id %d (first at [%d])", id, first),
					Code:    ErrDuplicateID,
					Line:    line,
				})
			} else {
				idAt[id] = i
			}
		}

		if hn, err := elem.LookupPath(cue.ParsePath("heisig_number")).String(); err == nil {
			key := record.SortKey(hn)
			if prevIdx >= 0 && key < prevKey {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("[%d].heisig_number", i),
					Message: fmt.Sprintf("sort key %d is below %d at [%d]", key, prevKey, prevIdx),
					Code:    ErrSortOrder,
					Line:    line,
				})
			}
			prevKey, prevIdx = key, i
		}
	}

	return errs
}

// recordErrors converts a CUE validation failure of record i.
func recordErrors(i int, elem cue.Value, err error) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		field := ""
		for _, p := range e.Path() {
			if recordFields[p] {
				field = p
				break
			}
		}

		format, args := e.Msg()
		ve := ValidationError{
			Field:   fmt.Sprintf("[%d]", i),
			Message: fmt.Sprintf(format, args...),
			Code:    ErrRecordSchema,
			Line:    elem.Pos().Line(),
		}
		if field != "" {
			ve.Field += "." + field
			if pos := elem.LookupPath(cue.ParsePath(field)).Pos(); pos.IsValid() {
				ve.Line = pos.Line()
			}
		}
		out = append(out, ve)
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Field != out[b].Field {
			return out[a].Field < out[b].Field
		}
		return strings.Compare(out[a].Message, out[b].Message) < 0
	})
	return dedupe(out)
}

// dedupe drops repeated (field, message) pairs; CUE can report one
// conflict from several positions.
func dedupe(errs []ValidationError) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if n := len(out); n > 0 && out[n-1].Field == e.Field && out[n-1].Message == e.Message {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ValidateRecords validates records as they would be written to disk.
func ValidateRecords(records []record.Record) []ValidationError {
	data, err := record.MarshalDataset(records)
	if err != nil {
		return []ValidationError{{Field: "dataset", Message: err.Error(), Code: ErrDatasetSyntax}}
	}
	return ValidateDataset(data)
}
