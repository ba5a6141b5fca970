package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/roach88/kanjidex/internal/record"
	"github.com/roach88/kanjidex/internal/schema"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Kanji    []string // Output kanji in order, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nOutput: [%s]\n", strings.Join(e.Kanji, " "))

	return buf.String()
}

// EvaluateAssertions evaluates every assertion against result and returns
// the failure messages. pacing is the pause the run was configured with.
func EvaluateAssertions(result *Result, assertions []Assertion, pacing time.Duration) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a, pacing); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, pacing time.Duration) error {
	switch a.Type {
	case AssertStats:
		return assertStats(result, a)
	case AssertOrder:
		return assertOrder(result, a)
	case AssertRecord:
		return assertRecord(result, a)
	case AssertCache:
		return assertCache(result, a)
	case AssertCacheMissing:
		return assertCacheMissing(result, a)
	case AssertSaves:
		return assertCount(result, a.Type, *a.Count, result.Saves)
	case AssertPacing:
		n := 0
		for _, d := range result.Sleeps {
			if d == pacing {
				n++
			}
		}
		return assertCount(result, a.Type, *a.Count, n)
	case AssertValid:
		return assertValid(result)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertStats checks a subset of the stats by JSON key.
func assertStats(result *Result, a Assertion) error {
	actual, err := toJSONMap(result.Stats)
	if err != nil {
		return err
	}
	return matchSubset(result, a.Type, "stats", actual, a.Expect)
}

// assertOrder checks the output kanji exactly, in order.
func assertOrder(result *Result, a Assertion) error {
	got := kanjiOf(result.Records)
	if reflect.DeepEqual(got, a.Kanji) || (len(got) == 0 && len(a.Kanji) == 0) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("[%s]", strings.Join(a.Kanji, " ")),
		Actual:   fmt.Sprintf("[%s]", strings.Join(got, " ")),
		Kanji:    got,
	}
}

// assertRecord checks a subset of one record's JSON fields.
func assertRecord(result *Result, a Assertion) error {
	kanji := a.Kanji[0]
	for _, r := range result.Records {
		if r.Kanji != kanji {
			continue
		}
		actual, err := toJSONMap(r)
		if err != nil {
			return err
		}
		return matchSubset(result, a.Type, "record "+kanji, actual, a.Expect)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("record for %s", kanji),
		Actual:   "not in output",
		Kanji:    kanjiOf(result.Records),
	}
}

// assertCache checks a subset of the last saved cache.
func assertCache(result *Result, a Assertion) error {
	actual, err := toJSONMap(result.Cache)
	if err != nil {
		return err
	}
	return matchSubset(result, a.Type, "cache", actual, a.Expect)
}

// assertCacheMissing checks that none of the kanji were saved.
func assertCacheMissing(result *Result, a Assertion) error {
	var present []string
	for _, k := range a.Kanji {
		if _, ok := result.Cache[k]; ok {
			present = append(present, k)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%v absent from cache", a.Kanji),
		Actual:   fmt.Sprintf("cached: %v", present),
		Kanji:    kanjiOf(result.Records),
	}
}

func assertCount(result *Result, kind string, want, got int) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
		Kanji:    kanjiOf(result.Records),
	}
}

// assertValid runs schema validation over the output.
func assertValid(result *Result) error {
	errs := schema.ValidateRecords(result.Records)
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &AssertionError{
		Type:     AssertValid,
		Expected: "no validation errors",
		Actual:   strings.Join(msgs, "; "),
		Kanji:    kanjiOf(result.Records),
	}
}

// matchSubset compares expected keys against actual. Both sides go
// through JSON so YAML ints and JSON numbers compare equal.
func matchSubset(result *Result, kind, what string, actual, expect map[string]interface{}) error {
	want, err := toJSONMap(expect)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var diffs []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("%s: missing", k))
			continue
		}
		if !reflect.DeepEqual(got, want[k]) {
			diffs = append(diffs, fmt.Sprintf("%s: got %v, want %v", k, got, want[k]))
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%s matching %v", what, expect),
		Actual:   strings.Join(diffs, "; "),
		Kanji:    kanjiOf(result.Records),
	}
}

func toJSONMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func kanjiOf(records []record.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Kanji
	}
	return out
}
