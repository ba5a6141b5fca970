package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/record"
)

func sampleResult() *Result {
	one := record.New(1, "一", "one", "1", nil)
	one.StrokeCount = 1
	two := record.New(2, "二", "two", "2", []string{"一", "一"})
	two.StrokeCount = 2

	r := NewResult()
	r.Records = []record.Record{one, two}
	r.Stats = pipeline.Stats{Accepted: 2, TableHits: 2, CacheSaves: 1}
	r.Cache = map[string]int{"二": 2}
	r.Saves = 1
	r.Sleeps = []time.Duration{pipeline.DefaultPacing, 500 * time.Millisecond}
	return r
}

func intPtr(n int) *int { return &n }

func TestEvaluateAssertions_Pass(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertStats, Expect: map[string]interface{}{"accepted": 2, "table_hits": 2, "truncated": false}},
		{Type: AssertOrder, Kanji: []string{"一", "二"}},
		{Type: AssertRecord, Kanji: []string{"二"}, Expect: map[string]interface{}{
			"primitives":  []interface{}{"一", "一"},
			"strokeCount": 2,
			"ease_factor": 2.5,
		}},
		{Type: AssertCache, Expect: map[string]interface{}{"二": 2}},
		{Type: AssertCacheMissing, Kanji: []string{"一"}},
		{Type: AssertSaves, Count: intPtr(1)},
		{Type: AssertPacing, Count: intPtr(1)},
		{Type: AssertValid},
	}

	assert.Empty(t, EvaluateAssertions(sampleResult(), assertions, pipeline.DefaultPacing))
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "stats mismatch",
			assertion: Assertion{Type: AssertStats, Expect: map[string]interface{}{"accepted": 3}},
			want:      "accepted: got 2, want 3",
		},
		{
			name:      "stats unknown key",
			assertion: Assertion{Type: AssertStats, Expect: map[string]interface{}{"accepted_rows": 2}},
			want:      "accepted_rows: missing",
		},
		{
			name:      "order",
			assertion: Assertion{Type: AssertOrder, Kanji: []string{"二", "一"}},
			want:      "Expected: [二 一]",
		},
		{
			name:      "record not found",
			assertion: Assertion{Type: AssertRecord, Kanji: []string{"三"}, Expect: map[string]interface{}{"id": 3}},
			want:      "not in output",
		},
		{
			name:      "record field",
			assertion: Assertion{Type: AssertRecord, Kanji: []string{"一"}, Expect: map[string]interface{}{"strokeCount": 9}},
			want:      "strokeCount: got 1, want 9",
		},
		{
			name:      "cache missing entry",
			assertion: Assertion{Type: AssertCache, Expect: map[string]interface{}{"一": 1}},
			want:      "一: missing",
		},
		{
			name:      "cache present",
			assertion: Assertion{Type: AssertCacheMissing, Kanji: []string{"二"}},
			want:      "cached: [二]",
		},
		{
			name:      "saves",
			assertion: Assertion{Type: AssertSaves, Count: intPtr(2)},
			want:      "Assertion failed: saves",
		},
		{
			name:      "pacing",
			assertion: Assertion{Type: AssertPacing, Count: intPtr(0)},
			want:      "Assertion failed: pacing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion}, pipeline.DefaultPacing)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "assertions[0]")
			assert.Contains(t, errs[0], tt.want)
			assert.Contains(t, errs[0], "Output: [一 二]")
		})
	}
}

func TestEvaluateAssertions_Invalid(t *testing.T) {
	r := sampleResult()
	r.Records[1].StrokeCount = 0

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertValid}}, pipeline.DefaultPacing)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "strokeCount")
}

func TestEvaluateAssertions_NoCacheSaved(t *testing.T) {
	r := sampleResult()
	r.Cache = nil

	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertCacheMissing, Kanji: []string{"一", "二"}},
		{Type: AssertCache, Expect: map[string]interface{}{"二": 2}},
	}, pipeline.DefaultPacing)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "assertions[1]")
}
