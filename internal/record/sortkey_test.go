package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"plain number", "123", 123},
		{"prefixed", "RTK1-045", 45},
		{"letters", "abc", UnknownSortKey},
		{"empty", "", UnknownSortKey},
		{"trailing dash", "RTK1-", UnknownSortKey},
		{"multiple dashes", "RTK-3-7", 7},
		{"leading zeros", "0007", 7},
		{"full-width digits", "１２", 12},
		{"mixed suffix", "12a", UnknownSortKey},
		{"inner space", "1 2", UnknownSortKey},
		{"overflow", "99999999999999999999999", UnknownSortKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SortKey(tt.input))
		})
	}
}

func TestSortIsStable(t *testing.T) {
	records := []Record{
		New(1, "三", "three", "3", nil),
		New(2, "甲", "first unknown", "x", nil),
		New(3, "一", "one", "RTK1-1", nil),
		New(4, "乙", "second unknown", "", nil),
		New(5, "壱", "one again", "1", nil),
	}

	Sort(records)

	var got []string
	for _, r := range records {
		got = append(got, r.Kanji)
	}
	assert.Equal(t, []string{"一", "壱", "三", "甲", "乙"}, got)
}

func TestSortEmpty(t *testing.T) {
	var records []Record
	Sort(records)
	assert.Empty(t, records)
}
