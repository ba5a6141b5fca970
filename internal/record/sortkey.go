package record

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UnknownSortKey orders records without a parseable index after all others.
const UnknownSortKey = 99999

// SortKey derives the ordering integer from a raw Heisig index.
//
// Prefixed indexes ("RTK1-045") use the part after the last '-'. Full-width
// digits are folded to ASCII first. Anything that is not a plain run of
// digits maps to UnknownSortKey.
func SortKey(heisigNumber string) int {
	s := heisigNumber
	if i := strings.LastIndex(s, "-"); i >= 0 {
		s = s[i+1:]
	}
	s = norm.NFKC.String(s)
	if s == "" {
		return UnknownSortKey
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return UnknownSortKey
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return UnknownSortKey
	}
	return n
}

// Sort orders records by SortKey ascending. Records with equal keys keep
// their relative order.
func Sort(records []Record) {
	keys := make([]int, len(records))
	for i, r := range records {
		keys[i] = SortKey(r.HeisigNumber)
	}
	sort.Stable(byKey{records: records, keys: keys})
}

// byKey sorts records and their precomputed keys in lockstep.
type byKey struct {
	records []Record
	keys    []int
}

func (b byKey) Len() int           { return len(b.records) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.records[i], b.records[j] = b.records[j], b.records[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
