package normalize

// Row is one parsed table row keyed by header name.
type Row map[string]string

// Candidate source columns per canonical field, highest priority first.
// The first candidate whose trimmed value is non-empty wins; absent
// columns and whitespace-only values are skipped.
var (
	KanjiFields     = []string{"kanji"}
	ComponentFields = []string{"components", "primitives"}
	IndexFields     = []string{"index", "id_6th_ed", "id_5th_ed"}
	KeywordFields   = []string{"keyword_6th_ed", "keyword_5th_ed", "keyword"}

	// PrimitiveSeps are tried in order; the first one present is used.
	PrimitiveSeps = []string{";", ","}
)

// FirstPresent returns the first non-empty trimmed value among candidates.
func FirstPresent(row Row, candidates []string) string {
	for _, name := range candidates {
		if v := trim(row[name]); v != "" {
			return v
		}
	}
	return ""
}
