// Package normalize maps heterogeneous source rows onto record.Record.
//
// Source tables name the same data differently across editions. Each
// canonical field has an ordered candidate list of column names (see
// fields.go); this is the only place those names are known.
package normalize
