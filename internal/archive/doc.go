// Package archive reads delimited tables out of ZIP archives.
//
// Members ending in ".tsv" are read as tab-delimited and members ending in
// ".csv" as comma-delimited; everything else in the archive is ignored.
// The first line of each table is its header. Rows are delivered as
// normalize.Row maps keyed by header name.
package archive
