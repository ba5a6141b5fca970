// Package pipeline drives dataset builds.
//
// Extract reads every table in a list of ZIP archives, normalizes and
// deduplicates the rows (first occurrence wins), resolves a stroke count
// for each accepted record and returns the records sorted by curriculum
// index. Enrich fills in stroke counts on an existing dataset without
// reordering it.
//
// Both drivers are single-threaded. They own the stroke-count cache for
// the duration of a run, persist it every FlushEvery records and once more
// at the end, and pause for Pacing after every lookup that reached the
// network. Problems with individual inputs are logged and counted in
// Stats; only cancellation and a run with no usable input return errors.
package pipeline
