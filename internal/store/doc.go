// Package store provides durable storage for the stroke-count cache.
//
// The cache maps a single kanji to its stroke count. It is loaded once
// when a run starts, mutated in place as the resolver learns new counts,
// and saved periodically and at the end of the run.
//
// # Backends
//
//   - JSONFile: a human-editable JSON object (the default). Safe to delete;
//     a missing or malformed file loads as an empty cache.
//   - SQLite: the same mapping in a single table, for callers that already
//     keep their tooling state in a database.
//
// Both backends fail soft on Load and overwrite unconditionally on Save.
// The cache never shrinks; there is no eviction.
package store
