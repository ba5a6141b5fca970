// Package resolver turns a kanji into a stroke count.
//
// Every resolver consults the stroke-count cache first; a cache hit never
// touches the network and never sleeps. Implementations:
//
//   - KanjiVG fetches the per-character SVG from the KanjiVG repository and
//     counts its stroke paths, with bounded retries.
//   - Table serves a small built-in table with no network access.
//   - Chain tries several resolvers in order.
//
// Failure is not an error: a Lookup that found nothing carries the last
// failure for logging and the caller substitutes its fallback count.
//
// Pacing between network calls is the caller's responsibility; Lookup.Remote
// reports whether a call went to the network.
package resolver
