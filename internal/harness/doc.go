// Package harness runs dataset scenarios end to end.
//
// A scenario describes input archives (or an existing dataset), the
// starting cache, the stroke-count sources available, and what the run
// must produce. The harness builds the archives in a temporary directory,
// runs the real pipeline, and evaluates the scenario's assertions against
// the records, stats, and cache it ends with.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: cross_archive_dedup
//	description: "First occurrence wins across archives"
//	phase: extract
//	archives:
//	  - name: a.zip
//	    members:
//	      - name: rtk.tsv
//	        body: |
//	          kanji	keyword	index
//	          一	one	1
//	  - name: gone.zip
//	    missing: true
//	cache: { "一": 1 }
//	table: { "二": 2 }
//	remote: { "三": 3 }
//	options: { limit: 0, flush_every: 50, fallback: 10 }
//	assertions:
//	  - type: stats
//	    expect: { accepted: 1, duplicates: 0 }
//	  - type: order
//	    kanji: [一]
//	  - type: record
//	    kanji: [一]
//	    expect: { strokeCount: 1 }
//
// # Assertion Types
//
//   - stats: subset match on the run's stats (snake_case keys)
//   - order: the output kanji, exactly and in order
//   - record: subset match on one record's JSON fields
//   - cache: subset match on the last saved cache
//   - cache_missing: none of the listed kanji are in the last saved cache
//   - saves: the number of cache saves
//   - pacing: the number of pacing sleeps
//   - valid: the output passes schema validation
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run id, a fake sleeper, and an
// in-memory cache backend, and remote lookups are served by a local
// KanjiVG stand-in. Identical scenarios therefore produce identical
// datasets, which RunWithGolden compares byte for byte against
// testdata/golden/{name}.golden.
package harness
