package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/record"
	"github.com/roach88/kanjidex/internal/testutil"
)

// Phases a scenario can run.
const (
	PhaseExtract = "extract"
	PhaseEnrich  = "enrich"
)

// Scenario defines one end-to-end run and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Phase is "extract" (default) or "enrich".
	Phase string `yaml:"phase,omitempty"`

	// Archives are built in order and passed to Extract.
	Archives []ArchiveFixture `yaml:"archives,omitempty"`

	// Dataset is the input to Enrich.
	Dataset []RecordFixture `yaml:"dataset,omitempty"`

	// Cache pre-populates the stroke-count cache.
	Cache map[string]int `yaml:"cache,omitempty"`

	// Table is the offline stroke table. Nil with no Remote selects the
	// built-in table.
	Table map[string]int `yaml:"table,omitempty"`

	// Remote is served by a local KanjiVG stand-in. A zero count serves an
	// SVG with no strokes; characters not listed get a 404.
	Remote map[string]int `yaml:"remote,omitempty"`

	// Options tune the pipeline.
	Options Options `yaml:"options,omitempty"`

	// ExpectError is the pipeline error code the run must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the outcome.
	Assertions []Assertion `yaml:"assertions"`

	// RunID is the fixed run id. If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// ArchiveFixture describes one input archive.
type ArchiveFixture struct {
	// Name is the file name inside the scenario's temporary directory.
	Name string `yaml:"name"`

	// Missing leaves the file absent.
	Missing bool `yaml:"missing,omitempty"`

	// Raw is written verbatim instead of a zip built from Members.
	Raw string `yaml:"raw,omitempty"`

	// Corrupt damages the first occurrence of this text in the built zip.
	Corrupt string `yaml:"corrupt,omitempty"`

	Members []testutil.ZipMember `yaml:"members,omitempty"`
}

// RecordFixture is a compact input record for enrich scenarios.
type RecordFixture struct {
	ID           int      `yaml:"id"`
	Kanji        string   `yaml:"kanji"`
	Keyword      string   `yaml:"keyword,omitempty"`
	HeisigNumber string   `yaml:"heisig_number,omitempty"`
	Primitives   []string `yaml:"primitives,omitempty"`
	StrokeCount  int      `yaml:"strokeCount,omitempty"`
}

// Record converts the fixture with study fields at their defaults.
func (f RecordFixture) Record() record.Record {
	r := record.New(f.ID, f.Kanji, f.Keyword, f.HeisigNumber, f.Primitives)
	r.StrokeCount = f.StrokeCount
	return r
}

// Options mirror the pipeline options a scenario can set.
type Options struct {
	Limit      int    `yaml:"limit,omitempty"`
	FlushEvery int    `yaml:"flush_every,omitempty"`
	Fallback   int    `yaml:"fallback,omitempty"`
	Pacing     string `yaml:"pacing,omitempty"`
}

// Assertion validates one aspect of the outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kanji selects the record (record) or lists characters
	// (order, cache_missing).
	Kanji []string `yaml:"kanji,omitempty"`

	// Expect holds expected values (stats, record, cache).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number (saves, pacing).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStats        = "stats"
	AssertOrder        = "order"
	AssertRecord       = "record"
	AssertCache        = "cache"
	AssertCacheMissing = "cache_missing"
	AssertSaves        = "saves"
	AssertPacing       = "pacing"
	AssertValid        = "valid"
)

// defaultRunID is used when a scenario does not set run_id.
const defaultRunID = "test-run-default"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Phase == "" {
		scenario.Phase = PhaseExtract
	}
	if scenario.RunID == "" {
		scenario.RunID = defaultRunID
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Phase {
	case PhaseExtract:
		if len(s.Archives) == 0 {
			return fmt.Errorf("archives list is required for extract")
		}
		if len(s.Dataset) > 0 {
			return fmt.Errorf("dataset is only used by enrich")
		}
	case PhaseEnrich:
		if len(s.Archives) > 0 {
			return fmt.Errorf("archives are only used by extract")
		}
	default:
		return fmt.Errorf("unknown phase %q", s.Phase)
	}

	for i, a := range s.Archives {
		if a.Name == "" {
			return fmt.Errorf("archives[%d]: name is required", i)
		}
		if a.Missing && (a.Raw != "" || len(a.Members) > 0) {
			return fmt.Errorf("archives[%d]: a missing archive has no content", i)
		}
		if a.Raw != "" && (len(a.Members) > 0 || a.Corrupt != "") {
			return fmt.Errorf("archives[%d]: raw cannot be combined with members or corrupt", i)
		}
	}

	if s.ExpectError != "" {
		switch pipeline.ErrorCode(s.ExpectError) {
		case pipeline.ErrCodeNoInput, pipeline.ErrCodeDatasetMissing, pipeline.ErrCodeCacheSave:
		default:
			return fmt.Errorf("unknown expect_error %q", s.ExpectError)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStats, AssertCache:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertOrder:
		if a.Kanji == nil {
			return fmt.Errorf("assertions[%d]: kanji list is required for order", index)
		}
	case AssertRecord:
		if len(a.Kanji) != 1 {
			return fmt.Errorf("assertions[%d]: record needs exactly one kanji", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
	case AssertCacheMissing:
		if len(a.Kanji) == 0 {
			return fmt.Errorf("assertions[%d]: kanji list is required for cache_missing", index)
		}
	case AssertSaves, AssertPacing:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertValid:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
