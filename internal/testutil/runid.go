package testutil

// FixedRunIDGenerator returns the same run ID every time.
//
// This keeps CLI JSON output and harness results byte-identical across
// test runs. If id is empty, Generate returns "test-run-default".
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a new fixed run ID generator.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements pipeline.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
