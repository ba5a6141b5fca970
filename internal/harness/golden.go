package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/kanjidex/internal/record"
)

// RunWithGolden executes a scenario and compares the dataset it produced
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails or the scenario's own
// assertions do not hold. Test failure (via goldie) occurs if the dataset
// bytes differ from the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed: %v", scenario.Name, result.Errors)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's dataset against a golden file.
// The dataset is encoded exactly as it would be written to disk.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := record.MarshalDataset(result.Records)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
