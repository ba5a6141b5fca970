package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjidex/internal/record"
	"github.com/roach88/kanjidex/internal/testutil"
)

const testRunID = "run-cli-0001"

// testResponse mirrors CLIResponse with Data left undecoded.
type testResponse struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   *CLIError       `json:"error"`
	TraceID string          `json:"trace_id"`
}

// isolate clears KANJIDEX_* overrides so the host environment cannot leak
// into a test.
func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"KANJIDEX_ARCHIVES", "KANJIDEX_OUTPUT", "KANJIDEX_CACHE", "KANJIDEX_CACHE_BACKEND",
		"KANJIDEX_RESOLVER", "KANJIDEX_BASE_URL", "KANJIDEX_PACING", "KANJIDEX_LOG_LEVEL",
		"KANJIDEX_LIMIT",
	} {
		t.Setenv(name, "")
	}
}

// testOptions returns root options with a fixed run id and a fake sleeper.
func testOptions() (*RootOptions, *testutil.FakeSleeper) {
	sleeper := testutil.NewFakeSleeper()
	return &RootOptions{
		RunIDs:  testutil.NewFixedRunIDGenerator(testRunID),
		Sleeper: sleeper.Sleep,
	}, sleeper
}

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	isolate(t)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommandWithOptions(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// decodeResponse parses a single JSON envelope.
func decodeResponse(t *testing.T, out string) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// rtkArchive writes a one-table archive with 一, 二, 三 and 鬱.
// 鬱 is not in the built-in table.
func rtkArchive(t *testing.T, dir string) string {
	t.Helper()
	return testutil.WriteZip(t, dir, "rtk.zip", testutil.ZipMember{
		Name: "rtk.tsv",
		Body: "kanji\tkeyword_6th_ed\tindex\tcomponents\n" +
			"三\tthree\t3\t\n" +
			"一\tone\t1\t\n" +
			"鬱\tgloom\t2000\twood;can\n" +
			"二\ttwo\t2\t一;一\n",
	})
}

// writeDataset writes records to dir/name and returns the path.
func writeDataset(t *testing.T, dir, name string, records []record.Record) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, record.WriteFile(path, records))
	return path
}
