package record

// Version constants reported in run summaries.
const (
	// SchemaVersion is the dataset record layout version.
	SchemaVersion = "1"

	// ToolVersion is the kanjidex release.
	ToolVersion = "0.1.0"
)
