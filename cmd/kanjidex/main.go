// Command kanjidex builds the kanji study dataset.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/kanjidex/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "kanjidex: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
