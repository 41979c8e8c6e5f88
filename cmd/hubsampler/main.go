// Command hubsampler runs hyperparameter-optimization studies from the
// command line: pick a sampler, point it at a trial database, and
// optimize a benchmark objective or export results for analysis.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hubsampler",
	Short: "Run and inspect hyperparameter-optimization studies",
	Long: `hubsampler drives the bundled sampler plugins against a trial store.

The CLI provides:
- Listing the available sampler plugins
- Running a sampler against a built-in benchmark objective
- Exporting a study's completed trials to Parquet`,
	Version: "0.1.0",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
