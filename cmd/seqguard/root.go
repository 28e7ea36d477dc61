// seqguard validates the sort order of numeric sequences carried by
// pipeline signals (alert, reset, revoke, report).
//
// Usage:
//
//	seqguard validate --signal alert --data 3,1,2 [--pipeline p.yaml]
//	seqguard classify --order descending 3 1 2
//	seqguard batch --input invocations.yaml [--pipeline p.yaml] [--parallel N]
//	seqguard serve [--pipeline p.yaml]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seqguard/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
	pipeline  string
	order     string
	forward   []string
}

var rootCmd = &cobra.Command{
	Use:   "seqguard",
	Short: "Sort validation node for signal pipelines",
	Long: `seqguard checks whether numeric sequences delivered with pipeline signals
are already ascending or descending, and sorts unordered ones into a
preferred order before they reach downstream stages.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")
	f.StringVar(&rootFlags.pipeline, "pipeline", "", "Pipeline definition YAML; empty = single validate-sort node")
	f.StringVar(&rootFlags.order, "order", "ascending", "Preferred order for the default node (ascending, descending)")
	f.StringSliceVar(&rootFlags.forward, "forward", []string{"alert"}, "Signal kinds the default node forwards")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func initLogging(cmd *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(rootFlags.logLevel)
	if err != nil {
		return err
	}
	logging.Init(level, rootFlags.logFormat, cmd.ErrOrStderr())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
