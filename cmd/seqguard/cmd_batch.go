package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seqguard/internal/batch"
)

var batchFlags struct {
	input    string
	parallel int
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Deliver a file of signal invocations through the pipeline",
	Long: `Batch reads a YAML or JSON list of invocations:

  - signal: alert
    data: [3, 1, 2]

and prints one JSON line per invocation in input order. Failed invocations
are reported inline; the command fails if any invocation failed.`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.input, "input", "", "Invocation file (required)")
	f.IntVar(&batchFlags.parallel, "parallel", 1, "Number of parallel deliveries (1 = serial)")

	_ = batchCmd.MarkFlagRequired("input")
}

type batchLine struct {
	Index      int            `json:"index"`
	Signal     string         `json:"signal"`
	Suppressed bool           `json:"suppressed,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(batchFlags.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	invs, err := batch.LoadInvocations(data)
	if err != nil {
		return err
	}
	p, err := buildPipeline()
	if err != nil {
		return err
	}

	outcomes, err := batch.Run(cmd.Context(), p, invs, batch.Options{Parallel: batchFlags.parallel})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, o := range outcomes {
		line := batchLine{Index: o.Index, Signal: string(o.Signal)}
		switch {
		case o.Err != nil:
			failed++
			line.Error = o.Err.Error()
		case !o.Result.Emitted:
			line.Suppressed = true
		default:
			line.Payload = o.Result.Payload
		}
		if err := writeJSON(out, line); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d invocations failed", failed, len(outcomes))
	}
	return nil
}
