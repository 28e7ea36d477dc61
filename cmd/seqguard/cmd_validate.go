package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seqguard/internal/validatesort"
	"seqguard/pkg/framework"
)

var validateFlags struct {
	signal   string
	data     []float64
	dataFile string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Deliver one signal through the pipeline and print the result",
	Long: `Validate delivers a single signal with its sequence. The normalized
sequence is printed as JSON; a disabled signal kind prints "suppressed".`,
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateFlags.signal, "signal", "alert", "Signal kind (alert, reset, revoke, report)")
	f.Float64SliceVar(&validateFlags.data, "data", nil, "Sequence values, comma separated")
	f.StringVar(&validateFlags.dataFile, "data-file", "", "YAML/JSON payload file (- for stdin); overrides --data")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	sig, err := framework.ParseSignal(validateFlags.signal)
	if err != nil {
		return err
	}
	p, err := buildPipeline(framework.WithObserver(&framework.LogObserver{}))
	if err != nil {
		return err
	}

	payload := framework.Payload{validatesort.DefaultField: validateFlags.data}
	if validateFlags.dataFile != "" {
		if payload, err = readPayload(validateFlags.dataFile, cmd.InOrStdin()); err != nil {
			return err
		}
	}

	res, err := p.Deliver(cmd.Context(), sig, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", sig, err)
	}
	out := cmd.OutOrStdout()
	if !res.Emitted {
		fmt.Fprintln(out, "suppressed")
		return nil
	}
	return writeJSON(out, res.Payload)
}
