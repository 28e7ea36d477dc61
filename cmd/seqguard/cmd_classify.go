package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"seqguard/internal/order"
)

var classifyCmd = &cobra.Command{
	Use:   "classify VALUE...",
	Short: "Print the order label and normalized sequence for the given values",
	Long: `Classify reports whether the values are ascending or descending. Unordered
values are sorted into --order and labelled with it. No signal routing
is involved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

type classifyOutput struct {
	Order   string    `json:"order"`
	Coerced bool      `json:"coerced"`
	Data    []float64 `json:"data"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	preferred, err := order.ParseOrder(rootFlags.order)
	if err != nil {
		return err
	}
	seq := make([]float64, len(args))
	for i, a := range args {
		if seq[i], err = strconv.ParseFloat(a, 64); err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
	}

	// Normalize rejects inf and nan, which JSON cannot carry.
	res, err := order.Normalize(seq, preferred)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), classifyOutput{
		Order:   string(res.Order),
		Coerced: res.Coerced,
		Data:    res.Values.([]float64),
	})
}
