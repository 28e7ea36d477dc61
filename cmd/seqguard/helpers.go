package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"seqguard/internal/order"
	"seqguard/internal/validatesort"
	"seqguard/pkg/framework"
)

// buildPipeline loads --pipeline, or builds a one-node pipeline from
// --order and --forward when no definition is given.
func buildPipeline(opts ...framework.PipelineOption) (*framework.Pipeline, error) {
	if rootFlags.pipeline != "" {
		data, err := os.ReadFile(rootFlags.pipeline)
		if err != nil {
			return nil, fmt.Errorf("read pipeline: %w", err)
		}
		def, err := framework.LoadPipeline(data)
		if err != nil {
			return nil, err
		}
		return def.Build(validatesort.Registry(), opts...)
	}

	o, err := order.ParseOrder(rootFlags.order)
	if err != nil {
		return nil, err
	}
	raw := map[string]any{"list_order": string(o)}
	for _, s := range rootFlags.forward {
		sig, err := framework.ParseSignal(s)
		if err != nil {
			return nil, fmt.Errorf("--forward: %w", err)
		}
		raw["on_"+string(sig)] = true
	}
	def := &framework.PipelineDef{
		Pipeline: "default",
		Nodes:    []framework.NodeDef{{Name: validatesort.Family, Family: validatesort.Family, Config: raw}},
	}
	return def.Build(validatesort.Registry(), opts...)
}

// readPayload decodes a YAML or JSON mapping from path ("-" = stdin).
func readPayload(path string, stdin io.Reader) (framework.Payload, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	var p framework.Payload
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	if p == nil {
		p = framework.Payload{}
	}
	return p, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}
