// Package mcp exposes a signal pipeline as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"

	"seqguard/internal/logging"
	"seqguard/internal/validatesort"
	"seqguard/pkg/framework"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server around one pipeline. The pipeline is
// read-only, so concurrent tool calls need no locking.
type Server struct {
	MCPServer *sdkmcp.Server
	Pipeline  *framework.Pipeline
}

// NewServer creates an MCP server with the signal delivery tools.
func NewServer(p *framework.Pipeline, version string) *Server {
	s := &Server{Pipeline: p}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "seqguard", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "deliver_signal",
		Description: "Deliver one signal (alert, reset, revoke, report) with a numeric sequence. Returns the normalized sequence, or suppressed=true when the pipeline produced no output.",
	}, s.handleDeliverSignal)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "describe_pipeline",
		Description: "List pipeline nodes and which signal kinds each one forwards.",
	}, s.handleDescribePipeline)
}

// --- Tool input/output types ---

type deliverSignalInput struct {
	Signal string    `json:"signal" jsonschema:"signal kind: alert, reset, revoke or report"`
	Data   []float64 `json:"data" jsonschema:"numeric sequence to validate"`
}

type deliverSignalOutput struct {
	Pipeline   string    `json:"pipeline"`
	Signal     string    `json:"signal"`
	Suppressed bool      `json:"suppressed"`
	Data       []float64 `json:"data,omitempty"`
}

type describePipelineInput struct{}

type nodeInfo struct {
	Name      string   `json:"name"`
	ListOrder string   `json:"list_order,omitempty"`
	Field     string   `json:"field,omitempty"`
	Forwards  []string `json:"forwards"`
}

type describePipelineOutput struct {
	Pipeline string     `json:"pipeline"`
	Nodes    []nodeInfo `json:"nodes"`
}

// --- Tool handlers ---

func (s *Server) handleDeliverSignal(ctx context.Context, _ *sdkmcp.CallToolRequest, input deliverSignalInput) (*sdkmcp.CallToolResult, deliverSignalOutput, error) {
	logger := logging.New("mcp")
	sig, err := framework.ParseSignal(input.Signal)
	if err != nil {
		logger.Warn("deliver_signal rejected", "signal", input.Signal, "error", err)
		return nil, deliverSignalOutput{}, err
	}

	res, err := s.Pipeline.Deliver(ctx, sig, framework.Payload{validatesort.DefaultField: input.Data})
	if err != nil {
		return nil, deliverSignalOutput{}, fmt.Errorf("deliver %s: %w", sig, err)
	}

	out := deliverSignalOutput{Pipeline: s.Pipeline.Name(), Signal: string(sig), Suppressed: !res.Emitted}
	if res.Emitted {
		data, err := outputSequence(res.Payload[validatesort.DefaultField])
		if err != nil {
			return nil, deliverSignalOutput{}, err
		}
		out.Data = data
	}
	logger.Info("signal delivered", "signal", sig, "suppressed", out.Suppressed, "len", len(out.Data))
	return nil, out, nil
}

func (s *Server) handleDescribePipeline(_ context.Context, _ *sdkmcp.CallToolRequest, _ describePipelineInput) (*sdkmcp.CallToolResult, describePipelineOutput, error) {
	out := describePipelineOutput{Pipeline: s.Pipeline.Name(), Nodes: []nodeInfo{}}
	for _, n := range s.Pipeline.Nodes() {
		info := nodeInfo{Name: n.Name(), Forwards: []string{}}
		if vs, ok := n.(*validatesort.Node); ok {
			cfg := vs.Config()
			info.ListOrder = string(cfg.ListOrder)
			info.Field = cfg.Field
			for _, sig := range framework.Signals() {
				if vs.Forwards(sig) {
					info.Forwards = append(info.Forwards, string(sig))
				}
			}
		}
		out.Nodes = append(out.Nodes, info)
	}
	return nil, out, nil
}

func outputSequence(v any) ([]float64, error) {
	switch s := v.(type) {
	case []float64:
		return s, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("pipeline output field %q is %T, want []float64", validatesort.DefaultField, v)
}
