package framework

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PipelineDef is the top-level DSL structure for declaring a pipeline.
// Nodes run in the order they are listed.
type PipelineDef struct {
	Pipeline    string    `yaml:"pipeline"`
	Description string    `yaml:"description,omitempty"`
	Nodes       []NodeDef `yaml:"nodes"`
}

// NodeDef declares a node in the pipeline. Config is handed to the
// family's factory untouched.
type NodeDef struct {
	Name   string         `yaml:"name"`
	Family string         `yaml:"family"`
	Config map[string]any `yaml:"config,omitempty"`
}

// Factory builds a Node from its definition.
type Factory func(def NodeDef) (Node, error)

// Registry maps node family names to factories.
type Registry map[string]Factory

// LoadPipeline parses a YAML pipeline definition and returns a PipelineDef.
func LoadPipeline(data []byte) (*PipelineDef, error) {
	var def PipelineDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse pipeline YAML: %w", err)
	}
	return &def, nil
}

// Marshal serializes a PipelineDef back to YAML.
func (def *PipelineDef) Marshal() ([]byte, error) {
	return yaml.Marshal(*def)
}

// Validate checks the pipeline definition:
//   - pipeline name is non-empty
//   - at least one node exists
//   - every node has a name and a family
//   - node names are unique
func (def *PipelineDef) Validate() error {
	if def.Pipeline == "" {
		return fmt.Errorf("pipeline name is required")
	}
	if len(def.Nodes) == 0 {
		return fmt.Errorf("at least one node is required")
	}

	seen := make(map[string]bool, len(def.Nodes))
	for _, n := range def.Nodes {
		if n.Name == "" {
			return fmt.Errorf("node name is required")
		}
		if n.Family == "" {
			return fmt.Errorf("node %q: family is required", n.Name)
		}
		if seen[n.Name] {
			return fmt.Errorf("%w %q", ErrDuplicateNode, n.Name)
		}
		seen[n.Name] = true
	}
	return nil
}

// Build constructs a Pipeline from the definition using the registry.
func (def *PipelineDef) Build(reg Registry, opts ...PipelineOption) (*Pipeline, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	nodes := make([]Node, 0, len(def.Nodes))
	for _, nd := range def.Nodes {
		factory, ok := reg[nd.Family]
		if !ok {
			return nil, fmt.Errorf("%w for family %q (node %q)", ErrNoFactory, nd.Family, nd.Name)
		}
		n, err := factory(nd)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nd.Name, err)
		}
		nodes = append(nodes, n)
	}
	return NewPipeline(def.Pipeline, nodes, opts...)
}
