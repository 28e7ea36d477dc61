package framework

import (
	"context"
	"fmt"
	"time"
)

// Pipeline is an ordered chain of Nodes. A signal enters at the first node
// and each node receives the payload the previous one emitted.
type Pipeline struct {
	name      string
	nodes     []Node
	nodeIndex map[string]Node
	observer  Observer
}

// PipelineOption configures a Pipeline during construction.
type PipelineOption func(*Pipeline)

// WithObserver attaches an observer that receives delivery events. Nodes
// reach the same observer through ObserverFrom on the handler context.
func WithObserver(obs Observer) PipelineOption {
	return func(p *Pipeline) {
		p.observer = obs
	}
}

// NewPipeline constructs a Pipeline from the provided nodes. Node names
// must be non-empty and unique.
func NewPipeline(name string, nodes []Node, opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		name:      name,
		nodes:     nodes,
		nodeIndex: make(map[string]Node, len(nodes)),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: node %d is nil", ErrUnnamedNode, i)
		}
		if n.Name() == "" {
			return nil, fmt.Errorf("%w: node %d", ErrUnnamedNode, i)
		}
		if _, dup := p.nodeIndex[n.Name()]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateNode, n.Name())
		}
		p.nodeIndex[n.Name()] = n
	}
	return p, nil
}

func (p *Pipeline) Name() string  { return p.name }
func (p *Pipeline) Nodes() []Node { return p.nodes }

func (p *Pipeline) NodeByName(name string) (Node, bool) {
	n, ok := p.nodeIndex[name]
	return n, ok
}

// Deliver runs one signal through the pipeline. The caller's payload is
// never modified. A node returning NoOutput ends the delivery with
// NoOutput; a node error ends it with that error wrapped by the node name.
// An empty pipeline emits the payload unchanged.
func (p *Pipeline) Deliver(ctx context.Context, sig Signal, payload Payload) (Result, error) {
	if _, err := ParseSignal(string(sig)); err != nil {
		return Result{}, err
	}

	obs := p.observer
	ctx = ContextWithObserver(ctx, obs)
	Notify(obs, Event{Type: EventSignalReceived, Pipeline: p.name, Signal: sig})

	current := payload.Clone()
	for _, node := range p.nodes {
		if err := ctx.Err(); err != nil {
			Notify(obs, Event{Type: EventNodeError, Pipeline: p.name, Node: node.Name(), Signal: sig, Error: err})
			return Result{}, err
		}

		Notify(obs, Event{Type: EventNodeEnter, Pipeline: p.name, Node: node.Name(), Signal: sig})
		start := time.Now()

		res, err := node.Handle(ctx, sig, current)
		elapsed := time.Since(start)

		if err != nil {
			Notify(obs, Event{Type: EventNodeError, Pipeline: p.name, Node: node.Name(), Signal: sig, Elapsed: elapsed, Error: err})
			return Result{}, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		if !res.Emitted {
			Notify(obs, Event{Type: EventNodeSuppress, Pipeline: p.name, Node: node.Name(), Signal: sig, Elapsed: elapsed})
			return NoOutput(), nil
		}

		Notify(obs, Event{Type: EventNodeForward, Pipeline: p.name, Node: node.Name(), Signal: sig, Elapsed: elapsed})
		current = res.Payload
	}

	Notify(obs, Event{Type: EventDeliveryComplete, Pipeline: p.name, Signal: sig})
	return Emit(current), nil
}

type observerKey struct{}

// ContextWithObserver returns a context carrying obs for node handlers.
func ContextWithObserver(ctx context.Context, obs Observer) context.Context {
	if obs == nil {
		return ctx
	}
	return context.WithValue(ctx, observerKey{}, obs)
}

// ObserverFrom returns the observer installed by the pipeline, or nil.
func ObserverFrom(ctx context.Context) Observer {
	obs, _ := ctx.Value(observerKey{}).(Observer)
	return obs
}
