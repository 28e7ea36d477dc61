// Package validatesort implements the sort-validation pipeline node. For
// each enabled signal kind the node checks that the payload's sequence is
// monotonic and, when it is not, forwards a copy sorted into the
// configured order. Disabled signal kinds are suppressed.
package validatesort

import (
	"context"
	"fmt"
	"log/slog"

	"seqguard/internal/logging"
	"seqguard/internal/order"
	"seqguard/pkg/framework"
)

// Family is the pipeline DSL family name for this node.
const Family = "validate-sort"

// EventClassified is emitted to the pipeline observer after every
// classification. Metadata holds "order" and "coerced".
const EventClassified framework.EventType = "order_classified"

// Output is the result of one signal handler: a forwarded sequence or the
// suppressed marker. The zero value is suppressed. Values has the element
// type of the payload sequence ([]int64 for decoded integers, []float64 for
// decoded floats, the caller's own slice type otherwise).
type Output struct {
	Values    any
	forwarded bool
}

// Suppressed returns the marker for a disabled signal kind.
func Suppressed() Output { return Output{} }

// IsSuppressed reports whether the signal was swallowed.
func (o Output) IsSuppressed() bool { return !o.forwarded }

// Node validates sort order of a payload sequence. It holds no mutable
// state, so one Node may serve concurrent deliveries.
type Node struct {
	name   string
	cfg    Config
	logger *slog.Logger
}

// Option configures a Node.
type Option func(*Node)

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Node) { n.logger = l }
}

// New builds a Node. cfg is validated and copied.
func New(name string, cfg Config, opts ...Option) (*Node, error) {
	if name == "" {
		name = Family
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := &Node{name: name, cfg: cfg}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = logging.New(Family).With(slog.String("node", name))
	}
	return n, nil
}

// Factory adapts New to the pipeline DSL registry.
func Factory(def framework.NodeDef) (framework.Node, error) {
	cfg, err := ParseConfig(def.Config)
	if err != nil {
		return nil, err
	}
	n, err := New(def.Name, cfg)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Registry returns a DSL registry containing this node family.
func Registry() framework.Registry {
	return framework.Registry{Family: Factory}
}

func (n *Node) Name() string   { return n.name }
func (n *Node) Config() Config { return n.cfg }

// Forwards reports whether the node acts on sig.
func (n *Node) Forwards(sig framework.Signal) bool { return n.cfg.Forwards(sig) }

func (n *Node) OnAlert(p framework.Payload) (Output, error) {
	return n.on(context.Background(), framework.SignalAlert, p)
}

func (n *Node) OnReset(p framework.Payload) (Output, error) {
	return n.on(context.Background(), framework.SignalReset, p)
}

func (n *Node) OnRevoke(p framework.Payload) (Output, error) {
	return n.on(context.Background(), framework.SignalRevoke, p)
}

func (n *Node) OnReport(p framework.Payload) (Output, error) {
	return n.on(context.Background(), framework.SignalReport, p)
}

// Handle implements framework.Node. The returned payload is a copy of p
// with the sequence field replaced by the normalized sequence.
func (n *Node) Handle(ctx context.Context, sig framework.Signal, p framework.Payload) (framework.Result, error) {
	if _, err := framework.ParseSignal(string(sig)); err != nil {
		return framework.Result{}, err
	}
	out, err := n.on(ctx, sig, p)
	if err != nil {
		return framework.Result{}, err
	}
	if out.IsSuppressed() {
		return framework.NoOutput(), nil
	}
	next := p.Clone()
	next[n.cfg.Field] = out.Values
	return framework.Emit(next), nil
}

func (n *Node) on(ctx context.Context, sig framework.Signal, p framework.Payload) (Output, error) {
	if !n.cfg.Forwards(sig) {
		return Suppressed(), nil
	}

	res, err := order.Normalize(p[n.cfg.Field], n.cfg.ListOrder)
	if err != nil {
		return Output{}, fmt.Errorf("field %q: %w", n.cfg.Field, err)
	}

	if res.Coerced {
		n.logger.Info("input is not sorted and is now sorted", "order", res.Order, "signal", sig)
	} else {
		n.logger.Info("input is sorted", "order", res.Order, "signal", sig)
	}
	framework.Notify(framework.ObserverFrom(ctx), framework.Event{
		Type:     EventClassified,
		Node:     n.name,
		Signal:   sig,
		Metadata: map[string]any{"order": string(res.Order), "coerced": res.Coerced},
	})

	return Output{Values: res.Values, forwarded: true}, nil
}
