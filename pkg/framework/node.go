package framework

import (
	"context"
	"maps"
)

// Node is a processing stage in a pipeline. Implementations are
// domain-specific (e.g. sort validation).
type Node interface {
	Name() string
	Handle(ctx context.Context, sig Signal, p Payload) (Result, error)
}

// NodeFunc adapts a named function to the Node interface.
type NodeFunc struct {
	NodeName string
	Fn       func(ctx context.Context, sig Signal, p Payload) (Result, error)
}

func (f NodeFunc) Name() string { return f.NodeName }

func (f NodeFunc) Handle(ctx context.Context, sig Signal, p Payload) (Result, error) {
	return f.Fn(ctx, sig, p)
}

// Payload is the record a signal carries between nodes.
type Payload map[string]any

// Clone returns a shallow copy. Nodes that change a field must clone first
// so the caller's payload stays untouched.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	return maps.Clone(p)
}

// Result is a node's answer to a signal: either a payload to forward or
// the explicit no-output marker. The zero value is NoOutput.
type Result struct {
	Payload Payload
	Emitted bool
}

// NoOutput marks a signal the node chose not to act on. It is not an error.
func NoOutput() Result { return Result{} }

// Emit wraps a payload to forward downstream.
func Emit(p Payload) Result { return Result{Payload: p, Emitted: true} }
