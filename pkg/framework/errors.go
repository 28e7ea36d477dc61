package framework

import "errors"

var (
	// ErrUnnamedNode is returned when a pipeline is given a nil node or one
	// with an empty name.
	ErrUnnamedNode = errors.New("framework: node has no name")

	// ErrDuplicateNode is returned when two nodes in one pipeline share a name.
	ErrDuplicateNode = errors.New("framework: duplicate node name")

	// ErrUnknownSignal is returned for a signal kind outside alert, reset, revoke, report.
	ErrUnknownSignal = errors.New("framework: unknown signal kind")

	// ErrNoFactory is returned when a pipeline definition names a node family
	// that has no registered factory.
	ErrNoFactory = errors.New("framework: no node factory")
)
