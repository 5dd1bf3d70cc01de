package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrCycleDetected is returned by TopologicalSort when the emitted
	// order is shorter than the node count.
	ErrCycleDetected = errors.New("workflow graph contains a cycle")

	// ErrUnknownEdgeEndpoint is returned by Build when an edge names a
	// node that is not in the graph.
	ErrUnknownEdgeEndpoint = errors.New("edge references a node not present in the workflow")
)
