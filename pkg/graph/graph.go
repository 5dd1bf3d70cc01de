// Package graph builds the forward/reverse adjacency for a workflow
// document and performs Kahn's-algorithm topological sorting with
// deterministic, id-lexicographic tie-breaking.
package graph

import (
	"fmt"
	"sort"

	"github.com/dataflow-studio/engine/pkg/workflow"
)

// Graph is the adjacency structure built from a workflow document's node
// ids and edges.
type Graph struct {
	nodeIDs []string
	forward map[string][]string       // fromNodeId -> []toNodeId, one entry per edge
	byFrom  map[string][]workflow.Edge // fromNodeId -> outgoing edges
	reverse map[string][]workflow.Edge // toNodeId -> incoming edges
}

// Build constructs a Graph from the given node ids and edges, verifying
// every edge endpoint names a known node.
func Build(nodeIDs []string, edges []workflow.Edge) (*Graph, error) {
	known := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		known[id] = true
	}
	g := &Graph{
		nodeIDs: nodeIDs,
		forward: make(map[string][]string, len(nodeIDs)),
		byFrom:  make(map[string][]workflow.Edge, len(nodeIDs)),
		reverse: make(map[string][]workflow.Edge, len(nodeIDs)),
	}
	for _, edge := range edges {
		if !known[edge.FromNodeID] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEdgeEndpoint, edge.FromNodeID)
		}
		if !known[edge.ToNodeID] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEdgeEndpoint, edge.ToNodeID)
		}
		g.forward[edge.FromNodeID] = append(g.forward[edge.FromNodeID], edge.ToNodeID)
		g.byFrom[edge.FromNodeID] = append(g.byFrom[edge.FromNodeID], edge)
		g.reverse[edge.ToNodeID] = append(g.reverse[edge.ToNodeID], edge)
	}
	return g, nil
}

// TopologicalSort orders nodeIDs via Kahn's algorithm. The ready set (nodes
// with no remaining unprocessed dependency) is kept sorted by id and the
// least id is dequeued first, so that two graphs with identical structure
// always produce identical orderings regardless of input node order.
func (g *Graph) TopologicalSort() ([]string, error) {
	n := len(g.nodeIDs)
	if n == 0 {
		return []string{}, nil
	}

	inDegree := make(map[string]int, n)
	for _, id := range g.nodeIDs {
		inDegree[id] = len(g.reverse[id])
	}

	ready := make([]string, 0, n)
	for _, id := range g.nodeIDs {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, n)
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)

		for _, next := range g.forward[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				pos := sort.SearchStrings(ready, next)
				ready = append(ready, "")
				copy(ready[pos+1:], ready[pos:])
				ready[pos] = next
			}
		}
	}

	if len(order) != n {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// InputEdges returns the edges whose target is nodeID, in the order they
// were added (callers that need a toPort-sorted gather order should sort
// the result themselves, since that ordering is an execution-gather
// concern, not a topology concern).
func (g *Graph) InputEdges(nodeID string) []workflow.Edge {
	return g.reverse[nodeID]
}

// OutputEdges returns the edges whose source is nodeID, in the order they
// were added.
func (g *Graph) OutputEdges(nodeID string) []workflow.Edge {
	return g.byFrom[nodeID]
}
