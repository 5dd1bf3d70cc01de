// Package graph provides the dependency graph built from a workflow
// document's nodes and edges: topological ordering for the execution
// scheduler, and input/output edge lookups for the per-node gather step.
//
// # Topological Sort
//
// Build constructs a Graph from a node-id list and an edge list, then
// TopologicalSort orders the nodes via Kahn's algorithm: nodes with no
// remaining unprocessed dependency form the "ready set", and the
// lexicographically-least id in that set is dequeued first. The ready set
// is kept sorted at every step — not just at the initial frontier — so two
// workflow documents with identical structure always produce the identical
// execution order regardless of the order nodes happen to appear in the
// document.
//
//	g, err := graph.Build(nodeIDs, edges)
//	order, err := g.TopologicalSort()
//	for _, id := range order {
//	    // execute node id
//	}
//
// If the graph contains a cycle, TopologicalSort returns ErrCycleDetected:
// Kahn's algorithm terminates with fewer nodes ordered than exist in the
// graph whenever some nodes never reach zero in-degree.
//
// # Edge Lookups
//
// InputEdges and OutputEdges return the edges incident on a node, letting
// the executor gather a node's inputs (sorted by to-port) and determine
// which downstream nodes consume a node's output.
package graph
