// Package engine is the workflow Executor: it builds a pkg/graph from a
// workflow.Document, topologically sorts it, and runs each node in order,
// gathering inputs from upstream outputs sorted by toPort and handing each
// node an independent copy. Engine-level failures (empty workflow, unknown
// node type, unknown edge endpoint, cycle) abort Execute; a node's own
// failure is recorded on its NodeResult and execution continues.
package engine
