// Package node implements the eight workflow node kinds (ReadCSV, Filter,
// Select, Sort, Formula, Join, Aggregate, Output) behind a common Node
// contract, plus the Registry that builds a Node instance from its
// document (type, config) pair.
package node

import (
	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

// Node is the per-node execution contract: a pure function of its
// (already-validated) config and the inputs the Executor gathers for it.
// Execute must never panic-propagate to the caller in a way the Executor
// cannot recover — the Executor wraps every call in a recover(), but
// well-behaved nodes report failures through NodeResult instead.
type Node interface {
	Execute(inputs []*table.Table) workflow.NodeResult
}

// CSVReadOptions carries the per-node header/separator config that the
// ReadCSV node passes through to the store, so its `header`/`sep` config
// fields are actually honored rather than silently ignored.
type CSVReadOptions struct {
	Header    bool
	Separator rune
}

// TableStore is the storage abstraction ReadCSV and Output nodes are
// constructed against. Defined here (rather than imported from pkg/storage)
// so pkg/node does not depend on any particular storage backend — the
// Executor supplies a concrete implementation at construction.
type TableStore interface {
	ReadCSV(id string, opts CSVReadOptions) (*table.Table, error)
	WriteCSV(tbl *table.Table) (string, error)
}

// Factory builds one Node instance from its config map, using store for
// the two node kinds that perform I/O. Config is parsed and validated
// once here, not on every Execute call, so that a misconfigured node
// reports the same failure on every execution without re-parsing.
type Factory func(config map[string]interface{}, store TableStore) (Node, error)

// failedNode is returned by a Factory when a node's config is invalid.
// Its Execute always reports the captured error as the node's own
// NodeResult; a config error does not abort the run the way an unknown
// node type does.
type failedNode struct {
	message string
}

func (f failedNode) Execute(_ []*table.Table) workflow.NodeResult {
	return workflow.NodeResult{Success: false, Error: f.message}
}

// newFailedNode wraps a config error as a Node whose Execute always fails.
func newFailedNode(err error) Node {
	return failedNode{message: err.Error()}
}
