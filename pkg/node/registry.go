package node

import (
	"fmt"
	"sync"

	"github.com/dataflow-studio/engine/pkg/workflow"
)

// Registry maps a registered node type to its Factory and catalog
// descriptor. An RWMutex-guarded map supports concurrent reads from
// multiple in-flight executions while registration stays rare.
type Registry struct {
	mu          sync.RWMutex
	factories   map[workflow.NodeType]Factory
	descriptors map[workflow.NodeType]workflow.NodeDescriptor
}

// NewRegistry returns an empty Registry. Use DefaultRegistry for one
// pre-populated with the eight built-in node kinds.
func NewRegistry() *Registry {
	return &Registry{
		factories:   make(map[workflow.NodeType]Factory),
		descriptors: make(map[workflow.NodeType]workflow.NodeDescriptor),
	}
}

// Register adds a node kind's factory and catalog descriptor. Returns an
// error if the type is already registered.
func (r *Registry) Register(desc workflow.NodeDescriptor, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[desc.Type]; exists {
		return fmt.Errorf("node type already registered: %s", desc.Type)
	}
	r.factories[desc.Type] = factory
	r.descriptors[desc.Type] = desc
	return nil
}

// MustRegister registers a node kind and panics on error; DefaultRegistry
// uses it for the built-in catalog, where a duplicate
// registration is a programmer error, not a runtime condition.
func (r *Registry) MustRegister(desc workflow.NodeDescriptor, factory Factory) {
	if err := r.Register(desc, factory); err != nil {
		panic(err)
	}
}

// New constructs a Node for the given type and config. Returns
// ErrUnknownNodeType if the type is not registered — the one condition
// the Executor must treat as an engine-level, run-aborting error rather
// than a per-node failure.
func (r *Registry) New(nodeType workflow.NodeType, config map[string]interface{}, store TableStore) (Node, error) {
	r.mu.RLock()
	factory, exists := r.factories[nodeType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeType)
	}
	return factory(config, store)
}

// Catalog returns the descriptors for every registered node kind, in no
// particular order; callers that need a stable order (e.g. the HTTP
// front door) should sort by Type.
func (r *Registry) Catalog() []workflow.NodeDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]workflow.NodeDescriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	return out
}

// DefaultRegistry returns a Registry pre-populated with the eight
// built-in node kinds (ReadCSV, Filter, Select, Sort, Formula, Join,
// Aggregate, Output).
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(workflow.NodeDescriptor{
		Type: workflow.NodeTypeReadCSV, DisplayName: "Read CSV",
		Description: "Reads a tabular source from the configured TableStore.",
		InputCount:  0, OutputCount: 1,
	}, newReadCSVFactory)
	r.MustRegister(workflow.NodeDescriptor{
		Type: workflow.NodeTypeFilter, DisplayName: "Filter",
		Description: "Keeps rows where a boolean expression evaluates true.",
		InputCount:  1, OutputCount: 1,
	}, newFilterFactory)
	r.MustRegister(workflow.NodeDescriptor{
		Type: workflow.NodeTypeSelect, DisplayName: "Select",
		Description: "Projects and reorders columns.",
		InputCount:  1, OutputCount: 1,
	}, newSelectFactory)
	r.MustRegister(workflow.NodeDescriptor{
		Type: workflow.NodeTypeSort, DisplayName: "Sort",
		Description: "Stably sorts rows by one or more columns.",
		InputCount:  1, OutputCount: 1,
	}, newSortFactory)
	r.MustRegister(workflow.NodeDescriptor{
		Type: workflow.NodeTypeFormula, DisplayName: "Formula",
		Description: "Appends or replaces a column with a computed expression.",
		InputCount:  1, OutputCount: 1,
	}, newFormulaFactory)
	r.MustRegister(workflow.NodeDescriptor{
		Type: workflow.NodeTypeJoin, DisplayName: "Join",
		Description:    "Joins two tables on a key column.",
		InputCount:     2, OutputCount: 1,
		InputPortNames: []string{"in_0", "in_1"},
	}, newJoinFactory)
	r.MustRegister(workflow.NodeDescriptor{
		Type: workflow.NodeTypeAggregate, DisplayName: "Aggregate",
		Description: "Groups rows and computes per-group aggregations.",
		InputCount:  1, OutputCount: 1,
	}, newAggregateFactory)
	r.MustRegister(workflow.NodeDescriptor{
		Type: workflow.NodeTypeOutput, DisplayName: "Output",
		Description: "Writes the input table to the configured TableStore.",
		InputCount:  1, OutputCount: 0,
	}, newOutputFactory)
	return r
}
