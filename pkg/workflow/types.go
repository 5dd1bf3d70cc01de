// Package workflow defines the shared wire and in-memory types for workflow
// documents: nodes, edges, the node catalog descriptor, and the per-node
// execution result. Centralizing these here (rather than in engine or node)
// avoids import cycles between the engine, the node implementations, and
// the HTTP front door.
package workflow

import "github.com/dataflow-studio/engine/pkg/table"

// NodeType identifies a registered node kind.
type NodeType string

const (
	NodeTypeReadCSV    NodeType = "ReadCSV"
	NodeTypeFilter     NodeType = "Filter"
	NodeTypeSelect     NodeType = "Select"
	NodeTypeSort       NodeType = "Sort"
	NodeTypeFormula    NodeType = "Formula"
	NodeTypeJoin       NodeType = "Join"
	NodeTypeAggregate  NodeType = "Aggregate"
	NodeTypeOutput     NodeType = "Output"
)

// Node is one vertex of a workflow document: an id, a registered type, and
// an untyped config map the node's own config struct interprets (parsed
// once at graph-build time into the node's typed config — see pkg/node).
type Node struct {
	ID     string                 `json:"id"`
	Type   NodeType               `json:"type"`
	Config map[string]interface{} `json:"config"`
}

// Edge is a directed connection carrying a table from an upstream node's
// output port to a downstream node's input port. Ports default to "out"
// and "in". Alternate snake_case field names are accepted on decode (see
// UnmarshalJSON) to satisfy the external interface's from_node_id-style
// aliases.
type Edge struct {
	FromNodeID string `json:"fromNodeId"`
	FromPort   string `json:"fromPort"`
	ToNodeID   string `json:"toNodeId"`
	ToPort     string `json:"toPort"`
}

// DefaultFromPort and DefaultToPort are applied when an edge omits its port
// names.
const (
	DefaultFromPort = "out"
	DefaultToPort   = "in"
)

// Document is the workflow document: a (nodes, edges) pair, the unit
// Execute consumes.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeResult is the per-node record produced by Execute: success, the
// output table (nil on failure), an error message, and free-form metadata
// (e.g. Output's written file id). ExternalNodeResult's Rows/Columns/
// Preview are derived views over Data, computed on demand by External().
type NodeResult struct {
	Success  bool
	Data     *table.Table
	Error    string
	Metadata map[string]interface{}
}

// maxPreviewRows bounds the preview rows embedded in the external form.
const maxPreviewRows = 100

// ExternalNodeResult is the external (HTTP-facing) wire shape for one
// node's result.
type ExternalNodeResult struct {
	NodeID  string                   `json:"node_id"`
	Success bool                     `json:"success"`
	Rows    int                      `json:"rows"`
	Columns []string                 `json:"columns"`
	Preview []map[string]interface{} `json:"preview"`
	Error   *string                  `json:"error"`
}

// External converts a NodeResult to its wire form.
func (r NodeResult) External(nodeID string) ExternalNodeResult {
	out := ExternalNodeResult{NodeID: nodeID, Success: r.Success}
	if r.Error != "" {
		errCopy := r.Error
		out.Error = &errCopy
	}
	if r.Data == nil {
		return out
	}
	out.Rows = r.Data.NumRows()
	out.Columns = r.Data.ColumnNames()
	n := r.Data.NumRows()
	if n > maxPreviewRows {
		n = maxPreviewRows
	}
	out.Preview = make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		row := make(map[string]interface{}, len(out.Columns))
		for _, name := range out.Columns {
			col, _ := r.Data.Column(name)
			row[name] = col.Any(i)
		}
		out.Preview[i] = row
	}
	return out
}

// NodeDescriptor is the node-catalog metadata record returned by
// NodeCatalog(): a node kind's type, display name, description, arity,
// and — for multi-input nodes — its required port names.
type NodeDescriptor struct {
	Type           NodeType `json:"type"`
	DisplayName    string   `json:"displayName"`
	Description    string   `json:"description"`
	InputCount     int      `json:"inputCount"`
	OutputCount    int      `json:"outputCount"`
	InputPortNames []string `json:"inputPortNames,omitempty"`
}
