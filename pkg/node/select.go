package node

import (
	"fmt"
	"strings"

	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

// selectNode projects and reorders columns. An empty columns list is a
// passthrough; any name absent from the input fails the node.
type selectNode struct {
	columns []string
}

func newSelectFactory(config map[string]interface{}, _ TableStore) (Node, error) {
	columns, _, err := stringSlice(config, "columns")
	if err != nil {
		return newFailedNode(err), nil
	}
	return selectNode{columns: columns}, nil
}

func (n selectNode) Execute(inputs []*table.Table) workflow.NodeResult {
	if len(inputs) != 1 || inputs[0] == nil {
		return workflow.NodeResult{Success: false, Error: ErrWrongInputCount.Error()}
	}
	in := inputs[0]
	if len(n.columns) == 0 {
		return workflow.NodeResult{Success: true, Data: in}
	}

	var missing []string
	cols := make([]table.Column, 0, len(n.columns))
	for _, name := range n.columns {
		c, ok := in.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols = append(cols, *c)
	}
	if len(missing) > 0 {
		return workflow.NodeResult{Success: false, Error: fmt.Sprintf("Columns not found: %s", strings.Join(missing, ", "))}
	}

	out, err := table.New(cols)
	if err != nil {
		return workflow.NodeResult{Success: false, Error: err.Error()}
	}
	return workflow.NodeResult{Success: true, Data: out}
}
