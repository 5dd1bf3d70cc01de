package node

import (
	"github.com/dataflow-studio/engine/pkg/expression"
	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

// filterNode keeps rows where config.expression evaluates true. An
// empty/missing expression is a passthrough.
type filterNode struct {
	expr string
}

func newFilterFactory(config map[string]interface{}, _ TableStore) (Node, error) {
	expr, _ := configString(config, "expression")
	return filterNode{expr: expr}, nil
}

func (n filterNode) Execute(inputs []*table.Table) workflow.NodeResult {
	if len(inputs) != 1 || inputs[0] == nil {
		return workflow.NodeResult{Success: false, Error: ErrWrongInputCount.Error()}
	}
	if n.expr == "" {
		return workflow.NodeResult{Success: true, Data: inputs[0]}
	}
	out, err := expression.EvaluateFilter(inputs[0], n.expr)
	if err != nil {
		return workflow.NodeResult{Success: false, Error: err.Error()}
	}
	return workflow.NodeResult{Success: true, Data: out}
}
