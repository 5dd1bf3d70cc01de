package node

import (
	"github.com/dataflow-studio/engine/pkg/expression"
	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

// formulaNode appends (or replaces) newCol with the evaluated expression.
type formulaNode struct {
	newCol string
	expr   string
}

func newFormulaFactory(config map[string]interface{}, _ TableStore) (Node, error) {
	newCol, err := requireString(config, "newCol")
	if err != nil {
		return newFailedNode(err), nil
	}
	expr, err := requireString(config, "expression")
	if err != nil {
		return newFailedNode(err), nil
	}
	return formulaNode{newCol: newCol, expr: expr}, nil
}

func (n formulaNode) Execute(inputs []*table.Table) workflow.NodeResult {
	if len(inputs) != 1 || inputs[0] == nil {
		return workflow.NodeResult{Success: false, Error: ErrWrongInputCount.Error()}
	}
	out, err := expression.EvaluateFormula(inputs[0], n.expr, n.newCol)
	if err != nil {
		return workflow.NodeResult{Success: false, Error: err.Error()}
	}
	return workflow.NodeResult{Success: true, Data: out}
}
