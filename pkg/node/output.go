package node

import (
	"fmt"

	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

type outputNode struct {
	format string
	store  TableStore
}

func newOutputFactory(config map[string]interface{}, store TableStore) (Node, error) {
	format := optionalString(config, "format", "csv")
	if format != "csv" {
		return newFailedNode(fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)), nil
	}
	return outputNode{format: format, store: store}, nil
}

func (n outputNode) Execute(inputs []*table.Table) workflow.NodeResult {
	if len(inputs) != 1 || inputs[0] == nil {
		return workflow.NodeResult{Success: false, Error: ErrWrongInputCount.Error()}
	}
	if n.store == nil {
		return workflow.NodeResult{Success: false, Error: "no table store configured"}
	}
	id, err := n.store.WriteCSV(inputs[0])
	if err != nil {
		return workflow.NodeResult{Success: false, Error: err.Error()}
	}
	return workflow.NodeResult{
		Success:  true,
		Data:     inputs[0],
		Metadata: map[string]interface{}{"file_id": id},
	}
}
