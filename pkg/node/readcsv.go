package node

import (
	"errors"
	"fmt"

	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

type readCSVConfig struct {
	uploadID string
	header   bool
	sep      rune
}

// readCSVNode reads a table from the TableStore by upload id. It holds
// its parsed config and the store it needs, rather than re-reading the
// untyped config map on every Execute.
type readCSVNode struct {
	config readCSVConfig
	store  TableStore
}

func newReadCSVFactory(config map[string]interface{}, store TableStore) (Node, error) {
	uploadID, err := requireString(config, "upload_id")
	if err != nil {
		return newFailedNode(err), nil
	}
	sepStr := optionalString(config, "sep", ",")
	if len(sepStr) != 1 {
		return newFailedNode(fmt.Errorf("%w: sep must be a single character", ErrInvalidConfigField)), nil
	}
	return readCSVNode{
		config: readCSVConfig{
			uploadID: uploadID,
			header:   optionalBool(config, "header", true),
			sep:      rune(sepStr[0]),
		},
		store: store,
	}, nil
}

func (n readCSVNode) Execute(_ []*table.Table) workflow.NodeResult {
	if n.store == nil {
		return workflow.NodeResult{Success: false, Error: "no table store configured"}
	}
	tbl, err := n.store.ReadCSV(n.config.uploadID, CSVReadOptions{Header: n.config.header, Separator: n.config.sep})
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return workflow.NodeResult{Success: false, Error: fmt.Sprintf("Uploaded file not found: %s", n.config.uploadID)}
		}
		return workflow.NodeResult{Success: false, Error: err.Error()}
	}
	return workflow.NodeResult{Success: true, Data: tbl}
}
