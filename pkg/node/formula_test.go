package node_test

import (
	"testing"

	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

func TestFormulaAppendsColumn(t *testing.T) {
	r := node.DefaultRegistry()
	n, err := r.New(workflow.NodeTypeFormula, map[string]interface{}{"newCol": "doubled", "expression": "age * 2"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := n.Execute([]*table.Table{ageTable()})
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.Data.NumCols() != 3 {
		t.Fatalf("expected 3 columns, got %d", result.Data.NumCols())
	}
	col, _ := result.Data.Column("doubled")
	if col.Ints[0] != 50 {
		t.Fatalf("unexpected value: %d", col.Ints[0])
	}
}

func TestFormulaMissingRequiredFields(t *testing.T) {
	r := node.DefaultRegistry()
	n, err := r.New(workflow.NodeTypeFormula, map[string]interface{}{"newCol": "x"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := n.Execute([]*table.Table{ageTable()})
	if result.Success {
		t.Fatal("expected failure for missing expression")
	}
}
