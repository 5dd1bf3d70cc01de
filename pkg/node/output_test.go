package node_test

import (
	"testing"

	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

func TestOutputWritesAndEchoesInput(t *testing.T) {
	store := newFakeStore()
	r := node.DefaultRegistry()
	n, err := r.New(workflow.NodeTypeOutput, map[string]interface{}{}, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := ageTable()
	result := n.Execute([]*table.Table{in})
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if !result.Data.Equal(in) {
		t.Fatal("expected Output to echo its input as data")
	}
	if result.Metadata["file_id"] == nil {
		t.Fatal("expected metadata.file_id to be set")
	}
}

func TestOutputUnsupportedFormatFailsAtConstruction(t *testing.T) {
	r := node.DefaultRegistry()
	n, err := r.New(workflow.NodeTypeOutput, map[string]interface{}{"format": "parquet"}, newFakeStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := n.Execute([]*table.Table{ageTable()})
	if result.Success {
		t.Fatal("expected failure for unsupported format")
	}
}

func TestOutputZeroInputsFails(t *testing.T) {
	r := node.DefaultRegistry()
	n, err := r.New(workflow.NodeTypeOutput, map[string]interface{}{}, newFakeStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := n.Execute(nil)
	if result.Success {
		t.Fatal("expected failure with zero inputs")
	}
}
