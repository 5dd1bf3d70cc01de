package node_test

import (
	"testing"

	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

func salesTable() *table.Table {
	tbl, _ := table.New([]table.Column{
		{Name: "dept", Kind: table.KindString, Strings: []string{"Sales", "Sales", "Eng"}, Nulls: []bool{false, false, false}},
		{Name: "emp", Kind: table.KindString, Strings: []string{"Alice", "Bob", "Charlie"}, Nulls: []bool{false, false, false}},
		{Name: "salary", Kind: table.KindInt64, Ints: []int64{50000, 55000, 70000}, Nulls: []bool{false, false, false}},
	})
	return tbl
}

func TestAggregateSumAndCount(t *testing.T) {
	r := node.DefaultRegistry()
	n, err := r.New(workflow.NodeTypeAggregate, map[string]interface{}{
		"groupBy": []interface{}{"dept"},
		"aggregations": []interface{}{
			map[string]interface{}{"col": "salary", "op": "sum", "as": "total"},
			map[string]interface{}{"col": "emp", "op": "count", "as": "headcount"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := n.Execute([]*table.Table{salesTable()})
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.Data.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", result.Data.NumRows())
	}
	dept, _ := result.Data.Column("dept")
	total, _ := result.Data.Column("total")
	headcount, _ := result.Data.Column("headcount")
	// Eng sorts before Sales lexicographically.
	if dept.Strings[0] != "Eng" || total.Floats[0] != 70000 || headcount.Ints[0] != 1 {
		t.Fatalf("unexpected Eng row: dept=%s total=%v count=%v", dept.Strings[0], total.Floats[0], headcount.Ints[0])
	}
	if dept.Strings[1] != "Sales" || total.Floats[1] != 105000 || headcount.Ints[1] != 2 {
		t.Fatalf("unexpected Sales row: dept=%s total=%v count=%v", dept.Strings[1], total.Floats[1], headcount.Ints[1])
	}
}

func TestAggregateUnsupportedOpFailsAtConstruction(t *testing.T) {
	r := node.DefaultRegistry()
	n, err := r.New(workflow.NodeTypeAggregate, map[string]interface{}{
		"groupBy": []interface{}{"dept"},
		"aggregations": []interface{}{
			map[string]interface{}{"col": "salary", "op": "median", "as": "m"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := n.Execute([]*table.Table{salesTable()})
	if result.Success {
		t.Fatal("expected failure for unsupported op")
	}
}

func TestAggregateMissingGroupByColumnFails(t *testing.T) {
	r := node.DefaultRegistry()
	n, err := r.New(workflow.NodeTypeAggregate, map[string]interface{}{
		"groupBy": []interface{}{"ghost"},
		"aggregations": []interface{}{
			map[string]interface{}{"col": "salary", "op": "sum", "as": "total"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := n.Execute([]*table.Table{salesTable()})
	if result.Success {
		t.Fatal("expected failure for missing groupBy column")
	}
}

func TestAggregateRowBound(t *testing.T) {
	r := node.DefaultRegistry()
	n, err := r.New(workflow.NodeTypeAggregate, map[string]interface{}{
		"groupBy": []interface{}{"dept"},
		"aggregations": []interface{}{
			map[string]interface{}{"col": "salary", "op": "sum", "as": "total"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := n.Execute([]*table.Table{salesTable()})
	if !result.Success || result.Data.NumRows() > 2 {
		t.Fatalf("expected aggregate row count <= distinct groupBy tuples")
	}
}
