package node

import (
	"fmt"
	"sort"

	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

// sortNode stably sorts rows by one or more key columns, lexicographically
// by key order, each key independently ascending or descending.
type sortNode struct {
	columns    []string
	ascending  []bool // one entry per column, expanded from bool|[]bool
	configured bool   // false when columns is empty: passthrough
}

func newSortFactory(config map[string]interface{}, _ TableStore) (Node, error) {
	columns, present, err := stringSlice(config, "columns")
	if err != nil {
		return newFailedNode(err), nil
	}
	if !present || len(columns) == 0 {
		return sortNode{configured: false}, nil
	}

	ascending, err := parseAscending(config["ascending"], len(columns))
	if err != nil {
		return newFailedNode(err), nil
	}
	return sortNode{columns: columns, ascending: ascending, configured: true}, nil
}

// parseAscending accepts a plain bool (applied to every column), a JSON
// array of bools whose length must equal n, or nil (defaults to all
// ascending).
func parseAscending(raw interface{}, n int) ([]bool, error) {
	if raw == nil {
		out := make([]bool, n)
		for i := range out {
			out[i] = true
		}
		return out, nil
	}
	if b, ok := raw.(bool); ok {
		out := make([]bool, n)
		for i := range out {
			out[i] = b
		}
		return out, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: ascending must be a bool or a list of bools", ErrInvalidConfigField)
	}
	if len(list) != n {
		return nil, fmt.Errorf("%w: ascending list length must equal len(columns)", ErrInvalidConfigField)
	}
	out := make([]bool, n)
	for i, v := range list {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: ascending[%d] is not a bool", ErrInvalidConfigField, i)
		}
		out[i] = b
	}
	return out, nil
}

func (n sortNode) Execute(inputs []*table.Table) workflow.NodeResult {
	if len(inputs) != 1 || inputs[0] == nil {
		return workflow.NodeResult{Success: false, Error: ErrWrongInputCount.Error()}
	}
	in := inputs[0]
	if !n.configured {
		return workflow.NodeResult{Success: true, Data: in}
	}

	keyCols := make([]*table.Column, len(n.columns))
	var missing []string
	for i, name := range n.columns {
		c, ok := in.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		keyCols[i] = c
	}
	if len(missing) > 0 {
		return workflow.NodeResult{Success: false, Error: fmt.Sprintf("Columns not found: %s", missingList(missing))}
	}

	order := make([]int, in.NumRows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := order[a], order[b]
		for i, c := range keyCols {
			cmp := compareCell(c, ra, rb)
			if cmp == 0 {
				continue
			}
			if n.ascending[i] {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})

	out, err := reorderRows(in, order)
	if err != nil {
		return workflow.NodeResult{Success: false, Error: err.Error()}
	}
	return workflow.NodeResult{Success: true, Data: out}
}

// compareCell orders two cells of the same column by kind: NULLs sort
// last (stable, deterministic placement regardless of ascending/descending
// direction of the surrounding key, matching common SQL NULLS LAST
// convention since the spec does not otherwise specify NULL ordering).
func compareCell(c *table.Column, i, j int) int {
	ni, nj := c.IsNull(i), c.IsNull(j)
	if ni && nj {
		return 0
	}
	if ni {
		return 1
	}
	if nj {
		return -1
	}
	switch c.Kind {
	case table.KindInt64:
		return compareInt64(c.Ints[i], c.Ints[j])
	case table.KindFloat64:
		return compareFloat64(c.Floats[i], c.Floats[j])
	case table.KindBool:
		return compareBool(c.Bools[i], c.Bools[j])
	default:
		return compareString(c.Strings[i], c.Strings[j])
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// reorderRows builds a fresh table with rows taken in the given order;
// no residual original row positions survive into the output.
func reorderRows(in *table.Table, order []int) (*table.Table, error) {
	cols := make([]table.Column, in.NumCols())
	for ci, name := range in.ColumnNames() {
		src, _ := in.Column(name)
		cols[ci] = emptyLikeColumn(src, len(order))
		for ri, srcRow := range order {
			copyCell(&cols[ci], src, ri, srcRow)
		}
	}
	return table.New(cols)
}

func emptyLikeColumn(src *table.Column, n int) table.Column {
	c := table.Column{Name: src.Name, Kind: src.Kind, Nulls: make([]bool, n)}
	switch src.Kind {
	case table.KindInt64:
		c.Ints = make([]int64, n)
	case table.KindFloat64:
		c.Floats = make([]float64, n)
	case table.KindBool:
		c.Bools = make([]bool, n)
	case table.KindString:
		c.Strings = make([]string, n)
	}
	return c
}

func copyCell(dst *table.Column, src *table.Column, dstRow, srcRow int) {
	dst.Nulls[dstRow] = src.Nulls[srcRow]
	switch src.Kind {
	case table.KindInt64:
		dst.Ints[dstRow] = src.Ints[srcRow]
	case table.KindFloat64:
		dst.Floats[dstRow] = src.Floats[srcRow]
	case table.KindBool:
		dst.Bools[dstRow] = src.Bools[srcRow]
	case table.KindString:
		dst.Strings[dstRow] = src.Strings[srcRow]
	}
}

func missingList(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
