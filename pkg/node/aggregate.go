package node

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

type aggregationSpec struct {
	col string
	op  string
	as  string
}

var supportedAggOps = map[string]bool{
	"sum": true, "mean": true, "count": true, "min": true, "max": true,
	"first": true, "last": true, "std": true, "var": true,
}

type aggregateNode struct {
	groupBy []string
	aggs    []aggregationSpec
}

func newAggregateFactory(config map[string]interface{}, _ TableStore) (Node, error) {
	groupBy, err := requireStringSlice(config, "groupBy")
	if err != nil {
		return newFailedNode(err), nil
	}
	rawAggs, err := mapSlice(config, "aggregations")
	if err != nil {
		return newFailedNode(err), nil
	}
	if len(rawAggs) == 0 {
		return newFailedNode(fmt.Errorf("%w: aggregations", ErrMissingConfigField)), nil
	}

	aggs := make([]aggregationSpec, len(rawAggs))
	for i, raw := range rawAggs {
		col, err := requireString(raw, "col")
		if err != nil {
			return newFailedNode(err), nil
		}
		op, err := requireString(raw, "op")
		if err != nil {
			return newFailedNode(err), nil
		}
		as, err := requireString(raw, "as")
		if err != nil {
			return newFailedNode(err), nil
		}
		if !supportedAggOps[op] {
			return newFailedNode(fmt.Errorf("%w: %s", ErrUnsupportedAggregation, op)), nil
		}
		aggs[i] = aggregationSpec{col: col, op: op, as: as}
	}

	return aggregateNode{groupBy: groupBy, aggs: aggs}, nil
}

func (n aggregateNode) Execute(inputs []*table.Table) workflow.NodeResult {
	if len(inputs) != 1 || inputs[0] == nil {
		return workflow.NodeResult{Success: false, Error: ErrWrongInputCount.Error()}
	}
	in := inputs[0]

	groupCols := make([]*table.Column, len(n.groupBy))
	var missing []string
	for i, name := range n.groupBy {
		c, ok := in.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		groupCols[i] = c
	}
	for _, spec := range n.aggs {
		if !in.HasColumn(spec.col) {
			missing = append(missing, spec.col)
		}
	}
	if len(missing) > 0 {
		return workflow.NodeResult{Success: false, Error: fmt.Sprintf("Columns not found: %s", strings.Join(missing, ", "))}
	}

	groups, order := groupRows(groupCols, in.NumRows())

	cols := make([]table.Column, 0, len(n.groupBy)+len(n.aggs))
	for i, name := range n.groupBy {
		cols = append(cols, buildGroupKeyColumn(name, groupCols[i], groups, order))
	}
	for _, spec := range n.aggs {
		srcCol, _ := in.Column(spec.col)
		col, err := computeAggregation(spec, srcCol, groups, order)
		if err != nil {
			return workflow.NodeResult{Success: false, Error: err.Error()}
		}
		cols = append(cols, col)
	}

	out, err := table.New(cols)
	if err != nil {
		return workflow.NodeResult{Success: false, Error: err.Error()}
	}
	return workflow.NodeResult{Success: true, Data: out}
}

// groupRows buckets row indices by their group-key tuple (first-occurrence
// representative row kept for display), then returns the groups keyed by a
// string encoding plus the group keys in ascending lexicographic-tuple
// order.
func groupRows(groupCols []*table.Column, numRows int) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var keys []string
	for row := 0; row < numRows; row++ {
		key := encodeGroupKey(groupCols, row)
		if _, exists := groups[key]; !exists {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], row)
	}

	sort.Slice(keys, func(a, b int) bool {
		ra, rb := groups[keys[a]][0], groups[keys[b]][0]
		for _, c := range groupCols {
			cmp := compareCell(c, ra, rb)
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return groups, keys
}

func encodeGroupKey(cols []*table.Column, row int) string {
	var b strings.Builder
	for _, c := range cols {
		if c.IsNull(row) {
			b.WriteString("\x00N\x1f")
			continue
		}
		fmt.Fprintf(&b, "%v\x1f", c.Any(row))
	}
	return b.String()
}

func buildGroupKeyColumn(name string, srcCol *table.Column, groups map[string][]int, order []string) table.Column {
	col := emptyLikeColumn(srcCol, len(order))
	col.Name = name
	for i, key := range order {
		rep := groups[key][0]
		copyCell(&col, srcCol, i, rep)
	}
	return col
}

func computeAggregation(spec aggregationSpec, srcCol *table.Column, groups map[string][]int, order []string) (table.Column, error) {
	switch spec.op {
	case "count":
		col := table.Column{Name: spec.as, Kind: table.KindInt64, Nulls: make([]bool, len(order)), Ints: make([]int64, len(order))}
		for i, key := range order {
			n := int64(0)
			for _, row := range groups[key] {
				if !srcCol.IsNull(row) {
					n++
				}
			}
			col.Ints[i] = n
		}
		return col, nil
	case "first", "last":
		col := emptyLikeColumn(srcCol, len(order))
		col.Name = spec.as
		for i, key := range order {
			rows := groups[key]
			row := rows[0]
			if spec.op == "last" {
				row = rows[len(rows)-1]
			}
			if srcCol.IsNull(row) {
				col.Nulls[i] = true
				continue
			}
			copyCell(&col, srcCol, i, row)
		}
		return col, nil
	case "min", "max":
		return computeMinMax(spec, srcCol, groups, order)
	case "sum", "mean", "std", "var":
		return computeNumericAgg(spec, srcCol, groups, order)
	}
	return table.Column{}, fmt.Errorf("%w: %s", ErrUnsupportedAggregation, spec.op)
}

func computeMinMax(spec aggregationSpec, srcCol *table.Column, groups map[string][]int, order []string) (table.Column, error) {
	col := emptyLikeColumn(srcCol, len(order))
	col.Name = spec.as
	for i, key := range order {
		best := -1
		for _, row := range groups[key] {
			if srcCol.IsNull(row) {
				continue
			}
			if best == -1 {
				best = row
				continue
			}
			cmp := compareCell(srcCol, row, best)
			if (spec.op == "min" && cmp < 0) || (spec.op == "max" && cmp > 0) {
				best = row
			}
		}
		if best == -1 {
			col.Nulls[i] = true
			continue
		}
		copyCell(&col, srcCol, i, best)
	}
	return col, nil
}

func computeNumericAgg(spec aggregationSpec, srcCol *table.Column, groups map[string][]int, order []string) (table.Column, error) {
	if srcCol.Kind != table.KindInt64 && srcCol.Kind != table.KindFloat64 && srcCol.Kind != table.KindNull {
		return table.Column{}, fmt.Errorf("%w: %s requires a numeric column, got %s", ErrInvalidConfigField, spec.op, srcCol.Kind)
	}
	col := table.Column{Name: spec.as, Kind: table.KindFloat64, Nulls: make([]bool, len(order)), Floats: make([]float64, len(order))}
	for i, key := range order {
		var values []float64
		for _, row := range groups[key] {
			if srcCol.IsNull(row) {
				continue
			}
			values = append(values, cellFloat(srcCol, row))
		}
		switch spec.op {
		case "sum":
			col.Floats[i] = sumFloats(values)
		case "mean":
			if len(values) == 0 {
				col.Nulls[i] = true
				continue
			}
			col.Floats[i] = sumFloats(values) / float64(len(values))
		case "std", "var":
			if len(values) == 0 {
				col.Nulls[i] = true
				continue
			}
			v := varianceFloats(values)
			if spec.op == "std" {
				v = math.Sqrt(v)
			}
			col.Floats[i] = v
		}
	}
	return col, nil
}

func cellFloat(c *table.Column, i int) float64 {
	if c.Kind == table.KindInt64 {
		return float64(c.Ints[i])
	}
	return c.Floats[i]
}

func sumFloats(vs []float64) float64 {
	s := 0.0
	for _, v := range vs {
		s += v
	}
	return s
}

// varianceFloats computes the population variance (denominator n, not
// n-1) since ddof is not configurable.
func varianceFloats(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	mean := sumFloats(vs) / float64(len(vs))
	ss := 0.0
	for _, v := range vs {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(vs))
}
