package node

import (
	"fmt"

	"github.com/dataflow-studio/engine/pkg/table"
	"github.com/dataflow-studio/engine/pkg/workflow"
)

type joinNode struct {
	leftKey  string
	rightKey string
	how      string
}

var joinHows = map[string]bool{"inner": true, "left": true, "right": true, "outer": true}

func newJoinFactory(config map[string]interface{}, _ TableStore) (Node, error) {
	leftKey, err := requireString(config, "leftKey")
	if err != nil {
		return newFailedNode(err), nil
	}
	rightKey, err := requireString(config, "rightKey")
	if err != nil {
		return newFailedNode(err), nil
	}
	how := optionalString(config, "how", "inner")
	if !joinHows[how] {
		return newFailedNode(fmt.Errorf("%w: how must be one of inner, left, right, outer", ErrInvalidConfigField)), nil
	}
	return joinNode{leftKey: leftKey, rightKey: rightKey, how: how}, nil
}

// joinPair is one output row's source row indices; -1 means "no row on
// this side, fill with NULL".
type joinPair struct {
	left, right int
}

func (n joinNode) Execute(inputs []*table.Table) workflow.NodeResult {
	if len(inputs) != 2 || inputs[0] == nil || inputs[1] == nil {
		return workflow.NodeResult{Success: false, Error: ErrWrongInputCount.Error()}
	}
	left, right := inputs[0], inputs[1]

	leftKeyCol, ok := left.Column(n.leftKey)
	if !ok {
		return workflow.NodeResult{Success: false, Error: fmt.Sprintf("Columns not found: %s", n.leftKey)}
	}
	rightKeyCol, ok := right.Column(n.rightKey)
	if !ok {
		return workflow.NodeResult{Success: false, Error: fmt.Sprintf("Columns not found: %s", n.rightKey)}
	}

	var pairs []joinPair
	switch n.how {
	case "inner":
		pairs, _ = matchRows(leftKeyCol, rightKeyCol, false)
	case "left":
		pairs, _ = matchRows(leftKeyCol, rightKeyCol, true)
	case "right":
		raw, _ := matchRows(rightKeyCol, leftKeyCol, true)
		pairs = make([]joinPair, len(raw))
		for i, p := range raw {
			pairs[i] = joinPair{left: p.right, right: p.left}
		}
	case "outer":
		leftPairs, rightMatched := matchRows(leftKeyCol, rightKeyCol, true)
		pairs = leftPairs
		for ri := 0; ri < right.NumRows(); ri++ {
			if !rightMatched[ri] {
				pairs = append(pairs, joinPair{left: -1, right: ri})
			}
		}
	}

	out, err := buildJoinTable(left, right, n.leftKey, n.rightKey, pairs)
	if err != nil {
		return workflow.NodeResult{Success: false, Error: err.Error()}
	}
	return workflow.NodeResult{Success: true, Data: out}
}

// matchRows matches every row of primaryKey against secondaryKey's index,
// returning (pairs, secondaryMatched). A NULL key never matches. When
// includeUnmatchedPrimary is true, a primary row with no match still
// produces one pair with secondary = -1.
func matchRows(primaryKey, secondaryKey *table.Column, includeUnmatchedPrimary bool) ([]joinPair, []bool) {
	index := make(map[interface{}][]int)
	for i := 0; i < secondaryKey.Len(); i++ {
		if secondaryKey.IsNull(i) {
			continue
		}
		k := cellKey(secondaryKey, i)
		index[k] = append(index[k], i)
	}

	secondaryMatched := make([]bool, secondaryKey.Len())
	var pairs []joinPair
	for i := 0; i < primaryKey.Len(); i++ {
		if primaryKey.IsNull(i) {
			if includeUnmatchedPrimary {
				pairs = append(pairs, joinPair{left: i, right: -1})
			}
			continue
		}
		matches := index[cellKey(primaryKey, i)]
		if len(matches) == 0 {
			if includeUnmatchedPrimary {
				pairs = append(pairs, joinPair{left: i, right: -1})
			}
			continue
		}
		for _, m := range matches {
			secondaryMatched[m] = true
			pairs = append(pairs, joinPair{left: i, right: m})
		}
	}
	return pairs, secondaryMatched
}

// cellKey returns a comparable, cross-kind-numeric-normalized key for a
// non-NULL cell: int64 and float64 both normalize to float64 so join keys
// of differing numeric column kinds can still match.
func cellKey(c *table.Column, i int) interface{} {
	switch c.Kind {
	case table.KindInt64:
		return float64(c.Ints[i])
	case table.KindFloat64:
		return c.Floats[i]
	case table.KindBool:
		return c.Bools[i]
	default:
		return c.Strings[i]
	}
}

// buildJoinTable assembles the joined output: all left columns followed
// by all right columns, with a right-gets-_right/left-gets-_left suffix
// on any name collision — except when leftKey and rightKey share the same
// name, in which case the key is merged into a single unsuffixed column
// (the right side's copy of that column is dropped from the output, and
// its value is sourced from whichever side has a row).
func buildJoinTable(left, right *table.Table, leftKey, rightKey string, pairs []joinPair) (*table.Table, error) {
	mergeKey := leftKey == rightKey
	leftNames := left.ColumnNames()
	leftSet := make(map[string]bool, len(leftNames))
	for _, n := range leftNames {
		leftSet[n] = true
	}

	var rightNames []string
	for _, n := range right.ColumnNames() {
		if mergeKey && n == rightKey {
			continue
		}
		rightNames = append(rightNames, n)
	}

	n := len(pairs)
	cols := make([]table.Column, 0, len(leftNames)+len(rightNames))

	for _, name := range leftNames {
		src, _ := left.Column(name)
		outName := name
		if leftSet[name] && nameCollides(name, rightNames, leftSet, mergeKey, leftKey) {
			outName = name + "_left"
		}
		col := emptyLikeColumn(src, n)
		col.Name = outName
		for ri, p := range pairs {
			if p.left == -1 {
				col.Nulls[ri] = true
				continue
			}
			copyCell(&col, src, ri, p.left)
		}
		if mergeKey && name == leftKey {
			rightKeyCol, _ := right.Column(rightKey)
			fillMergedKey(&col, rightKeyCol, pairs)
		}
		cols = append(cols, col)
	}

	for _, name := range rightNames {
		src, _ := right.Column(name)
		outName := name
		if nameCollides(name, rightNames, leftSet, mergeKey, leftKey) {
			outName = name + "_right"
		}
		col := emptyLikeColumn(src, n)
		col.Name = outName
		for ri, p := range pairs {
			if p.right == -1 {
				col.Nulls[ri] = true
				continue
			}
			copyCell(&col, src, ri, p.right)
		}
		cols = append(cols, col)
	}

	return table.New(cols)
}

func nameCollides(name string, rightNames []string, leftSet map[string]bool, mergeKey bool, leftKey string) bool {
	if mergeKey && name == leftKey {
		return false
	}
	if !leftSet[name] {
		return false
	}
	for _, rn := range rightNames {
		if rn == name {
			return true
		}
	}
	return false
}

// fillMergedKey backfills the merged key column's right-only rows (left
// row absent) from the right key column, coercing int64/float64 as
// needed to match the merged column's own kind.
func fillMergedKey(col *table.Column, rightKeyCol *table.Column, pairs []joinPair) {
	for ri, p := range pairs {
		if p.left != -1 || p.right == -1 {
			continue
		}
		if rightKeyCol.IsNull(p.right) {
			continue
		}
		col.Nulls[ri] = false
		switch col.Kind {
		case table.KindInt64:
			col.Ints[ri] = coerceInt64(rightKeyCol, p.right)
		case table.KindFloat64:
			col.Floats[ri] = coerceFloat64(rightKeyCol, p.right)
		case table.KindBool:
			if rightKeyCol.Kind == table.KindBool {
				col.Bools[ri] = rightKeyCol.Bools[p.right]
			}
		case table.KindString:
			if rightKeyCol.Kind == table.KindString {
				col.Strings[ri] = rightKeyCol.Strings[p.right]
			}
		}
	}
}

func coerceInt64(c *table.Column, i int) int64 {
	switch c.Kind {
	case table.KindInt64:
		return c.Ints[i]
	case table.KindFloat64:
		return int64(c.Floats[i])
	default:
		return 0
	}
}

func coerceFloat64(c *table.Column, i int) float64 {
	switch c.Kind {
	case table.KindInt64:
		return float64(c.Ints[i])
	case table.KindFloat64:
		return c.Floats[i]
	default:
		return 0
	}
}
