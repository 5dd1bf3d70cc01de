package expression

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dataflow-studio/engine/pkg/table"
)

// vector is the evaluator's internal columnar intermediate value: every
// sub-expression — whether a literal, a column reference, or a computed
// result — is materialized as a full-length vector so that operators can be
// implemented uniformly, element by element, with NULL propagation.
type vector struct {
	kind    table.Kind
	n       int
	nulls   []bool
	ints    []int64
	floats  []float64
	bools   []bool
	strings []string
}

func newVector(kind table.Kind, n int) *vector {
	v := &vector{kind: kind, n: n, nulls: make([]bool, n)}
	switch kind {
	case table.KindInt64:
		v.ints = make([]int64, n)
	case table.KindFloat64:
		v.floats = make([]float64, n)
	case table.KindBool:
		v.bools = make([]bool, n)
	case table.KindString:
		v.strings = make([]string, n)
	}
	return v
}

func (v *vector) setNull(i int) {
	v.nulls[i] = true
}

func (v *vector) any(i int) interface{} {
	if v.nulls[i] {
		return nil
	}
	switch v.kind {
	case table.KindInt64:
		return v.ints[i]
	case table.KindFloat64:
		return v.floats[i]
	case table.KindBool:
		return v.bools[i]
	case table.KindString:
		return v.strings[i]
	default:
		return nil
	}
}

func (v *vector) asFloat(i int) float64 {
	switch v.kind {
	case table.KindInt64:
		return float64(v.ints[i])
	case table.KindFloat64:
		return v.floats[i]
	default:
		return 0
	}
}

func columnToVector(c *table.Column) *vector {
	v := &vector{kind: c.Kind, n: c.Len(), nulls: c.Nulls}
	v.ints = c.Ints
	v.floats = c.Floats
	v.bools = c.Bools
	v.strings = c.Strings
	return v
}

func broadcastInt(i int64, n int) *vector {
	v := newVector(table.KindInt64, n)
	for r := 0; r < n; r++ {
		v.ints[r] = i
	}
	return v
}

func broadcastFloat(f float64, n int) *vector {
	v := newVector(table.KindFloat64, n)
	for r := 0; r < n; r++ {
		v.floats[r] = f
	}
	return v
}

func broadcastBool(b bool, n int) *vector {
	v := newVector(table.KindBool, n)
	for r := 0; r < n; r++ {
		v.bools[r] = b
	}
	return v
}

func broadcastString(s string, n int) *vector {
	v := newVector(table.KindString, n)
	for r := 0; r < n; r++ {
		v.strings[r] = s
	}
	return v
}

func broadcastNull(n int) *vector {
	v := newVector(table.KindNull, n)
	for r := 0; r < n; r++ {
		v.nulls[r] = true
	}
	return v
}

// evalContext carries the input table and expression text (for error
// messages) through one evaluation.
type evalContext struct {
	tbl  *table.Table
	expr string
}

func (c *evalContext) eval(n Node) (*vector, error) {
	switch t := n.(type) {
	case *NumberLit:
		if t.IsFloat {
			return broadcastFloat(t.Float, c.tbl.NumRows()), nil
		}
		return broadcastInt(t.Int, c.tbl.NumRows()), nil
	case *StringLit:
		return broadcastString(t.Value, c.tbl.NumRows()), nil
	case *BoolLit:
		return broadcastBool(t.Value, c.tbl.NumRows()), nil
	case *NoneLit:
		return broadcastNull(c.tbl.NumRows()), nil
	case *Ident:
		return c.evalIdent(t)
	case *Call:
		return c.evalCall(t)
	case *Unary:
		return c.evalUnary(t)
	case *Binary:
		return c.evalBinary(t)
	case *ListLit:
		return nil, newError(c.expr, ErrEvaluationFailed, "list literal is only valid as the right-hand side of in/not in")
	default:
		return nil, newError(c.expr, ErrEvaluationFailed, "unsupported expression node %T", n)
	}
}

// evalIdent resolves an identifier in priority order: reserved literal,
// built-in function name (bare, without a call — an error), then column.
func (c *evalContext) evalIdent(id *Ident) (*vector, error) {
	if IsBuiltin(id.Name) {
		return nil, newError(c.expr, ErrUnknownIdent, "%q is a function and must be called, e.g. %s(...)", id.Name, id.Name)
	}
	col, ok := c.tbl.Column(id.Name)
	if !ok {
		return nil, newError(c.expr, ErrUnknownIdent, "unknown identifier %q", id.Name)
	}
	return columnToVector(col), nil
}

func (c *evalContext) evalUnary(u *Unary) (*vector, error) {
	operand, err := c.eval(u.Operand)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case TokenNot:
		return c.applyBool1(operand, func(b bool) bool { return !b })
	case TokenMinus:
		return c.applyNumeric1(operand, func(f float64) float64 { return -f }, func(i int64) int64 { return -i })
	case TokenPlus:
		return operand, nil
	default:
		return nil, newError(c.expr, ErrSyntaxError, "invalid unary operator")
	}
}

func (c *evalContext) applyBool1(v *vector, fn func(bool) bool) (*vector, error) {
	if v.kind != table.KindBool && v.kind != table.KindNull {
		return nil, newError(c.expr, ErrTypeMismatch, "not/and/or require boolean operands, got %s", v.kind)
	}
	out := newVector(table.KindBool, v.n)
	for i := 0; i < v.n; i++ {
		if v.nulls[i] {
			out.setNull(i)
			continue
		}
		out.bools[i] = fn(v.bools[i])
	}
	return out, nil
}

func (c *evalContext) applyNumeric1(v *vector, ffn func(float64) float64, ifn func(int64) int64) (*vector, error) {
	if v.kind != table.KindInt64 && v.kind != table.KindFloat64 {
		return nil, newError(c.expr, ErrTypeMismatch, "expected a numeric operand, got %s", v.kind)
	}
	out := newVector(v.kind, v.n)
	for i := 0; i < v.n; i++ {
		if v.nulls[i] {
			out.setNull(i)
			continue
		}
		if v.kind == table.KindInt64 {
			out.ints[i] = ifn(v.ints[i])
		} else {
			out.floats[i] = ffn(v.floats[i])
		}
	}
	return out, nil
}

func (c *evalContext) evalBinary(b *Binary) (*vector, error) {
	switch b.Op {
	case TokenAnd:
		return c.evalLogical(b, true)
	case TokenOr:
		return c.evalLogical(b, false)
	case TokenIn:
		return c.evalIn(b)
	}
	left, err := c.eval(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.eval(b.Right)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenDoubleSlash, TokenPercent, TokenPow:
		return c.evalArith(b.Op, left, right)
	case TokenEq, TokenNeq, TokenLt, TokenLte, TokenGt, TokenGte:
		return c.evalCompare(b.Op, left, right)
	default:
		return nil, newError(c.expr, ErrSyntaxError, "unsupported operator")
	}
}

// evalLogical implements and/or with three-valued logic: False and NULL is
// False, True or NULL is True, every other NULL combination is NULL.
func (c *evalContext) evalLogical(b *Binary, isAnd bool) (*vector, error) {
	left, err := c.eval(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.eval(b.Right)
	if err != nil {
		return nil, err
	}
	if (left.kind != table.KindBool && left.kind != table.KindNull) || (right.kind != table.KindBool && right.kind != table.KindNull) {
		return nil, newError(c.expr, ErrTypeMismatch, "and/or require boolean operands")
	}
	out := newVector(table.KindBool, left.n)
	for i := 0; i < left.n; i++ {
		lNull, rNull := left.nulls[i], right.nulls[i]
		var lv, rv bool
		if !lNull {
			lv = left.bools[i]
		}
		if !rNull {
			rv = right.bools[i]
		}
		switch {
		case isAnd && !lNull && !lv:
			out.bools[i] = false
		case !isAnd && !lNull && lv:
			out.bools[i] = true
		case isAnd && !rNull && !rv:
			out.bools[i] = false
		case !isAnd && !rNull && rv:
			out.bools[i] = true
		case lNull || rNull:
			out.setNull(i)
		default:
			if isAnd {
				out.bools[i] = lv && rv
			} else {
				out.bools[i] = lv || rv
			}
		}
	}
	return out, nil
}

func (c *evalContext) evalIn(b *Binary) (*vector, error) {
	left, err := c.eval(b.Left)
	if err != nil {
		return nil, err
	}
	members, err := c.collectSet(b.Right)
	if err != nil {
		return nil, err
	}
	out := newVector(table.KindBool, left.n)
	for i := 0; i < left.n; i++ {
		if left.nulls[i] {
			out.setNull(i)
			continue
		}
		found := false
		lv := left.any(i)
		for _, m := range members {
			if valuesEqual(lv, m) {
				found = true
				break
			}
		}
		if b.NotIn {
			out.bools[i] = !found
		} else {
			out.bools[i] = found
		}
	}
	return out, nil
}

// collectSet evaluates the right-hand operand of in/not in into a flat set
// of candidate scalar values: each element of a literal list, or every
// distinct value of a column.
func (c *evalContext) collectSet(n Node) ([]interface{}, error) {
	if list, ok := n.(*ListLit); ok {
		out := make([]interface{}, 0, len(list.Elems))
		for _, elem := range list.Elems {
			v, err := c.eval(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, v.any(0))
		}
		return out, nil
	}
	v, err := c.eval(n)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, 0, v.n)
	for i := 0; i < v.n; i++ {
		out = append(out, v.any(i))
	}
	return out, nil
}

func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func (c *evalContext) evalArith(op TokenType, left, right *vector) (*vector, error) {
	if !isNumericKind(left.kind) || !isNumericKind(right.kind) {
		return nil, newError(c.expr, ErrTypeMismatch, "arithmetic operators require numeric operands, got %s and %s", left.kind, right.kind)
	}
	n := left.n
	resultFloat := op == TokenSlash || left.kind == table.KindFloat64 || right.kind == table.KindFloat64
	if op == TokenPow {
		resultFloat = true
	}
	kind := table.KindInt64
	if resultFloat {
		kind = table.KindFloat64
	}
	out := newVector(kind, n)
	for i := 0; i < n; i++ {
		if left.nulls[i] || right.nulls[i] {
			out.setNull(i)
			continue
		}
		lf, rf := left.asFloat(i), right.asFloat(i)
		if resultFloat {
			f, err := arithFloat(op, lf, rf, c.expr)
			if err != nil {
				return nil, err
			}
			out.floats[i] = f
		} else {
			li, ri := left.ints[i], right.ints[i]
			iv, err := arithInt(op, li, ri, c.expr)
			if err != nil {
				return nil, err
			}
			out.ints[i] = iv
		}
	}
	return out, nil
}

func arithFloat(op TokenType, l, r float64, expr string) (float64, error) {
	switch op {
	case TokenPlus:
		return l + r, nil
	case TokenMinus:
		return l - r, nil
	case TokenStar:
		return l * r, nil
	case TokenSlash:
		if r == 0 {
			return 0, newError(expr, ErrEvaluationFailed, "division by zero")
		}
		return l / r, nil
	case TokenDoubleSlash:
		if r == 0 {
			return 0, newError(expr, ErrEvaluationFailed, "division by zero")
		}
		return math.Floor(l / r), nil
	case TokenPercent:
		if r == 0 {
			return 0, newError(expr, ErrEvaluationFailed, "modulo by zero")
		}
		m := math.Mod(l, r)
		if m != 0 && (m < 0) != (r < 0) {
			m += r
		}
		return m, nil
	case TokenPow:
		return math.Pow(l, r), nil
	default:
		return 0, newError(expr, ErrSyntaxError, "invalid arithmetic operator")
	}
}

func arithInt(op TokenType, l, r int64, expr string) (int64, error) {
	switch op {
	case TokenPlus:
		return l + r, nil
	case TokenMinus:
		return l - r, nil
	case TokenStar:
		return l * r, nil
	case TokenDoubleSlash:
		if r == 0 {
			return 0, newError(expr, ErrEvaluationFailed, "division by zero")
		}
		q := l / r
		if (l%r != 0) && ((l < 0) != (r < 0)) {
			q--
		}
		return q, nil
	case TokenPercent:
		if r == 0 {
			return 0, newError(expr, ErrEvaluationFailed, "modulo by zero")
		}
		m := l % r
		if m != 0 && (m < 0) != (r < 0) {
			m += r
		}
		return m, nil
	default:
		return 0, newError(expr, ErrSyntaxError, "invalid integer arithmetic operator")
	}
}

func (c *evalContext) evalCompare(op TokenType, left, right *vector) (*vector, error) {
	n := left.n
	out := newVector(table.KindBool, n)
	for i := 0; i < n; i++ {
		if left.nulls[i] || right.nulls[i] {
			out.setNull(i)
			continue
		}
		cmp, ok := compareVal(left.any(i), right.any(i))
		if !ok {
			if op == TokenEq {
				out.bools[i] = false
				continue
			}
			if op == TokenNeq {
				out.bools[i] = true
				continue
			}
			return nil, newError(c.expr, ErrTypeMismatch, "cannot compare %T with %T", left.any(i), right.any(i))
		}
		switch op {
		case TokenEq:
			out.bools[i] = cmp == 0
		case TokenNeq:
			out.bools[i] = cmp != 0
		case TokenLt:
			out.bools[i] = cmp < 0
		case TokenLte:
			out.bools[i] = cmp <= 0
		case TokenGt:
			out.bools[i] = cmp > 0
		case TokenGte:
			out.bools[i] = cmp >= 0
		}
	}
	return out, nil
}

// compareVal returns -1/0/1 if a and b are order-comparable, or ok=false if
// their kinds cannot be compared at all (==/!= then fall back to "not
// equal"; ordering operators raise a type error).
func compareVal(a, b interface{}) (int, bool) {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs), true
		}
		return 0, false
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			if ab == bb {
				return 0, true
			}
			if !ab && bb {
				return -1, true
			}
			return 1, true
		}
		return 0, false
	}
	return 0, false
}

func isNumericKind(k table.Kind) bool {
	return k == table.KindInt64 || k == table.KindFloat64
}

func (c *evalContext) evalCall(call *Call) (*vector, error) {
	args := make([]*vector, len(call.Args))
	for i, a := range call.Args {
		v, err := c.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	switch call.Func {
	case "abs":
		return c.applyNumeric1(args[0], math.Abs, func(i int64) int64 {
			if i < 0 {
				return -i
			}
			return i
		})
	case "round":
		return c.mathFn(args[0], math.Round)
	case "floor":
		return c.mathFn(args[0], math.Floor)
	case "ceil":
		return c.mathFn(args[0], math.Ceil)
	case "sqrt":
		return c.mathFn(args[0], math.Sqrt)
	case "log":
		return c.mathFn(args[0], math.Log)
	case "log10":
		return c.mathFn(args[0], math.Log10)
	case "exp":
		return c.mathFn(args[0], math.Exp)
	case "sin":
		return c.mathFn(args[0], math.Sin)
	case "cos":
		return c.mathFn(args[0], math.Cos)
	case "tan":
		return c.mathFn(args[0], math.Tan)
	case "min":
		return c.pairwise(args[0], args[1], math.Min)
	case "max":
		return c.pairwise(args[0], args[1], math.Max)
	case "lower":
		return c.stringFn(args[0], func(s string) string { return caseFold(s, false) })
	case "upper":
		return c.stringFn(args[0], func(s string) string { return caseFold(s, true) })
	case "strip":
		return c.stringFn(args[0], strings.TrimSpace)
	case "len":
		return c.lenFn(args[0])
	case "contains":
		return c.containsFn(args[0], args[1])
	default:
		return nil, newError(c.expr, ErrUndefinedFunction, "unknown function %q", call.Func)
	}
}

// caseFold uses golang.org/x/text/cases for locale-independent, Unicode
// correct case mapping rather than strings.ToLower/ToUpper.
func caseFold(s string, upper bool) string {
	if upper {
		return cases.Upper(language.Und).String(s)
	}
	return cases.Lower(language.Und).String(s)
}

func (c *evalContext) mathFn(v *vector, fn func(float64) float64) (*vector, error) {
	if !isNumericKind(v.kind) {
		return nil, newError(c.expr, ErrTypeMismatch, "expected a numeric argument, got %s", v.kind)
	}
	out := newVector(table.KindFloat64, v.n)
	for i := 0; i < v.n; i++ {
		if v.nulls[i] {
			out.setNull(i)
			continue
		}
		out.floats[i] = fn(v.asFloat(i))
	}
	return out, nil
}

func (c *evalContext) pairwise(a, b *vector, fn func(float64, float64) float64) (*vector, error) {
	if !isNumericKind(a.kind) || !isNumericKind(b.kind) {
		return nil, newError(c.expr, ErrTypeMismatch, "min/max require numeric arguments")
	}
	out := newVector(table.KindFloat64, a.n)
	for i := 0; i < a.n; i++ {
		if a.nulls[i] || b.nulls[i] {
			out.setNull(i)
			continue
		}
		out.floats[i] = fn(a.asFloat(i), b.asFloat(i))
	}
	return out, nil
}

func (c *evalContext) stringFn(v *vector, fn func(string) string) (*vector, error) {
	if v.kind != table.KindString {
		return nil, newError(c.expr, ErrTypeMismatch, "expected a string argument, got %s", v.kind)
	}
	out := newVector(table.KindString, v.n)
	for i := 0; i < v.n; i++ {
		if v.nulls[i] {
			out.setNull(i)
			continue
		}
		out.strings[i] = fn(v.strings[i])
	}
	return out, nil
}

func (c *evalContext) lenFn(v *vector) (*vector, error) {
	if v.kind != table.KindString {
		return nil, newError(c.expr, ErrTypeMismatch, "len() expects a string argument, got %s", v.kind)
	}
	out := newVector(table.KindInt64, v.n)
	for i := 0; i < v.n; i++ {
		if v.nulls[i] {
			out.setNull(i)
			continue
		}
		out.ints[i] = int64(len([]rune(v.strings[i])))
	}
	return out, nil
}

func (c *evalContext) containsFn(s, pat *vector) (*vector, error) {
	if s.kind != table.KindString || pat.kind != table.KindString {
		return nil, newError(c.expr, ErrTypeMismatch, "contains() expects string arguments")
	}
	out := newVector(table.KindBool, s.n)
	for i := 0; i < s.n; i++ {
		if s.nulls[i] || pat.nulls[i] {
			out.bools[i] = false
			continue
		}
		out.bools[i] = strings.Contains(s.strings[i], pat.strings[i])
	}
	return out, nil
}

// EvaluateFilter parses and evaluates expr against tbl, returning a table
// containing exactly the rows for which expr evaluates to true.
func EvaluateFilter(tbl *table.Table, expr string) (*table.Table, error) {
	ast, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	ctx := &evalContext{tbl: tbl, expr: expr}
	result, err := ctx.eval(ast)
	if err != nil {
		return nil, err
	}
	if result.kind != table.KindBool {
		return nil, newError(expr, ErrNotBoolean, "filter expression must evaluate to a boolean column, got %s", result.kind)
	}
	keep := make([]int, 0, result.n)
	for i := 0; i < result.n; i++ {
		if !result.nulls[i] && result.bools[i] {
			keep = append(keep, i)
		}
	}
	return selectRows(tbl, keep), nil
}

// EvaluateFormula parses and evaluates expr against tbl, appending (or
// replacing) newCol with the result.
func EvaluateFormula(tbl *table.Table, expr string, newCol string) (*table.Table, error) {
	ast, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	ctx := &evalContext{tbl: tbl, expr: expr}
	result, err := ctx.eval(ast)
	if err != nil {
		return nil, err
	}
	resultCol := table.Column{
		Name:    newCol,
		Kind:    result.kind,
		Nulls:   result.nulls,
		Ints:    result.ints,
		Floats:  result.floats,
		Bools:   result.bools,
		Strings: result.strings,
	}
	columns := tbl.Columns()
	out := make([]table.Column, 0, len(columns)+1)
	replaced := false
	for _, col := range columns {
		if col.Name == newCol {
			out = append(out, resultCol)
			replaced = true
			continue
		}
		out = append(out, col)
	}
	if !replaced {
		out = append(out, resultCol)
	}
	t, err := table.New(out)
	if err != nil {
		return nil, newError(expr, ErrEvaluationFailed, "%v", err)
	}
	return t, nil
}

// selectRows builds a fresh table containing only the given row indices, in
// order, across every column.
func selectRows(tbl *table.Table, rows []int) *table.Table {
	columns := tbl.Columns()
	out := make([]table.Column, len(columns))
	for c := range columns {
		src := &columns[c]
		dst := table.Column{Name: src.Name, Kind: src.Kind, Nulls: make([]bool, len(rows))}
		switch src.Kind {
		case table.KindInt64:
			dst.Ints = make([]int64, len(rows))
		case table.KindFloat64:
			dst.Floats = make([]float64, len(rows))
		case table.KindBool:
			dst.Bools = make([]bool, len(rows))
		case table.KindString:
			dst.Strings = make([]string, len(rows))
		}
		for i, r := range rows {
			dst.Nulls[i] = src.Nulls[r]
			if src.Nulls[r] {
				continue
			}
			switch src.Kind {
			case table.KindInt64:
				dst.Ints[i] = src.Ints[r]
			case table.KindFloat64:
				dst.Floats[i] = src.Floats[r]
			case table.KindBool:
				dst.Bools[i] = src.Bools[r]
			case table.KindString:
				dst.Strings[i] = src.Strings[r]
			}
		}
		out[c] = dst
	}
	t, _ := table.New(out)
	return t
}
