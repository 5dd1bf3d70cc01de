// Package table provides the columnar, immutable in-memory tabular value
// that every workflow operator consumes and produces.
package table

import "fmt"

// Kind is the scalar element kind of a column.
type Kind int

const (
	// KindInt64 marks a column of 64-bit integers.
	KindInt64 Kind = iota
	// KindFloat64 marks a column of 64-bit floats.
	KindFloat64
	// KindBool marks a column of booleans.
	KindBool
	// KindString marks a column of strings.
	KindString
	// KindNull marks a column whose every value is NULL (type undetermined).
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is a named, typed, fixed-length sequence of cells. A cell may be
// NULL regardless of kind; Nulls[i] true means the underlying slot at i is
// not meaningful.
type Column struct {
	Name    string
	Kind    Kind
	Nulls   []bool
	Ints    []int64
	Floats  []float64
	Bools   []bool
	Strings []string
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	return len(c.Nulls)
}

// IsNull reports whether the cell at row i is NULL.
func (c *Column) IsNull(i int) bool {
	return c.Nulls[i]
}

// Any returns the cell at row i as a generic Go value, or nil if NULL.
func (c *Column) Any(i int) interface{} {
	if c.Nulls[i] {
		return nil
	}
	switch c.Kind {
	case KindInt64:
		return c.Ints[i]
	case KindFloat64:
		return c.Floats[i]
	case KindBool:
		return c.Bools[i]
	case KindString:
		return c.Strings[i]
	default:
		return nil
	}
}

// clone returns a deep copy of the column.
func (c Column) clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Nulls != nil {
		out.Nulls = append([]bool(nil), c.Nulls...)
	}
	if c.Ints != nil {
		out.Ints = append([]int64(nil), c.Ints...)
	}
	if c.Floats != nil {
		out.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Bools != nil {
		out.Bools = append([]bool(nil), c.Bools...)
	}
	if c.Strings != nil {
		out.Strings = append([]string(nil), c.Strings...)
	}
	return out
}

// Table is an ordered sequence of equal-length named columns. Table values
// are logically immutable: every operator must produce a fresh Table rather
// than mutate an existing one, even when the new Table shares column
// storage with an input (copy-on-write is an implementation detail, not an
// externally observable one).
type Table struct {
	columns []Column
	numRows int
}

// New builds a Table from columns, validating the shared-length and
// unique-non-empty-name invariants from the data model.
func New(columns []Column) (*Table, error) {
	t := &Table{columns: columns}
	if len(columns) > 0 {
		t.numRows = columns[0].Len()
	}
	seen := make(map[string]struct{}, len(columns))
	for i := range columns {
		if columns[i].Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := seen[columns[i].Name]; dup {
			return nil, fmt.Errorf("duplicate column name: %s", columns[i].Name)
		}
		seen[columns[i].Name] = struct{}{}
		if columns[i].Len() != t.numRows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", columns[i].Name, columns[i].Len(), t.numRows)
		}
	}
	return t, nil
}

// NumRows returns the row count shared by every column.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return t.numRows
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i := range t.columns {
		names[i] = t.columns[i].Name
	}
	return names
}

// Columns returns the underlying column slice. Callers must treat it as
// read-only; mutating a returned Column's slices violates Table's
// immutability contract.
func (t *Table) Columns() []Column {
	return t.columns
}

// Column returns the column with the given name, or false if absent.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.columns {
		if t.columns[i].Name == name {
			return &t.columns[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Clone returns a deep copy of the table. Operators never need to call this
// to satisfy the immutability contract (they build fresh columns instead);
// it exists for callers that must guarantee isolation across a boundary
// they do not control, e.g. tests asserting the pre/post-execution
// byte-equality invariant.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	columns := make([]Column, len(t.columns))
	for i := range t.columns {
		columns[i] = t.columns[i].clone()
	}
	return &Table{columns: columns, numRows: t.numRows}
}

// Equal reports whether two tables have identical column order, names,
// kinds, and cell values.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.numRows != o.numRows || len(t.columns) != len(o.columns) {
		return false
	}
	for i := range t.columns {
		a, b := &t.columns[i], &o.columns[i]
		if a.Name != b.Name || a.Kind != b.Kind {
			return false
		}
		for r := 0; r < t.numRows; r++ {
			if a.Nulls[r] != b.Nulls[r] {
				return false
			}
			if a.Nulls[r] {
				continue
			}
			switch a.Kind {
			case KindInt64:
				if a.Ints[r] != b.Ints[r] {
					return false
				}
			case KindFloat64:
				if a.Floats[r] != b.Floats[r] {
					return false
				}
			case KindBool:
				if a.Bools[r] != b.Bools[r] {
					return false
				}
			case KindString:
				if a.Strings[r] != b.Strings[r] {
					return false
				}
			}
		}
	}
	return true
}
