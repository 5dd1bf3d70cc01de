package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dataflow-studio/engine/pkg/table"
)

// defaultSeparator is used when a ReadCSV request does not specify one.
const defaultSeparator = ','

// DecodeCSV parses raw CSV bytes into a Table using the same type
// inference decodeCSV applies for ReadCSV. Exported for the httpapi
// upload endpoint, which must turn an uploaded file into a Table before
// it has an id to WriteCSV under.
func DecodeCSV(r io.Reader, header bool, sep rune) (*table.Table, error) {
	return decodeCSV(r, header, sep)
}

// EncodeCSV writes tbl as CSV to w. Exported for the httpapi download
// endpoint, which streams a table straight to an http.ResponseWriter
// rather than through a TableStore.
func EncodeCSV(w io.Writer, tbl *table.Table) error {
	return encodeCSV(w, tbl)
}

// decodeCSV parses raw CSV bytes into a Table, inferring each column's
// kind: integer if every non-null cell parses as an integer, else float
// if every non-null cell parses as a number, else boolean if every cell
// is one of true/false/True/False, else string. A cell is NULL when its
// raw text is empty.
func decodeCSV(r io.Reader, header bool, sep rune) (*table.Table, error) {
	if sep == 0 {
		sep = defaultSeparator
	}
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	var names []string
	var rows [][]string
	if header {
		names = records[0]
		rows = records[1:]
	} else {
		rows = records
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	if len(rows) == 0 {
		columns := make([]table.Column, len(names))
		for i, name := range names {
			columns[i] = table.Column{Name: name, Kind: table.KindNull}
		}
		return table.New(columns)
	}

	width := len(names)
	raw := make([][]string, width)
	for c := 0; c < width; c++ {
		raw[c] = make([]string, len(rows))
	}
	for r, row := range rows {
		for c := 0; c < width; c++ {
			if c < len(row) {
				raw[c][r] = row[c]
			}
		}
	}

	columns := make([]table.Column, width)
	for c := 0; c < width; c++ {
		columns[c] = inferColumn(names[c], raw[c])
	}
	return table.New(columns)
}

// inferColumn builds a typed Column from a column's raw text cells,
// classifying the column's kind by trying int, then float, then bool, then
// falling back to string.
func inferColumn(name string, raw []string) table.Column {
	n := len(raw)
	nulls := make([]bool, n)
	allNull := true
	for i, v := range raw {
		if v == "" {
			nulls[i] = true
		} else {
			allNull = false
		}
	}
	if allNull {
		return table.Column{Name: name, Kind: table.KindNull, Nulls: nulls}
	}

	if ints, ok := tryParseInts(raw, nulls); ok {
		return table.Column{Name: name, Kind: table.KindInt64, Ints: ints, Nulls: nulls}
	}
	if floats, ok := tryParseFloats(raw, nulls); ok {
		return table.Column{Name: name, Kind: table.KindFloat64, Floats: floats, Nulls: nulls}
	}
	if bools, ok := tryParseBools(raw, nulls); ok {
		return table.Column{Name: name, Kind: table.KindBool, Bools: bools, Nulls: nulls}
	}
	return table.Column{Name: name, Kind: table.KindString, Strings: raw, Nulls: nulls}
}

func tryParseInts(raw []string, nulls []bool) ([]int64, bool) {
	out := make([]int64, len(raw))
	for i, v := range raw {
		if nulls[i] {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func tryParseFloats(raw []string, nulls []bool) ([]float64, bool) {
	out := make([]float64, len(raw))
	for i, v := range raw {
		if nulls[i] {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func tryParseBools(raw []string, nulls []bool) ([]bool, bool) {
	out := make([]bool, len(raw))
	for i, v := range raw {
		if nulls[i] {
			continue
		}
		switch v {
		case "true", "True":
			out[i] = true
		case "false", "False":
			out[i] = false
		default:
			return nil, false
		}
	}
	return out, true
}

// encodeCSV writes tbl as RFC-4180-ish CSV: header row, LF line endings,
// no row-index column.
func encodeCSV(w io.Writer, tbl *table.Table) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = false

	names := tbl.ColumnNames()
	if err := cw.Write(names); err != nil {
		return err
	}

	row := make([]string, len(names))
	cols := tbl.Columns()
	for r := 0; r < tbl.NumRows(); r++ {
		for c := range cols {
			row[c] = cellText(&cols[c], r)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellText(col *table.Column, row int) string {
	if col.IsNull(row) {
		return ""
	}
	switch col.Kind {
	case table.KindInt64:
		return strconv.FormatInt(col.Ints[row], 10)
	case table.KindFloat64:
		return strconv.FormatFloat(col.Floats[row], 'g', -1, 64)
	case table.KindBool:
		return strconv.FormatBool(col.Bools[row])
	case table.KindString:
		return col.Strings[row]
	default:
		return ""
	}
}
