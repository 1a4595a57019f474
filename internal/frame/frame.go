package frame

import (
	"fmt"
	"strconv"
	"time"
)

// DType identifies a column's value type.
// Cells of a column hold nil (null) or the Go type listed below.
type DType int

const (
	// String cells hold string.
	String DType = iota
	// Int cells hold int64. Never float - floats break determinism.
	Int
	// Bool cells hold bool.
	Bool
	// Date cells hold time.Time, truncated to a calendar date in UTC.
	Date
	// StringList cells hold []string.
	StringList
)

// String returns a human-readable name for the type.
func (d DType) String() string {
	switch d {
	case String:
		return "string"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Date:
		return "date"
	case StringList:
		return "list[string]"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// Column is a named, typed series of nullable cells.
type Column struct {
	Name   string
	Type   DType
	Values []any
}

// Frame is an ordered collection of equal-height columns.
// The zero value is not usable; construct with New.
type Frame struct {
	cols   []*Column
	byName map[string]*Column
	height int
}

// New creates an empty frame with zero rows and zero columns.
func New() *Frame {
	return &Frame{byName: make(map[string]*Column)}
}

// Height returns the number of rows.
func (f *Frame) Height() int { return f.height }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool { return f.height == 0 }

// Columns returns column names in frame order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column with the given name exists.
// This is the explicit column-presence query every conditional
// transformation branch must use before touching a column.
func (f *Frame) Has(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// Column returns the named column, or nil if absent.
func (f *Frame) Column(name string) *Column {
	return f.byName[name]
}

// SetColumn adds a column, or replaces an existing column of the same name
// in place (preserving its position). The value slice length must match the
// frame height unless the frame has no columns yet, in which case the column
// establishes the height.
func (f *Frame) SetColumn(name string, typ DType, values []any) error {
	if len(f.cols) > 0 && len(values) != f.height {
		return fmt.Errorf("column %q: length %d does not match frame height %d", name, len(values), f.height)
	}
	col := &Column{Name: name, Type: typ, Values: values}
	if existing, ok := f.byName[name]; ok {
		*existing = *col
		return nil
	}
	if len(f.cols) == 0 {
		f.height = len(values)
	}
	f.cols = append(f.cols, col)
	f.byName[name] = col
	return nil
}

// MustSetColumn is SetColumn for callers that have already checked lengths.
func (f *Frame) MustSetColumn(name string, typ DType, values []any) {
	if err := f.SetColumn(name, typ, values); err != nil {
		panic(err)
	}
}

// Drop removes the named column. Dropping an absent column is a no-op.
func (f *Frame) Drop(name string) {
	if _, ok := f.byName[name]; !ok {
		return
	}
	delete(f.byName, name)
	for i, c := range f.cols {
		if c.Name == name {
			f.cols = append(f.cols[:i], f.cols[i+1:]...)
			break
		}
	}
	if len(f.cols) == 0 {
		f.height = 0
	}
}

// Rename changes a column's name. Renaming an absent column is a no-op.
func (f *Frame) Rename(old, new string) {
	col, ok := f.byName[old]
	if !ok || old == new {
		return
	}
	delete(f.byName, old)
	col.Name = new
	f.byName[new] = col
}

// Select returns a new frame containing only the named columns, in the given
// order. Cell data is shared; column metadata is copied, so replacing a
// column in the result does not affect the source frame. Absent names are an
// error.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := New()
	out.height = f.height
	for _, name := range names {
		col, ok := f.byName[name]
		if !ok {
			return nil, fmt.Errorf("select: column %q not found", name)
		}
		copied := &Column{Name: col.Name, Type: col.Type, Values: col.Values}
		out.cols = append(out.cols, copied)
		out.byName[name] = copied
	}
	return out, nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := New()
	out.height = f.height
	for _, c := range f.cols {
		vals := make([]any, len(c.Values))
		copy(vals, c.Values)
		out.MustSetColumn(c.Name, c.Type, vals)
	}
	return out
}

// Value returns the cell at (column, row). Returns nil for absent columns.
func (f *Frame) Value(name string, row int) any {
	col, ok := f.byName[name]
	if !ok {
		return nil
	}
	return col.Values[row]
}

// StringValue returns the cell at (column, row) as a string.
// ok is false when the column is absent or the cell is null.
func (f *Frame) StringValue(name string, row int) (string, bool) {
	v := f.Value(name, row)
	if v == nil {
		return "", false
	}
	return CellString(v), true
}

// RowMap returns one row as a map from column name to cell value.
// Used for record construction and for stable test serialization.
func (f *Frame) RowMap(row int) map[string]any {
	m := make(map[string]any, len(f.cols))
	for _, c := range f.cols {
		m[c.Name] = c.Values[row]
	}
	return m
}

// FilterRows returns a new frame containing only rows where keep returns true.
func (f *Frame) FilterRows(keep func(row int) bool) *Frame {
	var idx []int
	for i := 0; i < f.height; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return f.Take(idx)
}

// Take returns a new frame containing the given rows, in the given order.
func (f *Frame) Take(rows []int) *Frame {
	out := New()
	out.height = len(rows)
	for _, c := range f.cols {
		vals := make([]any, len(rows))
		for j, i := range rows {
			vals[j] = c.Values[i]
		}
		out.cols = append(out.cols, &Column{Name: c.Name, Type: c.Type, Values: vals})
		out.byName[c.Name] = out.cols[len(out.cols)-1]
	}
	return out
}

// Nulls returns a null-filled value slice of the given length.
func Nulls(n int) []any {
	return make([]any, n)
}

// Repeat returns a value slice of length n with every cell set to v.
func Repeat(v any, n int) []any {
	vals := make([]any, n)
	for i := range vals {
		vals[i] = v
	}
	return vals
}

// CellString renders a non-null cell as its canonical string form:
// ints in decimal, bools as "true"/"false", dates as ISO YYYY-MM-DD,
// lists joined by ";". This is the representation used for key
// normalization and content hashing, so it must stay stable.
func CellString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02")
	case []string:
		return joinList(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func joinList(list []string) string {
	out := ""
	for i, s := range list {
		if i > 0 {
			out += ";"
		}
		out += s
	}
	return out
}
