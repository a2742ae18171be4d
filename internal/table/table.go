// Package table holds the in-memory table of occurrence records that every
// cleaning stage consumes and returns. Values are kept as the raw strings
// read from the export; typed access goes through the declared schema.
// Stages annotate records by appending derived columns, never by rewriting
// raw cells, so the loaded table is always recoverable via DropDerived.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Column is a single named column of cells. Derived marks columns added by
// a cleaning stage (flags, bin assignments) rather than read from the file.
type Column struct {
	Name    string
	Kind    Kind
	Domain  []string
	Derived bool
	cells   []string
}

// Table is an ordered sequence of records sharing one column schema.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New creates an empty table with the given column names, all kind text.
// Names must already be unique; the loader disambiguates duplicates first.
func New(names []string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(names))}
	for i, n := range names {
		if _, dup := t.index[n]; dup {
			return nil, &SchemaError{Column: n, Op: "new table", Msg: "duplicate column name"}
		}
		t.cols = append(t.cols, &Column{Name: n, Kind: Text})
		t.index[n] = i
	}
	return t, nil
}

// AppendRow appends one record. The row must already be padded to the
// table's width.
func (t *Table) AppendRow(cells []string) error {
	if len(cells) != len(t.cols) {
		return &FormatError{Line: t.rows + 1, Msg: fmt.Sprintf("row has %d cells, table has %d columns", len(cells), len(t.cols))}
	}
	for i, c := range cells {
		t.cols[i].cells = append(t.cols[i].cells, c)
	}
	t.rows++
	return nil
}

// Len returns the number of records.
func (t *Table) Len() int { return t.rows }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// HasColumn reports whether name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	if i, ok := t.index[name]; ok {
		return t.cols[i]
	}
	return nil
}

func (t *Table) colIndex(name, op string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, &SchemaError{Column: name, Op: op, Msg: "column not present in table"}
	}
	return i, nil
}

// Cell returns the raw cell value at (name, row).
func (t *Table) Cell(name string, row int) (string, error) {
	i, err := t.colIndex(name, "cell")
	if err != nil {
		return "", err
	}
	if row < 0 || row >= t.rows {
		return "", fmt.Errorf("row %d out of range (0..%d)", row, t.rows-1)
	}
	return t.cols[i].cells[row], nil
}

// Float parses the cell at (name, row) as a number. The column must be
// declared numeric. ok is false for an empty or unparseable cell; that is
// not an error, since sparse columns are expected.
func (t *Table) Float(name string, row int) (v float64, ok bool, err error) {
	i, err := t.colIndex(name, "float")
	if err != nil {
		return 0, false, err
	}
	c := t.cols[i]
	if c.Kind != Numeric {
		return 0, false, &SchemaError{Column: name, Op: "float", Msg: fmt.Sprintf("declared kind is %s, not numeric", c.Kind)}
	}
	raw := strings.TrimSpace(c.cells[row])
	if raw == "" {
		return 0, false, nil
	}
	f, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return 0, false, nil
	}
	return f, true, nil
}

// Bool reads a derived boolean column written by a stage.
func (t *Table) Bool(name string, row int) (bool, error) {
	raw, err := t.Cell(name, row)
	if err != nil {
		return false, err
	}
	return raw == "true", nil
}

// Row returns a copy of record row's raw cells, in column order.
func (t *Table) Row(row int) []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.cells[row]
	}
	return out
}

// AddFlag appends a derived boolean column. Flags are additive; colliding
// with an existing column is an error so stages can never overwrite raw
// data or each other's annotations.
func (t *Table) AddFlag(name string, vals []bool) error {
	cells := make([]string, len(vals))
	for i, v := range vals {
		if v {
			cells[i] = "true"
		} else {
			cells[i] = "false"
		}
	}
	return t.AddDerived(name, Categorical, cells)
}

// AddDerived appends a derived column of the given kind.
func (t *Table) AddDerived(name string, kind Kind, cells []string) error {
	if _, exists := t.index[name]; exists {
		return &SchemaError{Column: name, Op: "add derived", Msg: "column already present"}
	}
	if len(cells) != t.rows {
		return &SchemaError{Column: name, Op: "add derived", Msg: fmt.Sprintf("%d values for %d records", len(cells), t.rows)}
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, &Column{Name: name, Kind: kind, Derived: true, cells: cells})
	return nil
}

// Filter returns a new table containing the records where keep is true,
// preserving order. The receiver is untouched.
func (t *Table) Filter(keep []bool) (*Table, error) {
	if len(keep) != t.rows {
		return nil, fmt.Errorf("filter mask has %d entries for %d records", len(keep), t.rows)
	}
	out := t.emptyLike()
	for _, c := range t.cols {
		oc := out.cols[out.index[c.Name]]
		for row, k := range keep {
			if k {
				oc.cells = append(oc.cells, c.cells[row])
			}
		}
	}
	for _, k := range keep {
		if k {
			out.rows++
		}
	}
	return out, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := t.emptyLike()
	for _, c := range t.cols {
		oc := out.cols[out.index[c.Name]]
		oc.cells = append([]string(nil), c.cells...)
	}
	out.rows = t.rows
	return out
}

func (t *Table) emptyLike() *Table {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for i, c := range t.cols {
		out.cols = append(out.cols, &Column{
			Name:    c.Name,
			Kind:    c.Kind,
			Domain:  append([]string(nil), c.Domain...),
			Derived: c.Derived,
		})
		out.index[c.Name] = i
	}
	return out
}

// DropDerived returns a copy with every derived column removed, i.e. the
// table as the loader produced it.
func (t *Table) DropDerived() *Table {
	out := &Table{index: make(map[string]int)}
	for _, c := range t.cols {
		if c.Derived {
			continue
		}
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, &Column{
			Name:   c.Name,
			Kind:   c.Kind,
			Domain: append([]string(nil), c.Domain...),
			cells:  append([]string(nil), c.cells...),
		})
	}
	out.rows = t.rows
	return out
}

// ReconcileDuplicates resolves a header the export declared twice. The
// loader renames both copies to name_<position>; this verifies the copies
// are byte-for-byte identical across all records, keeps the first, and
// restores the semantic name. Differing copies are refused: that is a real
// data conflict the caller has to resolve upstream.
func (t *Table) ReconcileDuplicates(semantic string) error {
	prefix := semantic + "_"
	var dups []int
	for i, c := range t.cols {
		if strings.HasPrefix(c.Name, prefix) {
			if _, err := strconv.Atoi(c.Name[len(prefix):]); err == nil {
				dups = append(dups, i)
			}
		}
	}
	if len(dups) < 2 {
		return &SchemaError{Column: semantic, Op: "reconcile", Msg: "no duplicated columns found"}
	}
	first := t.cols[dups[0]]
	for _, di := range dups[1:] {
		c := t.cols[di]
		for row := 0; row < t.rows; row++ {
			if first.cells[row] != c.cells[row] {
				return &FormatError{Line: row + 1, Msg: fmt.Sprintf("duplicated column %q differs between copies (%q vs %q)", semantic, first.cells[row], c.cells[row])}
			}
		}
	}
	// Drop the later copies, keep the first under its semantic name.
	kept := make([]*Column, 0, len(t.cols)-len(dups)+1)
	for i, c := range t.cols {
		drop := false
		for _, di := range dups[1:] {
			if i == di {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, c)
		}
	}
	first.Name = semantic
	t.cols = kept
	t.index = make(map[string]int, len(kept))
	for i, c := range kept {
		t.index[c.Name] = i
	}
	return nil
}
