package table

import "strings"

// Kind is the declared value kind of a column.
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
	Text        Kind = "text"
)

// ColumnSpec declares a column's kind, plus the set of valid codes for a
// categorical column. An empty Domain means the domain is undeclared.
type ColumnSpec struct {
	Name   string
	Kind   Kind
	Domain []string
}

// InDomain reports whether v is one of the declared codes. It is always
// false when no domain is declared.
func (s ColumnSpec) InDomain(v string) bool {
	for _, d := range s.Domain {
		if d == v {
			return true
		}
	}
	return false
}

// Schema is the caller-declared set of column specs. Columns not declared
// here default to kind text with no domain.
type Schema struct {
	specs map[string]ColumnSpec
}

// NewSchema builds a schema from the given specs. Unknown kinds default to
// text; spec names are trimmed.
func NewSchema(specs ...ColumnSpec) *Schema {
	m := make(map[string]ColumnSpec, len(specs))
	for _, s := range specs {
		s.Name = strings.TrimSpace(s.Name)
		switch s.Kind {
		case Numeric, Categorical, Text:
		default:
			s.Kind = Text
		}
		m[s.Name] = s
	}
	return &Schema{specs: m}
}

// Spec returns the declared spec for name, or a default text spec.
func (s *Schema) Spec(name string) ColumnSpec {
	if s != nil {
		if sp, ok := s.specs[name]; ok {
			return sp
		}
	}
	return ColumnSpec{Name: name, Kind: Text}
}

// Apply validates the schema against the table once and stamps declared
// kinds and domains onto the matching columns. A declared column that is
// absent from the table is a SchemaError; run ReconcileDuplicates first if
// the export duplicated a header.
func (s *Schema) Apply(t *Table) error {
	if s == nil {
		return nil
	}
	for name, sp := range s.specs {
		idx, ok := t.index[name]
		if !ok {
			return &SchemaError{Column: name, Op: "apply schema", Msg: "column not present in table"}
		}
		t.cols[idx].Kind = sp.Kind
		t.cols[idx].Domain = append([]string(nil), sp.Domain...)
	}
	return nil
}
