// Package clean implements the cleaning stages: completeness filtering,
// grouped outlier detection, name-variant consistency checks, duplicate
// handling, coordinate validation, and time binning. Every stage takes a
// table value and returns a new one; raw cells are never rewritten.
package clean

import (
	"strings"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// Policy is the per-column disposition for missing values.
type Policy string

const (
	// PolicyDrop removes records missing the column's value.
	PolicyDrop Policy = "drop"
	// PolicyKeep keeps records untouched; counts are still reported.
	PolicyKeep Policy = "keep"
	// PolicyReport counts missing values without filtering.
	PolicyReport Policy = "report"
)

// CompletenessSpec configures the completeness filter.
type CompletenessSpec struct {
	// Policies maps target column name to its policy.
	Policies map[string]Policy
	// Markers are strings treated as missing-value markers in addition to
	// the empty cell (typically "NA").
	Markers []string
}

// MissingCount reports missing values for one target column.
type MissingCount struct {
	Column string
	// Before and After are missing-value counts before and after filtering.
	Before int
	After  int
	// Suspect counts marker strings in a categorical column with no
	// declared domain. They are kept, not coerced: without a domain there
	// is no way to tell a true absence from a valid code that happens to
	// collide with the marker.
	Suspect int
}

// CompletenessResult is the filter's report.
type CompletenessResult struct {
	Counts  []MissingCount
	Dropped int
}

// Completeness applies the per-column missing-value policies and returns
// the filtered table. Values are never filled in.
func Completeness(t *table.Table, spec CompletenessSpec) (*table.Table, *CompletenessResult, error) {
	targets := make([]string, 0, len(spec.Policies))
	for name := range spec.Policies {
		targets = append(targets, name)
	}
	sortStrings(targets)

	for _, name := range targets {
		if !t.HasColumn(name) {
			return nil, nil, &table.SchemaError{Column: name, Op: "completeness", Msg: "column not present in table"}
		}
		switch spec.Policies[name] {
		case PolicyDrop, PolicyKeep, PolicyReport:
		default:
			return nil, nil, &table.SchemaError{Column: name, Op: "completeness", Msg: "unknown policy " + string(spec.Policies[name])}
		}
	}

	res := &CompletenessResult{}
	keep := make([]bool, t.Len())
	for i := range keep {
		keep[i] = true
	}
	counts := make(map[string]*MissingCount, len(targets))
	for _, name := range targets {
		mc := &MissingCount{Column: name}
		counts[name] = mc
		col := t.Column(name)
		for row := 0; row < t.Len(); row++ {
			raw, _ := t.Cell(name, row)
			miss, suspect := classify(raw, col, spec.Markers)
			if suspect {
				mc.Suspect++
			}
			if miss {
				mc.Before++
				if spec.Policies[name] == PolicyDrop {
					keep[row] = false
				}
			}
		}
	}

	out, err := t.Filter(keep)
	if err != nil {
		return nil, nil, err
	}
	res.Dropped = t.Len() - out.Len()

	for _, name := range targets {
		mc := counts[name]
		col := out.Column(name)
		for row := 0; row < out.Len(); row++ {
			raw, _ := out.Cell(name, row)
			if miss, _ := classify(raw, col, spec.Markers); miss {
				mc.After++
			}
		}
		res.Counts = append(res.Counts, *mc)
	}
	return out, res, nil
}

// classify decides whether a cell is truly missing. Empty cells always are.
// A marker string is missing only when the column is numeric or plain text;
// in a categorical column the marker may be a legitimate code, so it is
// coerced only when a declared domain rules it out.
func classify(raw string, col *table.Column, markers []string) (missing, suspect bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return true, false
	}
	isMarker := false
	for _, m := range markers {
		if m != "" && v == m {
			isMarker = true
			break
		}
	}
	if !isMarker {
		return false, false
	}
	switch col.Kind {
	case table.Numeric, table.Text:
		return true, false
	case table.Categorical:
		if len(col.Domain) == 0 {
			return false, true
		}
		if inDomain(v, col.Domain) {
			return false, false
		}
		return true, false
	}
	return false, false
}

func inDomain(v string, domain []string) bool {
	for _, d := range domain {
		if d == v {
			return true
		}
	}
	return false
}
