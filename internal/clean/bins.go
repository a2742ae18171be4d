package clean

import (
	"fmt"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// Interval is one named bin of an interval scale, in millions of years
// before present. Older > Younger; the bin covers [Older, Younger).
type Interval struct {
	Name    string
	Older   float64
	Younger float64
}

// IntervalScale is an ordered, non-overlapping sequence of intervals from
// oldest to youngest.
type IntervalScale struct {
	Name      string
	Intervals []Interval
}

// CenozoicEpochs returns the standard epoch-level scale the worked example
// bins against (Paleocene through Pleistocene, ICS 2023 boundaries).
func CenozoicEpochs() IntervalScale {
	return IntervalScale{
		Name: "Cenozoic epochs",
		Intervals: []Interval{
			{Name: "Paleocene", Older: 66, Younger: 56},
			{Name: "Eocene", Older: 56, Younger: 33.9},
			{Name: "Oligocene", Older: 33.9, Younger: 23.03},
			{Name: "Miocene", Older: 23.03, Younger: 5.333},
			{Name: "Pliocene", Older: 5.333, Younger: 2.58},
			{Name: "Pleistocene", Older: 2.58, Younger: 0.0117},
		},
	}
}

// Validate checks the scale is usable: named bins, each older than its end,
// ordered oldest-first without gaps reversing or overlapping.
func (s IntervalScale) Validate() error {
	if len(s.Intervals) == 0 {
		return fmt.Errorf("interval scale %q has no intervals", s.Name)
	}
	for i, iv := range s.Intervals {
		if iv.Name == "" {
			return fmt.Errorf("interval scale %q: interval %d has no name", s.Name, i)
		}
		if iv.Older <= iv.Younger {
			return fmt.Errorf("interval scale %q: %s has older bound %g <= younger bound %g", s.Name, iv.Name, iv.Older, iv.Younger)
		}
		if i > 0 && s.Intervals[i-1].Younger < iv.Older {
			return fmt.Errorf("interval scale %q: %s overlaps the preceding interval", s.Name, iv.Name)
		}
	}
	return nil
}

// BinSpec configures time-bin assignment.
type BinSpec struct {
	// Older and Younger name the numeric columns holding each record's age
	// range in Ma (e.g. max_ma, min_ma).
	Older   string
	Younger string
	Scale   IntervalScale
	// Column names the derived bin column; "" means "time_bin".
	Column string
}

// BinResult is the assignment report.
type BinResult struct {
	Assigned int
	// Unbinned counts records whose age range overlaps no interval, or
	// lacks an age; their bin cell is left empty and reported here.
	Unbinned int
}

// AssignBins derives a bin column by majority overlap: each record's
// [older, younger] range is assigned to the interval covering the largest
// share of it. Ties go to the older interval, so the rule is deterministic
// and every record maps to exactly one bin or none.
func AssignBins(t *table.Table, spec BinSpec) (*table.Table, *BinResult, error) {
	if err := spec.Scale.Validate(); err != nil {
		return nil, nil, err
	}
	binCol := spec.Column
	if binCol == "" {
		binCol = "time_bin"
	}
	res := &BinResult{}
	cells := make([]string, t.Len())
	for row := 0; row < t.Len(); row++ {
		older, okO, err := t.Float(spec.Older, row)
		if err != nil {
			return nil, nil, err
		}
		younger, okY, err := t.Float(spec.Younger, row)
		if err != nil {
			return nil, nil, err
		}
		if !okO || !okY || older < younger {
			res.Unbinned++
			continue
		}
		name := assign(spec.Scale, older, younger)
		if name == "" {
			res.Unbinned++
			continue
		}
		cells[row] = name
		res.Assigned++
	}
	out := t.Clone()
	if err := out.AddDerived(binCol, table.Categorical, cells); err != nil {
		return nil, nil, err
	}
	return out, res, nil
}

func assign(scale IntervalScale, older, younger float64) string {
	best := ""
	bestOverlap := 0.0
	for _, iv := range scale.Intervals {
		lo := younger
		if iv.Younger > lo {
			lo = iv.Younger
		}
		hi := older
		if iv.Older < hi {
			hi = iv.Older
		}
		overlap := hi - lo
		if overlap < 0 {
			continue
		}
		if older == younger {
			// Point age: containment, not overlap length.
			if older <= iv.Older && older > iv.Younger {
				return iv.Name
			}
			continue
		}
		// Strict > keeps the first (oldest) interval on ties.
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = iv.Name
		}
	}
	return best
}
