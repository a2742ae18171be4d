package clean

import (
	"fmt"
	"math"
	"sort"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// OutlierSpec configures grouped Tukey-fence outlier flagging.
type OutlierSpec struct {
	// Value is the numeric column the fences are computed over.
	Value string
	// Group is the column the table is partitioned by (e.g. a time bin).
	Group string
	// Fence is the IQR multiplier; 0 means 1.5.
	Fence float64
	// MinGroup is the smallest group the fences are computed for; smaller
	// groups are skipped entirely rather than flagged from a degenerate
	// IQR. 0 means 4.
	MinGroup int
	// Exclude lists values of ExcludeColumn whose records are left out of
	// both fence computation and flagging. Recomputing after excluding a
	// skewing subgroup is the normal workflow, not a special case.
	Exclude []string
	// ExcludeColumn is the column Exclude matches against; "" means the
	// Group column.
	ExcludeColumn string
	// FlagColumn names the derived flag; "" means "is_outlier".
	FlagColumn string
}

// GroupBounds reports the fences computed for one group.
type GroupBounds struct {
	Group  string
	N      int
	Q1, Q3 float64
	Lo, Hi float64
}

// OutlierResult is the detector's report.
type OutlierResult struct {
	Bounds  []GroupBounds
	Skipped []string // groups below MinGroup, never flagged
	Flagged int
}

// Outliers partitions records by the group column, computes per-group
// quartile fences over the value column, and appends an advisory flag for
// records outside their group's fences. Nothing is removed.
func Outliers(t *table.Table, spec OutlierSpec) (*table.Table, *OutlierResult, error) {
	if spec.Fence < 0 {
		return nil, nil, &table.ThresholdError{Name: "fence", Value: spec.Fence, Msg: "must be non-negative"}
	}
	fence := spec.Fence
	if fence == 0 {
		fence = 1.5
	}
	minGroup := spec.MinGroup
	if minGroup == 0 {
		minGroup = 4
	}
	flagCol := spec.FlagColumn
	if flagCol == "" {
		flagCol = "is_outlier"
	}
	if !t.HasColumn(spec.Group) {
		return nil, nil, &table.SchemaError{Column: spec.Group, Op: "outliers", Msg: "column not present in table"}
	}
	excludeCol := spec.ExcludeColumn
	if excludeCol == "" {
		excludeCol = spec.Group
	}
	if len(spec.Exclude) > 0 && !t.HasColumn(excludeCol) {
		return nil, nil, &table.SchemaError{Column: excludeCol, Op: "outliers", Msg: "column not present in table"}
	}
	excluded := make(map[string]bool, len(spec.Exclude))
	for _, g := range spec.Exclude {
		excluded[g] = true
	}

	// One pass to gather per-group values and remember each record's
	// group and value.
	type obs struct {
		group    string
		val      float64
		ok       bool
		excluded bool
	}
	records := make([]obs, t.Len())
	groupVals := make(map[string][]float64)
	for row := 0; row < t.Len(); row++ {
		g, _ := t.Cell(spec.Group, row)
		ex, _ := t.Cell(excludeCol, row)
		v, ok, err := t.Float(spec.Value, row)
		if err != nil {
			return nil, nil, err
		}
		records[row] = obs{group: g, val: v, ok: ok, excluded: excluded[ex]}
		if ok && !excluded[ex] {
			groupVals[g] = append(groupVals[g], v)
		}
	}

	res := &OutlierResult{}
	bounds := make(map[string]GroupBounds, len(groupVals))
	for g, vals := range groupVals {
		if len(vals) < minGroup {
			res.Skipped = append(res.Skipped, g)
			continue
		}
		sort.Float64s(vals)
		q1 := quantile(vals, 0.25)
		q3 := quantile(vals, 0.75)
		iqr := q3 - q1
		bounds[g] = GroupBounds{
			Group: g,
			N:     len(vals),
			Q1:    q1,
			Q3:    q3,
			Lo:    q1 - fence*iqr,
			Hi:    q3 + fence*iqr,
		}
	}

	flags := make([]bool, t.Len())
	for row, o := range records {
		if !o.ok || o.excluded {
			continue
		}
		b, have := bounds[o.group]
		if !have {
			continue
		}
		if o.val < b.Lo || o.val > b.Hi {
			flags[row] = true
			res.Flagged++
		}
	}

	out := t.Clone()
	if err := out.AddFlag(flagCol, flags); err != nil {
		return nil, nil, err
	}
	for _, b := range bounds {
		res.Bounds = append(res.Bounds, b)
	}
	sort.Slice(res.Bounds, func(i, j int) bool { return res.Bounds[i].Group < res.Bounds[j].Group })
	sort.Strings(res.Skipped)
	return out, res, nil
}

func (b GroupBounds) String() string {
	return fmt.Sprintf("%s (n=%d): Q1=%.4g Q3=%.4g fence [%.4g, %.4g]", b.Group, b.N, b.Q1, b.Q3, b.Lo, b.Hi)
}

// quantile interpolates linearly between order statistics of a sorted
// slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func sortStrings(s []string) { sort.Strings(s) }
