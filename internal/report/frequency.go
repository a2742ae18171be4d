package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// FrequencyRow is one category count.
type FrequencyRow struct {
	Value string
	Count int
}

// Frequency counts records per distinct value of the column, sorted by
// descending count then value. Empty cells are reported under "(missing)".
func Frequency(t *table.Table, column string) ([]FrequencyRow, error) {
	if !t.HasColumn(column) {
		return nil, &table.SchemaError{Column: column, Op: "frequency", Msg: "column not present in table"}
	}
	counts := make(map[string]int)
	for row := 0; row < t.Len(); row++ {
		v, _ := t.Cell(column, row)
		v = strings.TrimSpace(v)
		if v == "" {
			v = "(missing)"
		}
		counts[v]++
	}
	out := make([]FrequencyRow, 0, len(counts))
	for v, n := range counts {
		out = append(out, FrequencyRow{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out, nil
}

// FormatFrequency renders a frequency table as aligned text lines.
func FormatFrequency(rows []FrequencyRow) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%6d  %s\n", r.Count, r.Value))
	}
	return b.String()
}
