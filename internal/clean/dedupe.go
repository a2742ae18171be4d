package clean

import (
	"strings"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// keySep joins key cells into a tuple; the unit separator cannot occur in
// CSV field values read by the loader.
const keySep = "\x1f"

func keyTuples(t *table.Table, keys []string, op string) ([]string, error) {
	if len(keys) == 0 {
		return nil, &table.SchemaError{Op: op, Msg: "no key columns given"}
	}
	for _, k := range keys {
		if !t.HasColumn(k) {
			return nil, &table.SchemaError{Column: k, Op: op, Msg: "column not present in table"}
		}
	}
	out := make([]string, t.Len())
	parts := make([]string, len(keys))
	for row := 0; row < t.Len(); row++ {
		for i, k := range keys {
			parts[i], _ = t.Cell(k, row)
		}
		out[row] = strings.Join(parts, keySep)
	}
	return out, nil
}

// DedupeExact removes all but the first record per distinct key-tuple,
// preserving the original order of kept records, and returns the filtered
// table plus the removed count. First-encountered-wins, so the result is
// deterministic under a fixed input order and idempotent on its own
// output.
func DedupeExact(t *table.Table, keys []string) (*table.Table, int, error) {
	tuples, err := keyTuples(t, keys, "dedupe")
	if err != nil {
		return nil, 0, err
	}
	seen := make(map[string]bool, t.Len())
	keep := make([]bool, t.Len())
	removed := 0
	for row, k := range tuples {
		if seen[k] {
			removed++
			continue
		}
		seen[k] = true
		keep[row] = true
	}
	out, err := t.Filter(keep)
	if err != nil {
		return nil, 0, err
	}
	return out, removed, nil
}

// FlagDuplicates removes nothing; it appends a boolean flag marking every
// record whose key-tuple occurs more than once. All members of the
// duplicate set are flagged, not just later occurrences, so a reviewer
// sees the whole set. Returns the flagged table and the number of
// flagged records.
func FlagDuplicates(t *table.Table, keys []string, flagCol string) (*table.Table, int, error) {
	if flagCol == "" {
		flagCol = "is_duplicate"
	}
	tuples, err := keyTuples(t, keys, "flag duplicates")
	if err != nil {
		return nil, 0, err
	}
	counts := make(map[string]int, t.Len())
	for _, k := range tuples {
		counts[k]++
	}
	flags := make([]bool, t.Len())
	flagged := 0
	for row, k := range tuples {
		if counts[k] > 1 {
			flags[row] = true
			flagged++
		}
	}
	out := t.Clone()
	if err := out.AddFlag(flagCol, flags); err != nil {
		return nil, 0, err
	}
	return out, flagged, nil
}
