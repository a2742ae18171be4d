package clean

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// Pair is an unordered pair of near-identical strings, stored with A < B
// so the output is canonical.
type Pair struct {
	A, B          string
	Dissimilarity float64
}

// Cluster is a connected component of flagged pairs, members sorted.
type Cluster []string

// Variants scans the distinct non-missing values of a text column and
// flags every pair whose normalized edit-distance dissimilarity is below
// threshold. Identical strings are never compared against themselves, and
// nothing is merged: detection only, resolution is a human decision.
// Threshold must lie in (0, 1].
func Variants(t *table.Table, column string, threshold float64) ([]Pair, []Cluster, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, nil, &table.ThresholdError{Name: "dissimilarity threshold", Value: threshold, Msg: "must lie in (0, 1]"}
	}
	if !t.HasColumn(column) {
		return nil, nil, &table.SchemaError{Column: column, Op: "variants", Msg: "column not present in table"}
	}

	seen := make(map[string]bool)
	var values []string
	for row := 0; row < t.Len(); row++ {
		raw, _ := t.Cell(column, row)
		v := strings.TrimSpace(raw)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)

	var pairs []Pair
	parent := make(map[string]string, len(values))
	for _, v := range values {
		parent[v] = v
	}
	params := levenshtein.NewParams()
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			d := 1 - levenshtein.Similarity(values[i], values[j], params)
			if d < threshold {
				pairs = append(pairs, Pair{A: values[i], B: values[j], Dissimilarity: d})
				union(parent, values[i], values[j])
			}
		}
	}
	// values were scanned in sorted order, so pairs are already canonical
	// (A < B, sorted by A then B); sort anyway to keep the contract local.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	groups := make(map[string][]string)
	for _, p := range pairs {
		for _, v := range []string{p.A, p.B} {
			root := find(parent, v)
			if !contains(groups[root], v) {
				groups[root] = append(groups[root], v)
			}
		}
	}
	clusters := make([]Cluster, 0, len(groups))
	for _, members := range groups {
		sort.Strings(members)
		clusters = append(clusters, Cluster(members))
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })
	return pairs, clusters, nil
}

func find(parent map[string]string, v string) string {
	for parent[v] != v {
		parent[v] = parent[parent[v]]
		v = parent[v]
	}
	return v
}

func union(parent map[string]string, a, b string) {
	ra, rb := find(parent, a), find(parent, b)
	if ra != rb {
		// Attach the lexicographically larger root so roots are stable
		// regardless of union order.
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// ShapeRule validates the textual shape of a column's values, independent
// of the similarity check.
type ShapeRule struct {
	Column string
	// Forbidden is a regular expression; any value matching it is a
	// violation (e.g. `[0-9"?]` for taxon names).
	Forbidden string
	// MinTokens/MaxTokens bound the whitespace-separated token count.
	// MaxTokens 0 means unbounded.
	MinTokens int
	MaxTokens int
}

// ShapeViolation reports one offending value. Values are never mutated.
type ShapeViolation struct {
	Column string
	Row    int
	Value  string
	Reason string
}

// CheckShape applies the shape rules and reports violations. Missing cells
// are skipped.
func CheckShape(t *table.Table, rules []ShapeRule) ([]ShapeViolation, error) {
	var out []ShapeViolation
	for _, rule := range rules {
		if !t.HasColumn(rule.Column) {
			return nil, &table.SchemaError{Column: rule.Column, Op: "shape check", Msg: "column not present in table"}
		}
		var re *regexp.Regexp
		if rule.Forbidden != "" {
			var err error
			re, err = regexp.Compile(rule.Forbidden)
			if err != nil {
				return nil, fmt.Errorf("compile forbidden pattern for %s: %w", rule.Column, err)
			}
		}
		for row := 0; row < t.Len(); row++ {
			raw, _ := t.Cell(rule.Column, row)
			v := strings.TrimSpace(raw)
			if v == "" {
				continue
			}
			if re != nil && re.MatchString(v) {
				out = append(out, ShapeViolation{Column: rule.Column, Row: row, Value: v, Reason: "contains forbidden characters"})
				continue
			}
			tokens := len(strings.Fields(v))
			if rule.MinTokens > 0 && tokens < rule.MinTokens {
				out = append(out, ShapeViolation{Column: rule.Column, Row: row, Value: v, Reason: fmt.Sprintf("%d tokens, want at least %d", tokens, rule.MinTokens)})
			} else if rule.MaxTokens > 0 && tokens > rule.MaxTokens {
				out = append(out, ShapeViolation{Column: rule.Column, Row: row, Value: v, Reason: fmt.Sprintf("%d tokens, want at most %d", tokens, rule.MaxTokens)})
			}
		}
	}
	return out, nil
}
