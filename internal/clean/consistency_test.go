package clean

import (
	"errors"
	"testing"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

func namesFixture(t *testing.T, names ...string) *table.Table {
	t.Helper()
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{n}
	}
	return buildTable(t, []string{"accepted_name"}, rows)
}

func TestVariantsFlagsSpellingPairs(t *testing.T) {
	tbl := namesFixture(t, "Crocodylus acer", "Crocodilus acer", "Alligator prenasalis", "Crocodylus acer")
	pairs, clusters, err := Variants(tbl, "accepted_name", 0.2)
	if err != nil {
		t.Fatalf("Variants: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("pairs = %+v, want exactly one", pairs)
	}
	p := pairs[0]
	if p.A != "Crocodilus acer" || p.B != "Crocodylus acer" {
		t.Fatalf("pair not canonical: %+v", p)
	}
	if p.Dissimilarity <= 0 || p.Dissimilarity >= 0.2 {
		t.Fatalf("dissimilarity = %g, want in (0, 0.2)", p.Dissimilarity)
	}
	if len(clusters) != 1 || len(clusters[0]) != 2 {
		t.Fatalf("clusters = %v, want one cluster of two", clusters)
	}
}

// A repeated value is one distinct string: it must never pair with itself.
func TestVariantsNeverSelfPairs(t *testing.T) {
	tbl := namesFixture(t, "Borealosuchus", "Borealosuchus", "Borealosuchus")
	pairs, clusters, err := Variants(tbl, "accepted_name", 0.5)
	if err != nil {
		t.Fatalf("Variants: %v", err)
	}
	if len(pairs) != 0 || len(clusters) != 0 {
		t.Fatalf("got pairs %v clusters %v, want none", pairs, clusters)
	}
}

// Raising the threshold can add pairs but never remove one.
func TestVariantsThresholdMonotonic(t *testing.T) {
	tbl := namesFixture(t, "Crocodylus", "Crocodilus", "Crocodilos", "Gavialis")
	low, _, err := Variants(tbl, "accepted_name", 0.15)
	if err != nil {
		t.Fatalf("Variants low: %v", err)
	}
	high, _, err := Variants(tbl, "accepted_name", 0.4)
	if err != nil {
		t.Fatalf("Variants high: %v", err)
	}
	if len(high) < len(low) {
		t.Fatalf("raising threshold removed pairs: %d -> %d", len(low), len(high))
	}
	for _, lp := range low {
		found := false
		for _, hp := range high {
			if hp.A == lp.A && hp.B == lp.B {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("pair %+v flagged at 0.15 but not at 0.4", lp)
		}
	}
}

func TestVariantsTransitiveCluster(t *testing.T) {
	// Crocodilus~Crocodilos and Crocodilus~Crocodylus are close; the
	// outer pair is not, but all three belong to one cluster.
	tbl := namesFixture(t, "Crocodylus", "Crocodilus", "Crocodilos")
	_, clusters, err := Variants(tbl, "accepted_name", 0.15)
	if err != nil {
		t.Fatalf("Variants: %v", err)
	}
	if len(clusters) != 1 || len(clusters[0]) != 3 {
		t.Fatalf("clusters = %v, want one cluster of three", clusters)
	}
	for i := 1; i < len(clusters[0]); i++ {
		if clusters[0][i-1] >= clusters[0][i] {
			t.Fatalf("cluster members not sorted: %v", clusters[0])
		}
	}
}

func TestVariantsThresholdRange(t *testing.T) {
	tbl := namesFixture(t, "Crocodylus")
	var te *table.ThresholdError
	for _, bad := range []float64{0, -0.1, 1.5} {
		if _, _, err := Variants(tbl, "accepted_name", bad); !errors.As(err, &te) {
			t.Fatalf("threshold %g: expected ThresholdError, got %v", bad, err)
		}
	}
	if _, _, err := Variants(tbl, "accepted_name", 1); err != nil {
		t.Fatalf("threshold 1 should be valid, got %v", err)
	}
}

func TestCheckShape(t *testing.T) {
	tbl := buildTable(t, []string{"accepted_name"}, [][]string{
		{"Crocodylus acer"},
		{"Crocodylus? acer"},
		{"Crocodylus"},
		{""},
		{"Crocodylus acer acer longus"},
	})
	violations, err := CheckShape(tbl, []ShapeRule{{
		Column:    "accepted_name",
		Forbidden: `[0-9?"]`,
		MinTokens: 2,
		MaxTokens: 3,
	}})
	if err != nil {
		t.Fatalf("CheckShape: %v", err)
	}
	if len(violations) != 3 {
		t.Fatalf("violations = %+v, want 3", violations)
	}
	reasons := map[int]string{}
	for _, v := range violations {
		reasons[v.Row] = v.Reason
	}
	if _, ok := reasons[1]; !ok {
		t.Fatal("question mark row not flagged")
	}
	if _, ok := reasons[2]; !ok {
		t.Fatal("single-token row not flagged")
	}
	if _, ok := reasons[4]; !ok {
		t.Fatal("four-token row not flagged")
	}
}

func TestCheckShapeBadPattern(t *testing.T) {
	tbl := namesFixture(t, "Crocodylus")
	if _, err := CheckShape(tbl, []ShapeRule{{Column: "accepted_name", Forbidden: "["}}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
