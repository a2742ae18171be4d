package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paleosieve/paleosieve-cli/internal/clean"
	"github.com/paleosieve/paleosieve-cli/internal/table"
)

func TestFrequencyOrdering(t *testing.T) {
	tbl, err := table.New([]string{"cc"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, v := range []string{"US", "EG", "US", "", "DE", "US", "EG"} {
		if err := tbl.AppendRow([]string{v}); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	rows, err := Frequency(tbl, "cc")
	if err != nil {
		t.Fatalf("Frequency: %v", err)
	}
	want := []FrequencyRow{
		{Value: "US", Count: 3},
		{Value: "EG", Count: 2},
		{Value: "(missing)", Count: 1},
		{Value: "DE", Count: 1},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %+v, want %+v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
	out := FormatFrequency(rows)
	if !strings.Contains(out, "US") || !strings.Contains(out, "(missing)") {
		t.Fatalf("formatted output incomplete: %q", out)
	}
}

func TestFrequencyUnknownColumn(t *testing.T) {
	tbl, _ := table.New([]string{"cc"})
	if _, err := Frequency(tbl, "country"); err == nil {
		t.Fatal("expected SchemaError")
	}
}

func TestProvenanceTrail(t *testing.T) {
	p := NewProvenance("occurrences.csv", 886, 886)
	if p.RunID == "" {
		t.Fatal("no run ID assigned")
	}
	p.AddStages([]clean.StageTrace{
		{Name: "completeness", RowsIn: 886, RowsOut: 868, Note: "dropped 18"},
		{Name: "duplicates", RowsIn: 868, RowsOut: 844, Note: "removed 24"},
	})
	p.AddNote("accepted_name: 2 probable variant pairs")
	if p.FinalRecords != 844 {
		t.Fatalf("FinalRecords = %d, want 844", p.FinalRecords)
	}

	y, err := p.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	for _, want := range []string{"run_id:", "source: occurrences.csv", "rows_out: 844", "variant pairs"} {
		if !strings.Contains(string(y), want) {
			t.Fatalf("yaml missing %q:\n%s", want, y)
		}
	}

	text := p.Text()
	for _, want := range []string{"[PROVENANCE]", "completeness: 886 -> 868", "Final: 844 records"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text missing %q:\n%s", want, text)
		}
	}
}

func TestProvenanceSave(t *testing.T) {
	p := NewProvenance("occurrences.csv", -1, 10)
	path := filepath.Join(t.TempDir(), "out", "provenance.yaml")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(b), p.RunID) {
		t.Fatal("saved file lacks run ID")
	}
}
