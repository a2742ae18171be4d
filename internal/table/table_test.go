package table

import (
	"errors"
	"reflect"
	"testing"
)

func fixture(t *testing.T) *Table {
	t.Helper()
	tbl, err := New([]string{"collection_no", "accepted_name", "max_ma"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rows := [][]string{
		{"101", "Crocodylus acer", "56"},
		{"102", "Borealosuchus", "61.6"},
		{"103", "Crocodylus acer", ""},
	}
	for _, r := range rows {
		if err := tbl.AppendRow(r); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	return tbl
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New([]string{"cc", "cc"})
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestFloatRequiresNumericKind(t *testing.T) {
	tbl := fixture(t)
	if _, _, err := tbl.Float("max_ma", 0); err == nil {
		t.Fatal("expected SchemaError for undeclared column kind")
	}
	if err := NewSchema(ColumnSpec{Name: "max_ma", Kind: Numeric}).Apply(tbl); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	v, ok, err := tbl.Float("max_ma", 1)
	if err != nil || !ok || v != 61.6 {
		t.Fatalf("Float(max_ma, 1) = %v, %v, %v; want 61.6", v, ok, err)
	}
	// Empty cell is missing, not an error.
	if _, ok, err := tbl.Float("max_ma", 2); ok || err != nil {
		t.Fatalf("empty cell: ok=%v err=%v, want missing", ok, err)
	}
}

func TestSchemaApplyMissingColumn(t *testing.T) {
	tbl := fixture(t)
	err := NewSchema(ColumnSpec{Name: "lng", Kind: Numeric}).Apply(tbl)
	var se *SchemaError
	if !errors.As(err, &se) || se.Column != "lng" {
		t.Fatalf("expected SchemaError on lng, got %v", err)
	}
}

func TestFlagsAreAdditiveAndDroppable(t *testing.T) {
	tbl := fixture(t)
	raw := tbl.Clone()

	if err := tbl.AddFlag("is_outlier", []bool{false, true, false}); err != nil {
		t.Fatalf("AddFlag: %v", err)
	}
	if err := tbl.AddFlag("is_outlier", []bool{false, false, false}); err == nil {
		t.Fatal("expected error re-adding an existing flag column")
	}
	got, err := tbl.Bool("is_outlier", 1)
	if err != nil || !got {
		t.Fatalf("Bool(is_outlier, 1) = %v, %v; want true", got, err)
	}

	// Dropping derived columns must reconstruct the loaded table exactly.
	back := tbl.DropDerived()
	if !reflect.DeepEqual(back.ColumnNames(), raw.ColumnNames()) {
		t.Fatalf("columns after DropDerived: %v, want %v", back.ColumnNames(), raw.ColumnNames())
	}
	for row := 0; row < raw.Len(); row++ {
		if !reflect.DeepEqual(back.Row(row), raw.Row(row)) {
			t.Fatalf("row %d after DropDerived: %v, want %v", row, back.Row(row), raw.Row(row))
		}
	}
}

func TestFilterPreservesOrderAndInput(t *testing.T) {
	tbl := fixture(t)
	out, err := tbl.Filter([]bool{true, false, true})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.Len() != 2 || tbl.Len() != 3 {
		t.Fatalf("lengths: out=%d in=%d, want 2 and 3", out.Len(), tbl.Len())
	}
	if got, _ := out.Cell("collection_no", 1); got != "103" {
		t.Fatalf("kept row order wrong: got %q, want 103", got)
	}
}

func TestReconcileDuplicates(t *testing.T) {
	tbl, err := New([]string{"cc_2", "lat", "cc_5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, r := range [][]string{{"US", "41.2", "US"}, {"EG", "30.1", "EG"}} {
		if err := tbl.AppendRow(r); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	if err := tbl.ReconcileDuplicates("cc"); err != nil {
		t.Fatalf("ReconcileDuplicates: %v", err)
	}
	if !reflect.DeepEqual(tbl.ColumnNames(), []string{"cc", "lat"}) {
		t.Fatalf("columns = %v, want [cc lat]", tbl.ColumnNames())
	}
	if got, _ := tbl.Cell("cc", 1); got != "EG" {
		t.Fatalf("cc[1] = %q, want EG", got)
	}
}

func TestReconcileDuplicatesRefusesDiffering(t *testing.T) {
	tbl, err := New([]string{"cc_1", "cc_2"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tbl.AppendRow([]string{"US", "CA"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	err = tbl.ReconcileDuplicates("cc")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError for differing copies, got %v", err)
	}
}
