package clean

import (
	"testing"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

func TestValidateCoordinates(t *testing.T) {
	tbl := buildTable(t, []string{"lat", "lng"}, [][]string{
		{"41.2", "-103.7"}, // valid
		{"91", "10"},       // latitude out of range
		{"45", "-190.5"},   // longitude out of range
		{"0", "0"},         // placeholder pair
		{"", "12.4"},       // missing latitude
		{"-33.9", "18.4"},  // valid, southern hemisphere
	},
		table.ColumnSpec{Name: "lat", Kind: table.Numeric},
		table.ColumnSpec{Name: "lng", Kind: table.Numeric},
	)
	out, res, err := ValidateCoordinates(tbl, SpatialSpec{Lat: "lat", Lng: "lng"})
	if err != nil {
		t.Fatalf("ValidateCoordinates: %v", err)
	}
	if res.Invalid != 3 {
		t.Fatalf("invalid = %d, want 3", res.Invalid)
	}
	if res.ZeroZero != 1 {
		t.Fatalf("zero-zero = %d, want 1", res.ZeroZero)
	}
	if res.MissingPairs != 1 {
		t.Fatalf("missing pairs = %d, want 1", res.MissingPairs)
	}
	want := []bool{false, true, true, true, false, false}
	for row, w := range want {
		got, err := out.Bool("invalid_coords", row)
		if err != nil {
			t.Fatalf("Bool: %v", err)
		}
		if got != w {
			t.Fatalf("row %d flag = %v, want %v", row, got, w)
		}
	}
	if out.Len() != tbl.Len() {
		t.Fatalf("validator removed records: %d -> %d", tbl.Len(), out.Len())
	}
}

func TestValidateCoordinatesSchemaError(t *testing.T) {
	tbl := buildTable(t, []string{"lat"}, [][]string{{"1"}},
		table.ColumnSpec{Name: "lat", Kind: table.Numeric})
	if _, _, err := ValidateCoordinates(tbl, SpatialSpec{Lat: "lat", Lng: "lng"}); err == nil {
		t.Fatal("expected error for missing longitude column")
	}
}
