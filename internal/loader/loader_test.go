package loader

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

var exportRows = []string{
	`"Data Provider","The Paleobiology Database"`,
	`"Data License","CC0"`,
	`"Access Time","Mon 2026-08-24 09:15:02 GMT"`,
	`"Records Found","3"`,
	`occurrence_no,accepted_name,cc,max_ma,min_ma,cc`,
	`901,"Crocodylus acer",US,56,47.8,US`,
	`902,Borealosuchus,US,61.6,56,US`,
	`903,"Crocodylus acer",EG,37.8,33.9`,
}

func writeExport(t *testing.T, rows []string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "occurrences.csv")
	if err := os.WriteFile(p, []byte(strings.Join(rows, "\n")), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return p
}

func TestLoadExport(t *testing.T) {
	p := writeExport(t, exportRows)
	meta, tbl, err := Load(p, Options{HeaderLines: 4})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(meta.Fields) != 4 {
		t.Fatalf("metadata fields = %d, want 4", len(meta.Fields))
	}
	if v, ok := meta.Get("data license"); !ok || v != "CC0" {
		t.Fatalf("Get(data license) = %q, %v", v, ok)
	}
	if meta.DeclaredRecords != 3 {
		t.Fatalf("DeclaredRecords = %d, want 3", meta.DeclaredRecords)
	}
	if !meta.CheckRecordCount(tbl.Len()) {
		t.Fatalf("record count mismatch: declared %d, loaded %d", meta.DeclaredRecords, tbl.Len())
	}

	// The duplicated cc header is disambiguated positionally.
	want := []string{"occurrence_no", "accepted_name", "cc_3", "max_ma", "min_ma", "cc_6"}
	if !reflect.DeepEqual(tbl.ColumnNames(), want) {
		t.Fatalf("columns = %v, want %v", tbl.ColumnNames(), want)
	}
	// The short last row was padded.
	if got, _ := tbl.Cell("cc_6", 2); got != "" {
		t.Fatalf("padded cell = %q, want empty", got)
	}
}

func TestLoadBadMetadataRow(t *testing.T) {
	rows := append([]string{}, exportRows...)
	rows[1] = `"Data License","CC0","extra"`
	p := writeExport(t, rows)
	_, _, err := Load(p, Options{HeaderLines: 4})
	var fe *table.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if fe.Line != 2 {
		t.Fatalf("FormatError line = %d, want 2", fe.Line)
	}
}

func TestLoadTruncatedMetadataBlock(t *testing.T) {
	p := writeExport(t, exportRows[:2])
	_, _, err := Load(p, Options{HeaderLines: 4})
	var fe *table.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestLoadMissingHeaderRow(t *testing.T) {
	p := writeExport(t, exportRows[:4])
	_, _, err := Load(p, Options{HeaderLines: 4})
	var fe *table.FormatError
	if !errors.As(err, &fe) || !strings.Contains(fe.Msg, "header") {
		t.Fatalf("expected header FormatError, got %v", err)
	}
}

func TestLoadRejectsWideRow(t *testing.T) {
	rows := append([]string{}, exportRows...)
	rows = append(rows, `904,Extra,US,10,5,US,surplus`)
	p := writeExport(t, rows)
	_, _, err := Load(p, Options{HeaderLines: 4})
	var fe *table.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError for wide row, got %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	p := writeExport(t, exportRows)
	_, tbl, err := Load(p, Options{HeaderLines: 4})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := tbl.AddFlag("is_outlier", []bool{false, true, false}); err != nil {
		t.Fatalf("AddFlag: %v", err)
	}
	out := filepath.Join(t.TempDir(), "cleaned.csv")
	if err := WriteCSV(tbl, out, ','); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	_, back, err := Load(out, Options{HeaderLines: 0})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.Len() != tbl.Len() {
		t.Fatalf("reloaded %d rows, want %d", back.Len(), tbl.Len())
	}
	if got, _ := back.Cell("is_outlier", 1); got != "true" {
		t.Fatalf("flag column not written: got %q", got)
	}
}
