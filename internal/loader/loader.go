// Package loader reads a delimited occurrence export: a small key/value
// metadata block (license, source, access timestamp, declared record count)
// followed by a standard header row and data rows.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// Options controls loading.
type Options struct {
	// HeaderLines is the number of metadata key/value rows before the
	// column header. Zero means no metadata block.
	HeaderLines int
	// Delimiter for the file. If 0, auto-detects from the extension
	// (.tsv means tab, everything else comma).
	Delimiter rune
}

// Field is one metadata key/value row, in file order.
type Field struct {
	Key   string
	Value string
}

// Metadata is the block of key/value rows prepended to the data table. It
// is never merged into the table itself.
type Metadata struct {
	Fields []Field
	// DeclaredRecords is the record count the export claims to contain,
	// parsed from a "Records ..." field; -1 if the block declares none.
	DeclaredRecords int
}

// Get returns the value for key, matching case-insensitively.
func (m *Metadata) Get(key string) (string, bool) {
	for _, f := range m.Fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// CheckRecordCount reports whether the declared record count matches the
// actual number of loaded records. A block with no declared count matches
// anything.
func (m *Metadata) CheckRecordCount(actual int) bool {
	return m.DeclaredRecords < 0 || m.DeclaredRecords == actual
}

// Load reads path and returns the metadata block and the data table.
// Duplicate column headers are disambiguated by appending their 1-based
// position; see Table.ReconcileDuplicates for resolving them.
func Load(path string, opt Options) (*Metadata, *table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	meta := &Metadata{DeclaredRecords: -1}
	for i := 0; i < opt.HeaderLines; i++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil, &table.FormatError{Path: path, Line: i + 1, Msg: fmt.Sprintf("file ended inside metadata block (%d of %d rows)", i, opt.HeaderLines)}
			}
			return nil, nil, fmt.Errorf("read metadata row %d: %w", i+1, err)
		}
		if len(rec) != 2 {
			return nil, nil, &table.FormatError{Path: path, Line: i + 1, Msg: fmt.Sprintf("metadata row has %d fields, want key/value", len(rec))}
		}
		fld := Field{Key: strings.TrimSpace(rec[0]), Value: strings.TrimSpace(rec[1])}
		meta.Fields = append(meta.Fields, fld)
		if meta.DeclaredRecords < 0 && strings.Contains(strings.ToLower(fld.Key), "records") {
			if n, err := strconv.Atoi(strings.TrimSpace(fld.Value)); err == nil {
				meta.DeclaredRecords = n
			}
		}
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, &table.FormatError{Path: path, Line: opt.HeaderLines + 1, Msg: "missing column header row"}
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	names := disambiguate(header)
	t, err := table.New(names)
	if err != nil {
		return nil, nil, err
	}
	ncol := len(names)

	line := opt.HeaderLines + 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", t.Len()+1, err)
		}
		line++
		if len(rec) > ncol {
			return nil, nil, &table.FormatError{Path: path, Line: line, Msg: fmt.Sprintf("row has %d fields, header has %d", len(rec), ncol)}
		}
		if len(rec) < ncol {
			padded := make([]string, ncol)
			copy(padded, rec)
			rec = padded
		}
		if err := t.AppendRow(rec); err != nil {
			return nil, nil, err
		}
	}
	return meta, t, nil
}

// disambiguate renames every occurrence of a duplicated header to
// name_<position>, so neither copy masquerades as the semantic column.
func disambiguate(header []string) []string {
	counts := make(map[string]int, len(header))
	for _, h := range header {
		counts[strings.TrimSpace(h)]++
	}
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if counts[name] > 1 {
			name = fmt.Sprintf("%s_%d", name, i+1)
		}
		out[i] = name
	}
	return out
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
