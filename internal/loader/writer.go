package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/paleosieve/paleosieve-cli/internal/table"
	"github.com/paleosieve/paleosieve-cli/internal/utils"
)

// WriteCSV writes the table (raw columns plus any derived flag columns) as
// a delimited file with a single header row. The write is atomic: a temp
// file renamed into place.
func WriteCSV(t *table.Table, path string, delim rune) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if delim != 0 {
		w.Comma = delim
	}
	if err := w.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for row := 0; row < t.Len(); row++ {
		if err := w.Write(t.Row(row)); err != nil {
			return fmt.Errorf("write row %d: %w", row+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
