package table

import "fmt"

// FormatError indicates a malformed input file: an unexpected metadata block
// shape, a ragged data row, or an unusable header.
type FormatError struct {
	Path string
	Line int // 1-based line within the file; 0 when not line-specific
	Msg  string
}

func (e *FormatError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("format error in %s (line %d): %s", e.Path, e.Line, e.Msg)
	case e.Path != "":
		return fmt.Sprintf("format error in %s: %s", e.Path, e.Msg)
	default:
		return fmt.Sprintf("format error: %s", e.Msg)
	}
}

// SchemaError indicates a requested column is absent, or has the wrong
// declared kind for the requested operation.
type SchemaError struct {
	Column string
	Op     string
	Msg    string
}

func (e *SchemaError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("schema error on column %q (%s): %s", e.Column, e.Op, e.Msg)
	}
	return fmt.Sprintf("schema error on column %q: %s", e.Column, e.Msg)
}

// ThresholdError indicates a configuration value outside its valid range.
type ThresholdError struct {
	Name  string
	Value float64
	Msg   string
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("invalid %s %g: %s", e.Name, e.Value, e.Msg)
}
