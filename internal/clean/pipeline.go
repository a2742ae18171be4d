package clean

import (
	"fmt"

	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// StageFunc is one cleaning step: it consumes a table value and returns a
// new one plus a short note for the provenance trail. It must not mutate
// its input.
type StageFunc func(*table.Table) (*table.Table, string, error)

// StageTrace records what one stage did to the record count.
type StageTrace struct {
	Name    string `yaml:"name"`
	RowsIn  int    `yaml:"rows_in"`
	RowsOut int    `yaml:"rows_out"`
	Note    string `yaml:"note,omitempty"`
}

// Pipeline chains stages explicitly. Each stage sees only the previous
// stage's output, so there is no hidden cross-stage coupling and the
// caller's input table is never touched.
type Pipeline struct {
	stages []struct {
		name string
		fn   StageFunc
	}
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{} }

// Then appends a named stage and returns the pipeline for chaining.
func (p *Pipeline) Then(name string, fn StageFunc) *Pipeline {
	p.stages = append(p.stages, struct {
		name string
		fn   StageFunc
	}{name, fn})
	return p
}

// Run executes the stages in order. On error the traces of the completed
// stages are returned alongside it; the input table is unchanged and no
// partial table is returned as if complete.
func (p *Pipeline) Run(t *table.Table) (*table.Table, []StageTrace, error) {
	cur := t
	traces := make([]StageTrace, 0, len(p.stages))
	for _, st := range p.stages {
		next, note, err := st.fn(cur)
		if err != nil {
			return nil, traces, fmt.Errorf("stage %s: %w", st.name, err)
		}
		traces = append(traces, StageTrace{Name: st.name, RowsIn: cur.Len(), RowsOut: next.Len(), Note: note})
		cur = next
	}
	return cur, traces, nil
}
