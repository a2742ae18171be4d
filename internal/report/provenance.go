// Package report renders the provenance trail of a cleaning run and small
// exploration summaries (frequency tables).
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/paleosieve/paleosieve-cli/internal/clean"
	"github.com/paleosieve/paleosieve-cli/internal/utils"
)

// Provenance records where the data came from and what each stage did to
// the record count, so the cleaned output is auditable.
type Provenance struct {
	RunID           string             `yaml:"run_id"`
	Source          string             `yaml:"source"`
	GeneratedAt     time.Time          `yaml:"generated_at"`
	DeclaredRecords int                `yaml:"declared_records"`
	LoadedRecords   int                `yaml:"loaded_records"`
	FinalRecords    int                `yaml:"final_records"`
	Stages          []clean.StageTrace `yaml:"stages,omitempty"`
	Notes           []string           `yaml:"notes,omitempty"`
}

// NewProvenance starts a provenance trail for one source file.
func NewProvenance(source string, declared, loaded int) *Provenance {
	return &Provenance{
		RunID:           uuid.NewString(),
		Source:          source,
		GeneratedAt:     time.Now().UTC(),
		DeclaredRecords: declared,
		LoadedRecords:   loaded,
		FinalRecords:    loaded,
	}
}

// AddStages appends the pipeline's stage traces and updates the final
// record count.
func (p *Provenance) AddStages(traces []clean.StageTrace) {
	p.Stages = append(p.Stages, traces...)
	if n := len(p.Stages); n > 0 {
		p.FinalRecords = p.Stages[n-1].RowsOut
	}
}

// AddNote appends a free-form note (e.g. variant clusters found).
func (p *Provenance) AddNote(format string, args ...any) {
	p.Notes = append(p.Notes, fmt.Sprintf(format, args...))
}

// YAML renders the trail as a YAML document.
func (p *Provenance) YAML() ([]byte, error) {
	b, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal provenance: %w", err)
	}
	return b, nil
}

// Save writes the YAML trail atomically.
func (p *Provenance) Save(path string) error {
	b, err := p.YAML()
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

// Text renders a compact human-readable summary.
func (p *Provenance) Text() string {
	var b strings.Builder
	b.WriteString("[PROVENANCE]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", p.RunID))
	b.WriteString(fmt.Sprintf("Source: %s\n", p.Source))
	if p.DeclaredRecords >= 0 && p.DeclaredRecords != p.LoadedRecords {
		b.WriteString(fmt.Sprintf("Records: %d loaded (export declares %d)\n", p.LoadedRecords, p.DeclaredRecords))
	} else {
		b.WriteString(fmt.Sprintf("Records: %d loaded\n", p.LoadedRecords))
	}
	if len(p.Stages) > 0 {
		b.WriteString("\n[STAGES]\n")
		for _, s := range p.Stages {
			line := fmt.Sprintf("- %s: %d -> %d", s.Name, s.RowsIn, s.RowsOut)
			if s.Note != "" {
				line += " (" + s.Note + ")"
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString(fmt.Sprintf("\nFinal: %d records\n", p.FinalRecords))
	if len(p.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range p.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}
