package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/paleosieve/paleosieve-cli/internal/clean"
	cfgpkg "github.com/paleosieve/paleosieve-cli/internal/config"
	"github.com/paleosieve/paleosieve-cli/internal/loader"
	"github.com/paleosieve/paleosieve-cli/internal/report"
	"github.com/paleosieve/paleosieve-cli/internal/table"
)

var (
	cleanOutPath  string
	cleanProvPath string
	cleanPrint    bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file-or-glob>...",
	Short: "Run the full cleaning pipeline over one or more exports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var paths []string
		for _, pattern := range args {
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if len(matches) == 0 {
				// a literal path that exists but contains no meta chars
				if _, statErr := os.Stat(pattern); statErr == nil {
					matches = []string{pattern}
				} else {
					return fmt.Errorf("no files match %q", pattern)
				}
			}
			paths = append(paths, matches...)
		}
		if len(paths) > 1 && (cleanOutPath != "" || cleanProvPath != "") {
			return fmt.Errorf("--out/--provenance apply to a single input; got %d files", len(paths))
		}
		for _, p := range paths {
			if err := runClean(p, recipe()); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVar(&cleanOutPath, "out", "", "cleaned output path (default <input>_cleaned.csv)")
	cleanCmd.Flags().StringVar(&cleanProvPath, "provenance", "", "provenance output path (default <input>_provenance.yaml)")
	cleanCmd.Flags().BoolVar(&cleanPrint, "print", false, "print the provenance summary to stdout")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(path string, r *cfgpkg.Recipe) error {
	delim, err := r.DelimiterRune()
	if err != nil {
		return err
	}
	meta, tbl, err := loader.Load(path, loader.Options{HeaderLines: r.HeaderLines, Delimiter: delim})
	if err != nil {
		return err
	}
	for _, semantic := range r.Reconcile {
		if err := tbl.ReconcileDuplicates(semantic); err != nil {
			return err
		}
	}
	if err := r.Schema().Apply(tbl); err != nil {
		return err
	}
	if !meta.CheckRecordCount(tbl.Len()) {
		fmt.Fprintf(os.Stderr, "⚠ Warning: export declares %d records, loaded %d\n", meta.DeclaredRecords, tbl.Len())
	}
	debugf("loaded %s: %d records, %d columns\n", path, tbl.Len(), len(tbl.ColumnNames()))

	prov := report.NewProvenance(path, meta.DeclaredRecords, tbl.Len())
	out, traces, err := buildPipeline(r).Run(tbl)
	prov.AddStages(traces)
	if err != nil {
		return err
	}

	// Consistency checks detect, they never transform; their findings go
	// into the provenance notes for human review.
	if c := r.Consistency; c.Column != "" {
		pairs, clusters, err := clean.Variants(out, c.Column, c.Threshold)
		if err != nil {
			return err
		}
		prov.AddNote("%s: %d probable variant pairs in %d clusters at threshold %g", c.Column, len(pairs), len(clusters), c.Threshold)
		for _, cl := range clusters {
			prov.AddNote("variant cluster: %s", strings.Join(cl, " | "))
		}
	}
	if rules := r.ShapeRules(); len(rules) != 0 {
		violations, err := clean.CheckShape(out, rules)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			prov.AddNote("%s: %d values violate the shape rules", rules[0].Column, len(violations))
		}
	}

	outPath := cleanOutPath
	if outPath == "" {
		outPath = r.Output.Path
	}
	if outPath == "" {
		outPath = derivedPath(path, "_cleaned.csv")
	}
	if err := loader.WriteCSV(out, outPath, delim); err != nil {
		return err
	}
	provPath := cleanProvPath
	if provPath == "" {
		provPath = r.Output.Provenance
	}
	if provPath == "" {
		provPath = derivedPath(path, "_provenance.yaml")
	}
	if err := prov.Save(provPath); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ %s: %d -> %d records, cleaned export written to %s\n", filepath.Base(path), tbl.Len(), out.Len(), outPath)
	if cleanPrint {
		fmt.Println(prov.Text())
	}
	return nil
}

// buildPipeline assembles the stage chain the recipe asks for. Sections
// left empty in the recipe are skipped.
func buildPipeline(r *cfgpkg.Recipe) *clean.Pipeline {
	p := clean.NewPipeline()
	if len(r.Completeness) > 0 {
		spec := r.CompletenessSpec()
		p.Then("completeness", func(t *table.Table) (*table.Table, string, error) {
			out, res, err := clean.Completeness(t, spec)
			if err != nil {
				return nil, "", err
			}
			return out, fmt.Sprintf("dropped %d records missing required values", res.Dropped), nil
		})
	}
	if r.Bins.Older != "" && r.Bins.Younger != "" {
		spec := r.BinSpec()
		p.Then("time bins", func(t *table.Table) (*table.Table, string, error) {
			out, res, err := clean.AssignBins(t, spec)
			if err != nil {
				return nil, "", err
			}
			return out, fmt.Sprintf("%d assigned, %d unbinned", res.Assigned, res.Unbinned), nil
		})
	}
	if r.Spatial.Lat != "" && r.Spatial.Lng != "" {
		spec := r.SpatialSpec()
		p.Then("coordinates", func(t *table.Table) (*table.Table, string, error) {
			out, res, err := clean.ValidateCoordinates(t, spec)
			if err != nil {
				return nil, "", err
			}
			return out, fmt.Sprintf("%d invalid, %d missing pairs", res.Invalid, res.MissingPairs), nil
		})
	}
	if r.Outliers.Value != "" && r.Outliers.Group != "" {
		spec := r.OutlierSpec()
		p.Then("outliers", func(t *table.Table) (*table.Table, string, error) {
			out, res, err := clean.Outliers(t, spec)
			if err != nil {
				return nil, "", err
			}
			return out, fmt.Sprintf("flagged %d, skipped %d small groups", res.Flagged, len(res.Skipped)), nil
		})
	}
	if len(r.Dedupe.Keys) > 0 {
		keys := r.Dedupe.Keys
		switch r.Dedupe.Mode {
		case "flag":
			flagCol := r.Dedupe.Flag
			p.Then("duplicates", func(t *table.Table) (*table.Table, string, error) {
				out, flagged, err := clean.FlagDuplicates(t, keys, flagCol)
				if err != nil {
					return nil, "", err
				}
				return out, fmt.Sprintf("flagged %d records sharing a key", flagged), nil
			})
		default:
			p.Then("duplicates", func(t *table.Table) (*table.Table, string, error) {
				out, removed, err := clean.DedupeExact(t, keys)
				if err != nil {
					return nil, "", err
				}
				return out, fmt.Sprintf("removed %d exact duplicates", removed), nil
			})
		}
	}
	return p
}

func derivedPath(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix
}
