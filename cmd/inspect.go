package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paleosieve/paleosieve-cli/internal/clean"
	"github.com/paleosieve/paleosieve-cli/internal/loader"
	"github.com/paleosieve/paleosieve-cli/internal/report"
)

var inspectBy string

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show an export's metadata block, missing-value counts, and frequencies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		r := recipe()
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

		fmt.Println("[EXPORT]")
		fmt.Printf("File: %s\n", path)
		for _, f := range meta.Fields {
			fmt.Printf("%s: %s\n", f.Key, f.Value)
		}
		if meta.CheckRecordCount(tbl.Len()) {
			fmt.Printf("Records: %d (matches declaration)\n", tbl.Len())
		} else {
			fmt.Printf("Records: %d (export declares %d)\n", tbl.Len(), meta.DeclaredRecords)
		}
		fmt.Printf("Columns: %d\n", len(tbl.ColumnNames()))

		if len(r.Completeness) > 0 {
			// Report-only pass: same detection rules, no filtering.
			spec := r.CompletenessSpec()
			for col := range spec.Policies {
				spec.Policies[col] = clean.PolicyReport
			}
			_, res, err := clean.Completeness(tbl, spec)
			if err != nil {
				return err
			}
			fmt.Println("\n[MISSING]")
			for _, c := range res.Counts {
				line := fmt.Sprintf("- %s: %d missing", c.Column, c.Before)
				if c.Suspect > 0 {
					line += fmt.Sprintf(", %d marker strings kept (no declared domain)", c.Suspect)
				}
				fmt.Println(line)
			}
		}

		if inspectBy != "" {
			rows, err := report.Frequency(tbl, inspectBy)
			if err != nil {
				return err
			}
			fmt.Printf("\n[FREQUENCY %s]\n", inspectBy)
			fmt.Print(report.FormatFrequency(rows))
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectBy, "by", "", "print a frequency table for this column")
	rootCmd.AddCommand(inspectCmd)
}
