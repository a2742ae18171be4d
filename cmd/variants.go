package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paleosieve/paleosieve-cli/internal/clean"
	"github.com/paleosieve/paleosieve-cli/internal/loader"
)

var (
	varColumn    string
	varThreshold float64
)

var variantsCmd = &cobra.Command{
	Use:   "variants <file>",
	Short: "List probable spelling variants in a text column",
	Long: `Variants compares every pair of distinct values in a text column and lists
the pairs whose normalized edit-distance dissimilarity falls below the
threshold, i.e. probable spellings of the same taxon or formation. Nothing is
merged; resolution is a human decision.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := recipe()
		column := varColumn
		if column == "" {
			column = r.Consistency.Column
		}
		if column == "" {
			return fmt.Errorf("no column given (use --column or the recipe's consistency section)")
		}
		threshold := varThreshold
		if !cmd.Flags().Changed("threshold") {
			threshold = r.Consistency.Threshold
		}
		delim, err := r.DelimiterRune()
		if err != nil {
			return err
		}
		_, tbl, err := loader.Load(args[0], loader.Options{HeaderLines: r.HeaderLines, Delimiter: delim})
		if err != nil {
			return err
		}
		pairs, clusters, err := clean.Variants(tbl, column, threshold)
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			fmt.Printf("No variant pairs in %s at threshold %g\n", column, threshold)
			return nil
		}
		fmt.Printf("[VARIANT PAIRS %s, threshold %g]\n", column, threshold)
		for _, p := range pairs {
			fmt.Printf("- %q ~ %q (dissimilarity %.3f)\n", p.A, p.B, p.Dissimilarity)
		}
		fmt.Println("\n[CLUSTERS]")
		for _, c := range clusters {
			fmt.Printf("- %s\n", strings.Join(c, " | "))
		}
		return nil
	},
}

func init() {
	variantsCmd.Flags().StringVar(&varColumn, "column", "", "text column to scan (overrides recipe)")
	variantsCmd.Flags().Float64Var(&varThreshold, "threshold", 0.1, "dissimilarity threshold in (0,1] (overrides recipe)")
	rootCmd.AddCommand(variantsCmd)
}
