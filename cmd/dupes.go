package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paleosieve/paleosieve-cli/internal/clean"
	"github.com/paleosieve/paleosieve-cli/internal/loader"
)

var dupKeys []string

var dupesCmd = &cobra.Command{
	Use:   "dupes <file>",
	Short: "List records sharing a key tuple, without removing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := recipe()
		keys := dupKeys
		if len(keys) == 0 {
			keys = r.Dedupe.Keys
		}
		if len(keys) == 0 {
			return fmt.Errorf("no key columns given (use --keys or the recipe's dedupe section)")
		}
		delim, err := r.DelimiterRune()
		if err != nil {
			return err
		}
		_, tbl, err := loader.Load(args[0], loader.Options{HeaderLines: r.HeaderLines, Delimiter: delim})
		if err != nil {
			return err
		}
		flagged, flaggedCount, err := clean.FlagDuplicates(tbl, keys, "is_duplicate")
		if err != nil {
			return err
		}
		if flaggedCount == 0 {
			fmt.Printf("No duplicates on (%s) among %d records\n", strings.Join(keys, ", "), tbl.Len())
			return nil
		}
		fmt.Printf("[DUPLICATES on (%s)] %d of %d records\n", strings.Join(keys, ", "), flaggedCount, tbl.Len())
		for row := 0; row < flagged.Len(); row++ {
			isDup, err := flagged.Bool("is_duplicate", row)
			if err != nil {
				return err
			}
			if !isDup {
				continue
			}
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i], _ = flagged.Cell(k, row)
			}
			fmt.Printf("- row %d: %s\n", row+1, strings.Join(parts, " / "))
		}
		return nil
	},
}

func init() {
	dupesCmd.Flags().StringSliceVar(&dupKeys, "keys", nil, "key columns defining a duplicate (overrides recipe)")
	rootCmd.AddCommand(dupesCmd)
}
