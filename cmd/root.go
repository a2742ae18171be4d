package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/paleosieve/paleosieve-cli/internal/config"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded recipe
	rec *cfgpkg.Recipe
)

var rootCmd = &cobra.Command{
	Use:   "paleosieve",
	Short: "paleosieve: clean fossil-occurrence exports",
	Long: `paleosieve runs a record-cleaning pipeline over delimited fossil-occurrence
exports: completeness filtering, time binning, coordinate validation, grouped
outlier flagging, name-variant detection, and deduplication. Each invocation
is a one-shot batch transformation driven by a YAML recipe.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadRecipe)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "recipe file (default is ./paleosieve.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadRecipe() {
	r, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fail later with context if they need it
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load recipe: %v\n", err)
		return
	}
	rec = r
}

// recipe returns the loaded recipe, or defaults when loading failed.
func recipe() *cfgpkg.Recipe {
	if rec == nil {
		return &cfgpkg.Recipe{Delimiter: ",", MissingMarkers: []string{"NA"}}
	}
	return rec
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
