// Package config loads the cleaning recipe: which columns to treat how,
// stage thresholds, and output paths. Precedence: flags > env (PALEOSIEVE_*)
// > recipe file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/paleosieve/paleosieve-cli/internal/clean"
	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// Column declares one column's kind and, for categoricals, its valid codes.
type Column struct {
	Name   string   `mapstructure:"name" yaml:"name"`
	Kind   string   `mapstructure:"kind" yaml:"kind"`
	Domain []string `mapstructure:"domain" yaml:"domain,omitempty"`
}

// OutlierConfig configures the grouped outlier stage.
type OutlierConfig struct {
	Value         string   `mapstructure:"value" yaml:"value"`
	Group         string   `mapstructure:"group" yaml:"group"`
	Fence         float64  `mapstructure:"fence" yaml:"fence"`
	MinGroup      int      `mapstructure:"min_group" yaml:"min_group"`
	Exclude       []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
	ExcludeColumn string   `mapstructure:"exclude_column" yaml:"exclude_column,omitempty"`
	Flag          string   `mapstructure:"flag" yaml:"flag,omitempty"`
}

// ConsistencyConfig configures name-variant detection and shape checks.
type ConsistencyConfig struct {
	Column    string  `mapstructure:"column" yaml:"column"`
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	Forbidden string  `mapstructure:"forbidden" yaml:"forbidden,omitempty"`
	MinTokens int     `mapstructure:"min_tokens" yaml:"min_tokens,omitempty"`
	MaxTokens int     `mapstructure:"max_tokens" yaml:"max_tokens,omitempty"`
}

// DedupeConfig configures duplicate handling.
type DedupeConfig struct {
	Keys []string `mapstructure:"keys" yaml:"keys"`
	// Mode is "exact" (remove, first wins) or "flag" (annotate only).
	Mode string `mapstructure:"mode" yaml:"mode"`
	Flag string `mapstructure:"flag" yaml:"flag,omitempty"`
}

// SpatialConfig names the coordinate columns.
type SpatialConfig struct {
	Lat  string `mapstructure:"lat" yaml:"lat"`
	Lng  string `mapstructure:"lng" yaml:"lng"`
	Flag string `mapstructure:"flag" yaml:"flag,omitempty"`
}

// IntervalConfig is one custom bin of an interval scale.
type IntervalConfig struct {
	Name    string  `mapstructure:"name" yaml:"name"`
	Older   float64 `mapstructure:"older" yaml:"older"`
	Younger float64 `mapstructure:"younger" yaml:"younger"`
}

// BinsConfig configures time-bin assignment. An empty Scale means the
// built-in Cenozoic epoch scale.
type BinsConfig struct {
	Older   string           `mapstructure:"older" yaml:"older"`
	Younger string           `mapstructure:"younger" yaml:"younger"`
	Column  string           `mapstructure:"column" yaml:"column,omitempty"`
	Scale   []IntervalConfig `mapstructure:"scale" yaml:"scale,omitempty"`
}

// OutputConfig names the cleaned export and provenance files. Both default
// to names derived from the input path when empty.
type OutputConfig struct {
	Path       string `mapstructure:"path" yaml:"path,omitempty"`
	Provenance string `mapstructure:"provenance" yaml:"provenance,omitempty"`
}

// Recipe is the full cleaning configuration for one export shape.
type Recipe struct {
	Delimiter      string   `mapstructure:"delimiter" yaml:"delimiter"`
	HeaderLines    int      `mapstructure:"header_lines" yaml:"header_lines"`
	MissingMarkers []string `mapstructure:"missing_markers" yaml:"missing_markers"`
	// Reconcile lists semantic names of headers the export duplicates;
	// each is verified identical and collapsed after load.
	Reconcile []string `mapstructure:"reconcile" yaml:"reconcile,omitempty"`
	Columns   []Column `mapstructure:"columns" yaml:"columns,omitempty"`

	// Completeness maps target column name to policy (drop|keep|report).
	Completeness map[string]string `mapstructure:"completeness" yaml:"completeness,omitempty"`

	Outliers    OutlierConfig     `mapstructure:"outliers" yaml:"outliers,omitempty"`
	Consistency ConsistencyConfig `mapstructure:"consistency" yaml:"consistency,omitempty"`
	Dedupe      DedupeConfig      `mapstructure:"dedupe" yaml:"dedupe,omitempty"`
	Spatial     SpatialConfig     `mapstructure:"spatial" yaml:"spatial,omitempty"`
	Bins        BinsConfig        `mapstructure:"bins" yaml:"bins,omitempty"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output,omitempty"`
}

// Load loads the recipe from file, env, and defaults.
func Load(cfgFile string) (*Recipe, error) {
	v := viper.New()
	v.SetEnvPrefix("PALEOSIEVE")
	v.AutomaticEnv()

	v.SetDefault("delimiter", ",")
	v.SetDefault("header_lines", 0)
	v.SetDefault("missing_markers", []string{"NA"})
	v.SetDefault("outliers.fence", 1.5)
	v.SetDefault("outliers.min_group", 4)
	v.SetDefault("consistency.threshold", 0.1)
	v.SetDefault("dedupe.mode", "exact")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read recipe: %w", err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("paleosieve")
		v.SetConfigType("yaml")
		// optional read; defaults alone are a usable recipe
		_ = v.ReadInConfig()
	}

	var r Recipe
	if err := v.Unmarshal(&r); err != nil {
		return nil, fmt.Errorf("unmarshal recipe: %w", err)
	}
	return &r, nil
}

// Save writes the recipe to path as YAML.
func Save(r *Recipe, path string) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal recipe: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir recipe dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write recipe: %w", err)
	}
	return nil
}

// DelimiterRune parses the configured delimiter.
func (r *Recipe) DelimiterRune() (rune, error) {
	switch r.Delimiter {
	case "", ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter %q (use ','|';'|'tab')", r.Delimiter)
	}
}

// Schema builds the table schema from the declared columns.
func (r *Recipe) Schema() *table.Schema {
	specs := make([]table.ColumnSpec, 0, len(r.Columns))
	for _, c := range r.Columns {
		specs = append(specs, table.ColumnSpec{Name: c.Name, Kind: table.Kind(c.Kind), Domain: c.Domain})
	}
	return table.NewSchema(specs...)
}

// CompletenessSpec converts the recipe's completeness section.
func (r *Recipe) CompletenessSpec() clean.CompletenessSpec {
	policies := make(map[string]clean.Policy, len(r.Completeness))
	for col, p := range r.Completeness {
		policies[col] = clean.Policy(p)
	}
	return clean.CompletenessSpec{Policies: policies, Markers: r.MissingMarkers}
}

// OutlierSpec converts the recipe's outliers section.
func (r *Recipe) OutlierSpec() clean.OutlierSpec {
	return clean.OutlierSpec{
		Value:         r.Outliers.Value,
		Group:         r.Outliers.Group,
		Fence:         r.Outliers.Fence,
		MinGroup:      r.Outliers.MinGroup,
		Exclude:       r.Outliers.Exclude,
		ExcludeColumn: r.Outliers.ExcludeColumn,
		FlagColumn:    r.Outliers.Flag,
	}
}

// BinSpec converts the recipe's bins section, falling back to the built-in
// epoch scale when no custom scale is declared.
func (r *Recipe) BinSpec() clean.BinSpec {
	scale := clean.CenozoicEpochs()
	if len(r.Bins.Scale) > 0 {
		scale = clean.IntervalScale{Name: "custom"}
		for _, iv := range r.Bins.Scale {
			scale.Intervals = append(scale.Intervals, clean.Interval{Name: iv.Name, Older: iv.Older, Younger: iv.Younger})
		}
	}
	return clean.BinSpec{Older: r.Bins.Older, Younger: r.Bins.Younger, Scale: scale, Column: r.Bins.Column}
}

// SpatialSpec converts the recipe's spatial section.
func (r *Recipe) SpatialSpec() clean.SpatialSpec {
	return clean.SpatialSpec{Lat: r.Spatial.Lat, Lng: r.Spatial.Lng, FlagColumn: r.Spatial.Flag}
}

// ShapeRules converts the consistency section's shape constraints.
func (r *Recipe) ShapeRules() []clean.ShapeRule {
	c := r.Consistency
	if c.Column == "" || (c.Forbidden == "" && c.MinTokens == 0 && c.MaxTokens == 0) {
		return nil
	}
	return []clean.ShapeRule{{
		Column:    c.Column,
		Forbidden: c.Forbidden,
		MinTokens: c.MinTokens,
		MaxTokens: c.MaxTokens,
	}}
}
