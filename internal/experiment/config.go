// Package experiment orchestrates sparse-view training runs: build a
// subset, train the external Gaussian Splatting model on it, render the
// held-out views, and collect metrics.
package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/splatbench/sparseview/internal/subset"
)

// Config is one experiment definition, loaded from YAML.
type Config struct {
	Name     string         `yaml:"name"`
	Subset   SubsetConfig   `yaml:"subset"`
	Training TrainingConfig `yaml:"training"`
	Render   *RenderConfig  `yaml:"render"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SubsetConfig configures the sparse-view subset for a run.
type SubsetConfig struct {
	Name        string           `yaml:"name"`
	RawDir      string           `yaml:"raw_dir"`
	OutputDir   string           `yaml:"output_dir"`
	ViewCount   int              `yaml:"view_count"`
	Extension   string           `yaml:"extension"`
	FullTestSet *bool            `yaml:"full_test_set"`
	Selection   subset.Selection `yaml:"selection"`
}

// TrainingConfig configures the external training invocation.
type TrainingConfig struct {
	ModelDir string         `yaml:"model_dir"`
	Args     map[string]any `yaml:"args"`
}

// RenderConfig configures rendering of saved checkpoints.
type RenderConfig struct {
	Iterations []int          `yaml:"iterations"`
	Args       map[string]any `yaml:"args"`
}

// MetricsConfig configures metric computation and collection.
type MetricsConfig struct {
	CSV  string         `yaml:"csv"`
	Args map[string]any `yaml:"args"`
}

// Label returns the experiment's display label: the explicit name, the
// subset name, or "<count>_views".
func (c *Config) Label() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Subset.Name != "" {
		return c.Subset.Name
	}
	count := c.Subset.ViewCount
	if count == 0 {
		count = c.Subset.Selection.ViewCount
	}
	if count == 0 {
		return "auto_views"
	}
	return fmt.Sprintf("%d_views", count)
}

// ViewCount returns the configured view count from either the subset
// section or its nested selection.
func (c *Config) ViewCount() int {
	if c.Subset.ViewCount != 0 {
		return c.Subset.ViewCount
	}
	return c.Subset.Selection.ViewCount
}

// LoadConfig reads one experiment definition from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse experiment config %s: %w", path, err)
	}
	return &cfg, nil
}

// DiscoverConfigs returns the experiment config files under dir matching
// the views_*.yaml convention, sorted by name.
func DiscoverConfigs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "views_*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan config dir: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// RenderIterations returns the iterations to render: the render section
// when present, otherwise whatever iterations the training args saved
// checkpoints for.
func (c *Config) RenderIterations() []int {
	if c.Render != nil && len(c.Render.Iterations) > 0 {
		return normalizeIterations(c.Render.Iterations)
	}
	if raw, ok := c.Training.Args["iterations"]; ok {
		return normalizeIterations(anyToInts(raw))
	}
	return nil
}

// normalizeIterations sorts and deduplicates.
func normalizeIterations(iterations []int) []int {
	seen := make(map[int]bool, len(iterations))
	out := make([]int, 0, len(iterations))
	for _, it := range iterations {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	sort.Ints(out)
	return out
}

// anyToInts coerces YAML scalar-or-list values into an int slice.
func anyToInts(v any) []int {
	switch t := v.(type) {
	case int:
		return []int{t}
	case []int:
		return t
	case []any:
		out := make([]int, 0, len(t))
		for _, e := range t {
			if n, ok := e.(int); ok {
				out = append(out, n)
			}
		}
		return out
	default:
		return nil
	}
}
