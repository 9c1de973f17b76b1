package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splatbench/sparseview/internal/subset"
)

const sampleConfig = `
name: lego_3_views
subset:
  view_count: 3
  extension: .png
  selection:
    strategy: uniform
training:
  args:
    iterations: [7000, 30000]
    eval: true
metrics:
  csv: results/metrics.csv
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views_3.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "lego_3_views", cfg.Name)
	assert.Equal(t, 3, cfg.Subset.ViewCount)
	assert.Equal(t, "results/metrics.csv", cfg.Metrics.CSV)
	assert.Equal(t, ".png", cfg.Subset.Extension)
}

func TestConfigLabel(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit name", Config{Name: "baseline"}, "baseline"},
		{"subset name", Config{Subset: SubsetConfig{Name: "narrow"}}, "narrow"},
		{"view count", Config{Subset: SubsetConfig{ViewCount: 5}}, "5_views"},
		{"selection count", Config{Subset: SubsetConfig{Selection: subset.Selection{ViewCount: 7}}}, "7_views"},
		{"nothing", Config{}, "auto_views"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Label())
		})
	}
}

func TestRenderIterations_FromTrainingArgs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views_3.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// No render section: fall back to the checkpoints training saves.
	got := cfg.RenderIterations()
	if diff := cmp.Diff([]int{7000, 30000}, got); diff != "" {
		t.Errorf("RenderIterations (-want +got):\n%s", diff)
	}
}

func TestRenderIterations_ExplicitSortedDedup(t *testing.T) {
	cfg := Config{Render: &RenderConfig{Iterations: []int{30000, 7000, 30000}}}
	got := cfg.RenderIterations()
	if diff := cmp.Diff([]int{7000, 30000}, got); diff != "" {
		t.Errorf("RenderIterations (-want +got):\n%s", diff)
	}
}

func TestDiscoverConfigs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"views_10.yaml", "views_3.yaml", "other.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("name: x"), 0o644))
	}

	got, err := DiscoverConfigs(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "views_10.yaml", filepath.Base(got[0]))
	assert.Equal(t, "views_3.yaml", filepath.Base(got[1]))
}
