package subset

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/splatbench/sparseview/internal/fsutil"
	"github.com/splatbench/sparseview/internal/nerf"
	"github.com/splatbench/sparseview/internal/scenenorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDataset writes a small NeRF-synthetic dataset into the memory
// filesystem: 4 training frames plus 2 test frames with images.
func seedDataset(t *testing.T, fs *fsutil.MemoryFileSystem, rawDir string) {
	t.Helper()

	writeSplit := func(file, prefix string, count int, spread float64) {
		frames := make([]nerf.Frame, count)
		for i := range frames {
			frames[i] = nerf.Frame{
				FilePath: fmt.Sprintf("./%s/r_%d", prefix, i),
				Transform: [4][4]float64{
					{1, 0, 0, float64(i) * spread},
					{0, 1, 0, float64(i%2) * spread},
					{0, 0, 1, 0},
					{0, 0, 0, 1},
				},
			}
			imgPath := filepath.Join(rawDir, fmt.Sprintf("%s/r_%d.png", prefix, i))
			require.NoError(t, fs.WriteFile(imgPath, []byte("png"), 0o644))
		}
		angle, _ := json.Marshal(0.69)
		tr := nerf.Transforms{
			Frames: frames,
			Extra:  map[string]json.RawMessage{"camera_angle_x": angle},
		}
		data, err := json.Marshal(&tr)
		require.NoError(t, err)
		require.NoError(t, fs.WriteFile(filepath.Join(rawDir, file), data, 0o644))
	}

	writeSplit(nerf.TrainFile, "train", 4, 2.0)
	writeSplit(nerf.TestFile, "test", 2, 1.0)
}

func loadSplit(t *testing.T, fs fsutil.FileSystem, path string) *nerf.Transforms {
	t.Helper()
	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	var tr nerf.Transforms
	require.NoError(t, json.Unmarshal(data, &tr))
	return &tr
}

func TestBuilderCreate_FiltersTrainKeepsTest(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	seedDataset(t, fs, "raw")

	summary, err := NewBuilder(fs).Create("raw", "splits/2_views", DefaultOptions(Selection{ViewCount: 2}))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ViewCount)
	assert.Equal(t, 2, summary.Files[nerf.TrainFile])
	// Held-out set keeps every frame so metrics stay comparable.
	assert.Equal(t, 2, summary.Files[nerf.TestFile])

	train := loadSplit(t, fs, "splits/2_views/"+nerf.TrainFile)
	assert.Len(t, train.Frames, 2)
	assert.NotZero(t, train.CameraAngleX(), "intrinsics must survive subsetting")

	test := loadSplit(t, fs, "splits/2_views/"+nerf.TestFile)
	assert.Len(t, test.Frames, 2)
}

func TestBuilderCreate_CopiesSelectedImages(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	seedDataset(t, fs, "raw")

	summary, err := NewBuilder(fs).Create("raw", "out", DefaultOptions(Selection{ViewCount: 2}))
	require.NoError(t, err)

	for _, name := range summary.SelectedViews {
		assert.True(t, fs.Exists("out/train/"+name+".png"), "missing image for %s", name)
	}
	// Full test split images come along too.
	assert.True(t, fs.Exists("out/test/r_0.png"))
	assert.True(t, fs.Exists("out/test/r_1.png"))
}

func TestBuilderCreate_WritesReferenceNormalization(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	seedDataset(t, fs, "raw")

	summary, err := NewBuilder(fs).Create("raw", "out", DefaultOptions(Selection{ViewCount: 2}))
	require.NoError(t, err)
	require.NotNil(t, summary.Normalization)

	data, err := fs.ReadFile(filepath.Join("out", scenenorm.DefaultFileName))
	require.NoError(t, err)
	var rec scenenorm.Record
	require.NoError(t, json.Unmarshal(data, &rec))

	// The record must describe the FULL training camera set, not the
	// 2-view selection: identical regardless of which views were chosen.
	full := loadSplit(t, fs, "raw/"+nerf.TrainFile)
	want, err := scenenorm.Compute(full.Positions())
	require.NoError(t, err)
	assert.Equal(t, want, rec)
}

func TestBuilderCreate_FilteredTestSet(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	seedDataset(t, fs, "raw")

	opts := DefaultOptions(Selection{Names: []string{"r_0"}})
	opts.FullTestSet = false
	opts.WriteNormalization = false

	summary, err := NewBuilder(fs).Create("raw", "out", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files[nerf.TrainFile])
	// Only the selected name survives in the test split too.
	assert.Equal(t, 1, summary.Files[nerf.TestFile])
}

func TestBuilderCreate_WipesExistingSubset(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	seedDataset(t, fs, "raw")
	require.NoError(t, fs.WriteFile("out/stale.txt", []byte("old"), 0o644))

	_, err := NewBuilder(fs).Create("raw", "out", DefaultOptions(Selection{ViewCount: 2}))
	require.NoError(t, err)
	assert.False(t, fs.Exists("out/stale.txt"), "stale files must be removed")
}

func TestBuilderCreate_MissingTrainFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	_, err := NewBuilder(fs).Create("empty", "out", DefaultOptions(Selection{ViewCount: 2}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "training transforms")
}
