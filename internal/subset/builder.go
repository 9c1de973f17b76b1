package subset

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	"github.com/splatbench/sparseview/internal/fsutil"
	"github.com/splatbench/sparseview/internal/nerf"
	"github.com/splatbench/sparseview/internal/scenenorm"
)

// Options configures a subset build.
type Options struct {
	Selection   Selection
	Extension   string // image extension, default ".png"
	FullTestSet bool   // keep full val/test frame lists (default behavior)

	// WriteNormalization persists the normalization of the FULL training
	// camera set into the subset, so every sparse run normalizes against
	// the same reference frame instead of its own handful of cameras.
	WriteNormalization bool
}

// DefaultOptions returns the options used by the experiment pipeline:
// full held-out sets and a shared reference normalization.
func DefaultOptions(sel Selection) Options {
	return Options{
		Selection:          sel,
		Extension:          ".png",
		FullTestSet:        true,
		WriteNormalization: true,
	}
}

// Summary reports what a subset build produced.
type Summary struct {
	SubsetDir     string            `json:"subset_dir"`
	ViewCount     int               `json:"view_count"`
	SelectedViews []string          `json:"selected_views"`
	Strategy      string            `json:"strategy"`
	Files         map[string]int    `json:"files"` // transforms file name -> frame count
	Normalization *scenenorm.Record `json:"normalization,omitempty"`
}

// Builder creates sparse-view dataset subsets.
type Builder struct {
	fs fsutil.FileSystem
}

// NewBuilder creates a Builder over the given filesystem.
func NewBuilder(fs fsutil.FileSystem) *Builder {
	return &Builder{fs: fs}
}

// Create builds a subset of rawDir at subsetDir. The subset directory is
// wiped and recreated. Training frames are filtered to the selection;
// val/test frames keep the full lists unless opts.FullTestSet is false.
// Referenced images are copied with the configured extension.
func (b *Builder) Create(rawDir, subsetDir string, opts Options) (*Summary, error) {
	if opts.Extension == "" {
		opts.Extension = ".png"
	}

	if b.fs.Exists(subsetDir) {
		if err := b.fs.RemoveAll(subsetDir); err != nil {
			return nil, fmt.Errorf("clear subset dir: %w", err)
		}
	}
	if err := b.fs.MkdirAll(subsetDir, 0o755); err != nil {
		return nil, fmt.Errorf("create subset dir: %w", err)
	}

	trainPath := filepath.Join(rawDir, nerf.TrainFile)
	train, err := b.loadTransforms(trainPath)
	if err != nil {
		return nil, fmt.Errorf("load training transforms: %w", err)
	}

	selectedViews := ChooseViews(train.Frames, opts.Selection)
	selectedSet := make(map[string]bool, len(selectedViews))
	for _, name := range selectedViews {
		selectedSet[name] = true
	}

	splits := []string{nerf.TrainFile}
	for _, name := range []string{nerf.ValFile, nerf.TestFile} {
		if b.fs.Exists(filepath.Join(rawDir, name)) {
			splits = append(splits, name)
		}
	}

	summary := &Summary{
		SubsetDir:     subsetDir,
		ViewCount:     len(selectedViews),
		SelectedViews: selectedViews,
		Strategy:      opts.Selection.Strategy,
		Files:         make(map[string]int, len(splits)),
	}

	var framesToCopy []nerf.Frame
	for _, name := range splits {
		var t *nerf.Transforms
		if name == nerf.TrainFile {
			t = train
		} else {
			if t, err = b.loadTransforms(filepath.Join(rawDir, name)); err != nil {
				return nil, fmt.Errorf("load %s: %w", name, err)
			}
		}

		isTrain := name == nerf.TrainFile
		if isTrain || !opts.FullTestSet {
			t = t.FilterFrames(selectedSet)
		}

		if err := b.writeTransforms(t, filepath.Join(subsetDir, name)); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		summary.Files[name] = len(t.Frames)
		framesToCopy = append(framesToCopy, t.Frames...)
	}

	if err := b.copyImages(framesToCopy, rawDir, subsetDir, opts.Extension); err != nil {
		return nil, err
	}

	if opts.WriteNormalization {
		// Reference set is the full training camera set, not the sparse
		// selection; that is the whole point of persisting it.
		rec, err := scenenorm.ComputeValidated(train.Positions())
		if err != nil {
			return nil, fmt.Errorf("compute reference normalization: %w", err)
		}
		normPath := filepath.Join(subsetDir, scenenorm.DefaultFileName)
		data, err := json.MarshalIndent(rec, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("marshal normalization: %w", err)
		}
		if err := b.fs.WriteFile(normPath, append(data, '\n'), 0o644); err != nil {
			return nil, fmt.Errorf("write normalization: %w", err)
		}
		summary.Normalization = &rec
		log.Printf("subset: wrote reference normalization (%d cameras, radius=%.4f) to %s",
			len(train.Frames), rec.Radius, normPath)
	}

	return summary, nil
}

// copyImages copies each frame's image into the subset, skipping paths
// already copied (train/val/test can reference overlapping frames).
func (b *Builder) copyImages(frames []nerf.Frame, rawDir, subsetDir, ext string) error {
	copied := make(map[string]bool, len(frames))
	for _, f := range frames {
		rel := f.RelPath(ext)
		dst := filepath.Join(subsetDir, rel)
		if copied[dst] {
			continue
		}
		if err := b.fs.CopyFile(filepath.Join(rawDir, rel), dst); err != nil {
			return fmt.Errorf("copy image %s: %w", rel, err)
		}
		copied[dst] = true
	}
	return nil
}

func (b *Builder) loadTransforms(path string) (*nerf.Transforms, error) {
	data, err := b.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t nerf.Transforms
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &t, nil
}

func (b *Builder) writeTransforms(t *nerf.Transforms, path string) error {
	data, err := json.MarshalIndent(t, "", "    ")
	if err != nil {
		return err
	}
	return b.fs.WriteFile(path, append(data, '\n'), 0o644)
}
