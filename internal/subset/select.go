// Package subset builds sparse-view subsets of a NeRF-synthetic dataset.
// A subset keeps a handful of training views while preserving the full
// held-out test set so metrics stay comparable across view counts.
package subset

import (
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/splatbench/sparseview/internal/nerf"
)

// Selection strategies.
const (
	StrategyUniform = "uniform"
	StrategyRandom  = "random"
)

// Selection describes how training views are chosen.
type Selection struct {
	ViewCount int      `yaml:"view_count"`
	Strategy  string   `yaml:"strategy"` // uniform (default) or random
	Seed      int64    `yaml:"seed"`
	Indices   []int    `yaml:"indices"` // explicit frame indices, wins over count
	Names     []string `yaml:"names"`   // explicit frame names, wins over indices
}

// ChooseViews selects training frame names from the full frame list.
// Precedence: explicit names, then explicit indices, then strategy over
// ViewCount. A zero ViewCount (or one covering the whole list) selects
// every frame.
func ChooseViews(frames []nerf.Frame, sel Selection) []string {
	frameNames := make([]string, len(frames))
	for i, f := range frames {
		frameNames[i] = f.Name()
	}

	if len(sel.Names) > 0 {
		return dedup(normalizeNames(sel.Names))
	}

	if len(sel.Indices) > 0 {
		selected := make([]string, 0, len(sel.Indices))
		for _, idx := range sel.Indices {
			if idx >= 0 && idx < len(frameNames) {
				selected = append(selected, frameNames[idx])
			}
		}
		return dedup(selected)
	}

	if sel.ViewCount <= 0 || sel.ViewCount >= len(frameNames) {
		return frameNames
	}

	if sel.Strategy == StrategyRandom {
		return sampleRandom(frameNames, sel.ViewCount, sel.Seed)
	}
	return sampleUniform(frameNames, sel.ViewCount)
}

// sampleUniform picks evenly spaced frames. When rounding lands two picks
// on the same index, the later pick is bumped one step forward.
func sampleUniform(frameNames []string, count int) []string {
	step := float64(len(frameNames)) / float64(count)
	selected := make([]string, 0, count)
	seen := make(map[int]bool, count)
	for i := 0; i < count; i++ {
		idx := int(float64(i) * step)
		if idx > len(frameNames)-1 {
			idx = len(frameNames) - 1
		}
		if seen[idx] {
			idx = min(idx+1, len(frameNames)-1)
		}
		seen[idx] = true
		selected = append(selected, frameNames[idx])
	}
	return selected
}

// sampleRandom draws count frames without replacement, deterministically
// for a given seed.
func sampleRandom(frameNames []string, count int, seed int64) []string {
	rnd := rand.New(rand.NewSource(seed))
	perm := rnd.Perm(len(frameNames))
	selected := make([]string, 0, count)
	for _, idx := range perm[:count] {
		selected = append(selected, frameNames[idx])
	}
	return selected
}

// normalizeNames reduces raw name inputs to frame stems so callers can
// pass either "r_12" or "./train/r_12.png".
func normalizeNames(names []string) []string {
	normalized := make([]string, 0, len(names))
	for _, raw := range names {
		p := strings.TrimPrefix(raw, "./")
		normalized = append(normalized, strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)))
	}
	return normalized
}

// dedup removes duplicates preserving first-seen order.
func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
